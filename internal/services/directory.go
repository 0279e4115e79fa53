package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

// DirectoryService reads the federal registry's legacy pages: the
// corporation directory listing and the per-corporation detail page.
// These are plain server-rendered HTML, so they are fetched over HTTP
// and parsed statically instead of going through a browser.
type DirectoryService struct {
	cfg    config.RegistryConfig
	client *resty.Client
	cache  *CacheService
	logger *logrus.Logger
}

// NewDirectoryService wires the directory service.
func NewDirectoryService(cfg config.RegistryConfig, cache *CacheService, logger *logrus.Logger) *DirectoryService {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36")
	return &DirectoryService{cfg: cfg, client: client, cache: cache, logger: logger}
}

// List walks the directory pages matching keyword, stopping once limit
// rows are collected. A limit of 0 means "until the registry stops
// offering a next page".
func (s *DirectoryService) List(ctx context.Context, keyword string, limit int) ([]models.DirectoryRow, error) {
	if keyword == "" {
		return nil, models.NewValidationError("keyword", "", "keyword is required")
	}

	var rows []models.DirectoryRow
	for page := 0; ; page++ {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"p":       fmt.Sprintf("%d", page),
				"crpNm":   keyword,
				"crpNmbr": "",
				"bsNmbr":  "",
				"cProv":   "",
				"cStatus": "",
				"cAct":    "",
			}).
			Get(s.cfg.BaseURL + "/fdrlCrpSrch.html")
		if err != nil {
			return nil, fmt.Errorf("fetch directory page %d: %w", page, err)
		}

		pageRows, hasNext, err := parseDirectoryPage(resp.String(), s.logger)
		if err != nil {
			return nil, err
		}
		rows = append(rows, pageRows...)

		if limit > 0 && len(rows) >= limit {
			rows = rows[:limit]
			break
		}
		if !hasNext {
			break
		}
	}

	s.logger.WithFields(logrus.Fields{
		"keyword": keyword,
		"rows":    len(rows),
	}).Info("Directory listing extracted")
	return rows, nil
}

// Corporation fetches and parses one corporation's detail page,
// consulting the cache first. The bool reports a cache hit.
func (s *DirectoryService) Corporation(ctx context.Context, corpID string) (*models.CorporationRecord, bool, error) {
	if corpID == "" {
		return nil, false, models.NewValidationError("corporation_id", "", "corporation id is required")
	}

	cacheKey := "corporation:" + corpID
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var record models.CorporationRecord
		if err := json.Unmarshal([]byte(cached), &record); err == nil {
			return &record, true, nil
		}
		// Unreadable entries are evicted, not served.
		_ = s.cache.Delete(ctx, cacheKey)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"p":       "0",
			"corpId":  corpID,
			"V_TOKEN": "null",
			"crpNm":   "",
			"crpNmbr": "",
			"bsNmbr":  "",
		}).
		Get(s.cfg.BaseURL + "/fdrlCrpDtls.html")
	if err != nil {
		return nil, false, fmt.Errorf("fetch corporation %s: %w", corpID, err)
	}

	record, err := parseCorporationRecord(resp.String(), corpID, s.logger)
	if err != nil {
		return nil, false, err
	}

	if encoded, err := json.Marshal(record); err == nil {
		_ = s.cache.Set(ctx, cacheKey, string(encoded))
	}
	return record, false, nil
}

// parseDirectoryPage extracts the result rows of one listing page and
// whether another page follows.
func parseDirectoryPage(htmlText string, logger *logrus.Logger) ([]models.DirectoryRow, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, false, models.NewExtractionError("directory listing", 0, err.Error())
	}

	var rows []models.DirectoryRow
	doc.Find("div.col-md-11").Each(func(i int, sel *goquery.Selection) {
		spans := sel.Find("span")
		if spans.Length() < 4 {
			logger.WithField("row", i).Warn("Directory row too short, skipping")
			return
		}
		rows = append(rows, models.DirectoryRow{
			BusinessName:      normalizeSpace(spans.Eq(0).Find("a").Text()),
			Status:            labelSuffix(spans.Eq(1).Text()),
			CorporationNumber: strings.ReplaceAll(labelSuffix(spans.Eq(2).Text()), "-", ""),
			BusinessNumber:    labelSuffix(spans.Eq(3).Text()),
		})
	})

	hasNext := doc.Find(`a[rel="next"]`).Length() > 0
	return rows, hasNext, nil
}

// detailSections is the ordered layout of the corporation detail page.
// The page has no semantic anchors, only a sequence of col-sm-12
// blocks, so each section is addressed by position and named here so
// a layout change produces a readable error.
var detailSections = []struct {
	index int
	name  string
}{
	{2, "corporation details"},
	{3, "registered office address"},
	{5, "directors"},
	{7, "annual filings"},
	{8, "corporate history"},
}

// parseCorporationRecord extracts every section of a detail page.
func parseCorporationRecord(htmlText, corpID string, logger *logrus.Logger) (*models.CorporationRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, models.NewExtractionError("corporation detail", 0, err.Error())
	}

	blocks := doc.Find("div.col-sm-12")
	section := func(idx int, name string) (*goquery.Selection, error) {
		sel := blocks.Eq(idx)
		if sel.Length() == 0 {
			return nil, models.NewExtractionError(name, idx,
				fmt.Sprintf("section not present, page has %d blocks", blocks.Length()))
		}
		return sel, nil
	}

	record := &models.CorporationRecord{CorporationID: corpID}

	details, err := section(detailSections[0].index, detailSections[0].name)
	if err != nil {
		return nil, err
	}
	record.Details = parseDetailRows(details)

	address, err := section(detailSections[1].index, detailSections[1].name)
	if err != nil {
		return nil, err
	}
	record.Address = parseAddress(address)

	directors, err := section(detailSections[2].index, detailSections[2].name)
	if err != nil {
		return nil, err
	}
	record.Directors = parseDirectors(directors)

	filings, err := section(detailSections[3].index, detailSections[3].name)
	if err != nil {
		return nil, err
	}
	record.AnnualFilings = parseFilings(filings, logger)

	history, err := section(detailSections[4].index, detailSections[4].name)
	if err != nil {
		return nil, err
	}
	record.NameHistory, record.HistoryPanels = parseHistory(history)

	return record, nil
}

// parseDetailRows reads the label/value rows of the corporation
// details block. The corporate name cell embeds former names after a
// line break; only the current one is kept.
func parseDetailRows(sel *goquery.Selection) []models.LabeledValue {
	var rows []models.LabeledValue
	sel.Find("div.data-display-group").Each(func(_ int, row *goquery.Selection) {
		label := normalizeSpace(row.Find("b").First().Text())
		if label == "" {
			return
		}
		value := row.Find("div.col-sm-8").First()
		text := normalizeSpace(value.Text())
		if label == "Corporate Name" {
			text = firstTextLine(value)
		}
		rows = append(rows, models.LabeledValue{Label: label, Value: text})
	})
	return rows
}

// parseAddress joins the block's non-empty text fragments into one line.
func parseAddress(sel *goquery.Selection) string {
	var parts []string
	sel.Find("div").Each(func(_ int, div *goquery.Selection) {
		if div.Children().Length() > 0 {
			return
		}
		if t := normalizeSpace(div.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, ", ")
}

// parseDirectors reads the director counts and the roster list.
func parseDirectors(sel *goquery.Selection) models.DirectorsSection {
	var out models.DirectorsSection
	sel.Find("div.inline-group").Each(func(_ int, row *goquery.Selection) {
		label := normalizeSpace(row.Find("b").First().Text())
		value := normalizeSpace(row.Find("span").First().Text())
		if label != "" {
			out.Counts = append(out.Counts, models.LabeledValue{Label: label, Value: value})
		}
	})
	sel.Find("li.full-width").Each(func(_ int, li *goquery.Selection) {
		fragments := textFragments(li)
		if len(fragments) == 0 {
			return
		}
		rec := models.DirectorRecord{Name: fragments[0]}
		if len(fragments) > 1 {
			rec.Address = strings.Join(fragments[1:], ", ")
		}
		out.Roster = append(out.Roster, rec)
	})
	return out
}

// statusOfAnnualFilings is the one filings row whose value is a list
// rather than plain text.
const statusOfAnnualFilings = "Status of Annual Filings"

// parseFilings reads the annual-filings rows, discriminating the two
// value shapes by label.
func parseFilings(sel *goquery.Selection, logger *logrus.Logger) []models.FilingEntry {
	var entries []models.FilingEntry
	sel.Find("div.data-display-group").Each(func(_ int, row *goquery.Selection) {
		label := normalizeSpace(row.Find("b").First().Text())
		if label == "" {
			return
		}
		if label != statusOfAnnualFilings {
			value := normalizeSpace(row.Find("div.col-sm-9").First().Text())
			entries = append(entries, models.FilingEntry{Label: label, Value: models.PlainFiling(value)})
			return
		}

		var items []models.LabeledValue
		row.Find("li").Each(func(_ int, li *goquery.Selection) {
			text := normalizeSpace(li.Text())
			parts := strings.SplitN(text, "-", 2)
			if len(parts) != 2 {
				// A filing item without its year/status separator is
				// unusable; keep the rest of the list.
				logger.WithField("item", text).Warn("Malformed annual filing item, skipping")
				return
			}
			items = append(items, models.LabeledValue{
				Label: strings.TrimSpace(parts[0]),
				Value: strings.TrimSpace(parts[1]),
			})
		})
		entries = append(entries, models.FilingEntry{Label: label, Value: models.ListFiling(items)})
	})
	return entries
}

// parseHistory reads the name-history table and any titled info panels.
func parseHistory(sel *goquery.Selection) (models.HistoryTable, []models.HistoryPanel) {
	var table models.HistoryTable
	first := sel.Find("table").First()
	if first.Length() > 0 {
		table.Heading = normalizeSpace(first.Find("thead").Text())
		var cells []string
		first.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, normalizeSpace(td.Text()))
		})
		for i := 0; i+1 < len(cells); i += 2 {
			table.Rows = append(table.Rows, models.LabeledValue{Label: cells[i], Value: cells[i+1]})
		}
	}

	var panels []models.HistoryPanel
	sel.Find("section.panel-info").Each(func(_ int, panel *goquery.Selection) {
		p := models.HistoryPanel{Title: normalizeSpace(panel.Find("header").First().Text())}
		panel.Find("div.panel-body div.data-display-group").Each(func(_ int, row *goquery.Selection) {
			label := normalizeSpace(row.Find("b").First().Text())
			value := normalizeSpace(row.Find("div.col-sm-6").First().Text())
			if label != "" {
				p.Rows = append(p.Rows, models.LabeledValue{Label: label, Value: value})
			}
		})
		panels = append(panels, p)
	})
	return table, panels
}

// labelSuffix drops a "Label:" prefix from a scraped cell and trims
// the remainder.
func labelSuffix(s string) string {
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// normalizeSpace collapses all runs of whitespace to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstTextLine returns the first non-empty direct text node of a
// selection, cutting off anything after an embedded <br>.
func firstTextLine(sel *goquery.Selection) string {
	for _, node := range sel.Contents().Nodes {
		if node.Type == html.TextNode {
			if t := normalizeSpace(node.Data); t != "" {
				return t
			}
		}
	}
	return normalizeSpace(sel.Text())
}

// textFragments splits a node's rendered text into trimmed non-empty
// lines.
func textFragments(sel *goquery.Selection) []string {
	var out []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		if t := normalizeSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}
