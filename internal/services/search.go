package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/browser"
	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

// portalPage is the slice of browser.Session the workflows need. The
// state machines are written against it so they can run without Chrome
// in tests.
type portalPage interface {
	Navigate(ctx context.Context, url string) error
	SetCookie(ctx context.Context, name, value, rawURL string) error
	ClickFirst(ctx context.Context, loc browser.Locator) error
	FillFirst(ctx context.Context, loc browser.Locator, text string) error
	FillAll(ctx context.Context, loc browser.Locator, text string) error
	PressEnter(ctx context.Context, loc browser.Locator) error
	Exists(ctx context.Context, loc browser.Locator) (bool, error)
	TextAll(ctx context.Context, loc browser.Locator) ([]string, error)
	Location(ctx context.Context) (string, error)
}

// Fixed pauses the portal forces on us. Its filter panel re-renders
// asynchronously after each dropdown change with no DOM signal to wait
// on, so these are calibrated sleeps rather than locator waits.
var (
	filterSettle   = 2 * time.Second
	submitSettle   = 5 * time.Second
	pageSizeSettle = 15 * time.Second
)

// Portal element locators. The portal is a generated UI, hence the
// machine-built class soup on the search button.
var (
	locQueryInput  = browser.ByXPath(`//input[@name='QueryString']`).WithTimeout(160 * time.Second)
	locAdvanced    = browser.ByXPath(`//a[@aria-label=' Advanced']`)
	locDate        = browser.ByXPath(`//input[@name='RegistrationDate']`)
	locEndDate     = browser.ByXPath(`//input[@name='RegistrationDate2']`)
	locSearchBtn   = browser.ByXPath(`//div[@class='appBox appBlock registerItemSearch-tabs-criteriaAndButtons-buttonPad appButtonPad appSearchButtonPad appNotReadOnly appIndex1 appChildCount3']/div/button`)
	locNoResults   = browser.ByXPath(`//div[@id='appSearchNoResults']`).WithTimeout(5 * time.Second)
	locPageSize200 = browser.ByXPath(`//div[@class='appSearchPageSize']/select/option[contains(text(), '200')]`)
	locResultLinks = browser.ByXPath(`//a[@class='registerItemSearch-results-page-line-ItemBox-resultLeft-viewMenu appMenu appMenuItem appMenuDepth0 appItemSearchResult noSave viewInstanceUpdateStackPush appReadOnly appIndex0']`)
)

// optionByText locates a dropdown option by its visible text.
func optionByText(text string) browser.Locator {
	return browser.ByXPath(fmt.Sprintf(`//option[contains(text(), '%s')]`, text))
}

// SearchWorkflow drives one portal search over a live page.
type SearchWorkflow struct {
	page   portalPage
	cfg    config.PortalConfig
	logger *logrus.Logger
}

// NewSearchWorkflow binds the workflow to a page.
func NewSearchWorkflow(page portalPage, cfg config.PortalConfig, logger *logrus.Logger) *SearchWorkflow {
	return &SearchWorkflow{page: page, cfg: cfg, logger: logger}
}

// Run walks the portal's search form with the given criteria and
// returns either a no-results outcome or the results page URL. The
// criteria must already be validated.
func (w *SearchWorkflow) Run(ctx context.Context, criteria *models.SearchCriteria) (*models.SearchOutcome, error) {
	log := w.logger.WithFields(logrus.Fields{
		"workflow": "search",
		"query":    criteria.Query,
	})

	if err := w.page.Navigate(ctx, w.cfg.SearchURL); err != nil {
		return nil, err
	}
	// The portal renders times in the viewer's zone; pin it so result
	// pages are stable across deployments.
	if err := w.page.SetCookie(ctx, "x-catalyst-timezone", w.cfg.Timezone, w.cfg.SearchURL); err != nil {
		return nil, err
	}

	log.Debug("Filling search query")
	if err := w.page.FillFirst(ctx, locQueryInput, criteria.Query); err != nil {
		return nil, err
	}
	if err := w.page.ClickFirst(ctx, locAdvanced); err != nil {
		return nil, err
	}

	if criteria.RegisterType != nil {
		if err := w.page.ClickFirst(ctx, optionByText(string(*criteria.RegisterType))); err != nil {
			return nil, err
		}
		// The business-type dropdown repopulates after a register is
		// chosen; there is no completion event to observe.
		sleep(ctx, filterSettle)
	}
	if criteria.BusinessType != nil {
		if err := w.page.ClickFirst(ctx, optionByText(*criteria.BusinessType)); err != nil {
			return nil, err
		}
	}
	if criteria.Status != nil {
		if err := w.page.ClickFirst(ctx, optionByText(string(*criteria.Status))); err != nil {
			return nil, err
		}
	}
	if criteria.Date != nil {
		if err := w.page.FillFirst(ctx, locDate, *criteria.Date); err != nil {
			return nil, err
		}
	}
	if criteria.Operator != nil {
		if err := w.page.ClickFirst(ctx, optionByText(string(*criteria.Operator))); err != nil {
			return nil, err
		}
	}
	if criteria.IsBetween() {
		// The second date input is injected only after Between is
		// selected, again without a DOM signal.
		sleep(ctx, filterSettle)
		if err := w.page.FillFirst(ctx, locEndDate, *criteria.EndDate); err != nil {
			return nil, err
		}
		if err := w.page.PressEnter(ctx, locEndDate); err != nil {
			return nil, err
		}
	}

	log.Debug("Submitting search")
	if err := w.page.ClickFirst(ctx, locSearchBtn); err != nil {
		return nil, err
	}
	sleep(ctx, submitSettle)

	empty, err := w.page.Exists(ctx, locNoResults)
	if err != nil {
		return nil, err
	}
	if empty {
		log.Info("Search returned no results")
		return &models.SearchOutcome{NoResults: true}, nil
	}

	// Widen the page to 200 rows so one page covers almost every
	// search. The portal reloads the whole result list afterwards.
	if err := w.page.ClickFirst(ctx, locPageSize200); err != nil {
		return nil, err
	}
	sleep(ctx, pageSizeSettle)

	url, err := w.page.Location(ctx)
	if err != nil {
		return nil, err
	}
	log.WithField("results_url", url).Info("Search completed")
	return &models.SearchOutcome{ResultsURL: url}, nil
}

// Companies reads the company names off the current results page.
func (w *SearchWorkflow) Companies(ctx context.Context) ([]string, error) {
	return w.page.TextAll(ctx, locResultLinks)
}

// sleep waits for the duration unless the context ends first.
func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
