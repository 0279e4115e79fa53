package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexconsult/registry-api/internal/browser"
	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

func TestMain(m *testing.M) {
	// The settle pauses exist for the live portal, not for fakes.
	filterSettle = 0
	submitSettle = 0
	pageSizeSettle = 0
	os.Exit(m.Run())
}

// fakePage records every page interaction so workflow tests can assert
// on the exact step sequence without a browser.
type fakePage struct {
	steps     []string
	noResults bool
	location  string
	texts     []string
	failOn    map[string]error
}

func (p *fakePage) step(s, key string) error {
	p.steps = append(p.steps, s)
	if err, ok := p.failOn[key]; ok {
		return err
	}
	return nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	return p.step("navigate:"+url, url)
}

func (p *fakePage) SetCookie(ctx context.Context, name, value, rawURL string) error {
	return p.step("cookie:"+name+"="+value, name)
}

func (p *fakePage) ClickFirst(ctx context.Context, loc browser.Locator) error {
	return p.step("click:"+loc.Expr, loc.Expr)
}

func (p *fakePage) FillFirst(ctx context.Context, loc browser.Locator, text string) error {
	return p.step("fill:"+loc.Expr+"="+text, loc.Expr)
}

func (p *fakePage) FillAll(ctx context.Context, loc browser.Locator, text string) error {
	return p.step("fillall:"+loc.Expr+"="+text, loc.Expr)
}

func (p *fakePage) PressEnter(ctx context.Context, loc browser.Locator) error {
	return p.step("enter:"+loc.Expr, loc.Expr)
}

func (p *fakePage) Exists(ctx context.Context, loc browser.Locator) (bool, error) {
	p.steps = append(p.steps, "exists:"+loc.Expr)
	if loc.Expr == locNoResults.Expr {
		return p.noResults, nil
	}
	return false, nil
}

func (p *fakePage) TextAll(ctx context.Context, loc browser.Locator) ([]string, error) {
	p.steps = append(p.steps, "textall:"+loc.Expr)
	return p.texts, nil
}

func (p *fakePage) Location(ctx context.Context) (string, error) {
	p.steps = append(p.steps, "location")
	return p.location, nil
}

func (p *fakePage) hasStep(substr string) bool {
	for _, s := range p.steps {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func (p *fakePage) stepIndex(substr string) int {
	for i, s := range p.steps {
		if strings.Contains(s, substr) {
			return i
		}
	}
	return -1
}

func ptr[T any](v T) *T { return &v }

func testPortalConfig() config.PortalConfig {
	return config.PortalConfig{
		SearchURL:    "https://portal.example/entry",
		Timezone:     "America/Toronto",
		DefaultEmail: "default@example.com",
	}
}

func TestSearchWorkflowMinimalCriteria(t *testing.T) {
	page := &fakePage{location: "https://portal.example/results?page=1"}
	wf := NewSearchWorkflow(page, testPortalConfig(), testLogger())

	outcome, err := wf.Run(context.Background(), &models.SearchCriteria{Query: "widget"})
	require.NoError(t, err)

	assert.False(t, outcome.NoResults)
	assert.Equal(t, "https://portal.example/results?page=1", outcome.ResultsURL)

	assert.True(t, page.hasStep("navigate:https://portal.example/entry"))
	assert.True(t, page.hasStep("cookie:x-catalyst-timezone=America/Toronto"))
	assert.True(t, page.hasStep("fill:"+locQueryInput.Expr+"=widget"))
	assert.True(t, page.hasStep("click:"+locAdvanced.Expr))
	assert.True(t, page.hasStep("click:"+locSearchBtn.Expr))
	assert.True(t, page.hasStep("click:"+locPageSize200.Expr))
	assert.False(t, page.hasStep("RegistrationDate"), "no date filter requested")
	assert.False(t, page.hasStep("//option["), "no dropdown filters requested")
}

func TestSearchWorkflowAppliesAllFilters(t *testing.T) {
	page := &fakePage{location: "https://portal.example/results"}
	wf := NewSearchWorkflow(page, testPortalConfig(), testLogger())

	criteria := &models.SearchCriteria{
		Query:        "widget",
		RegisterType: ptr(models.RegisterCorporations),
		BusinessType: ptr("Business Corporation"),
		Status:       ptr(models.StatusActive),
		Date:         ptr("January 2, 2006"),
		Operator:     ptr(models.OperatorBetween),
		EndDate:      ptr("March 4, 2006"),
	}
	require.NoError(t, criteria.Validate())

	_, err := wf.Run(context.Background(), criteria)
	require.NoError(t, err)

	assert.True(t, page.hasStep("click:"+optionByText("Corporations").Expr))
	assert.True(t, page.hasStep("click:"+optionByText("Business Corporation").Expr))
	assert.True(t, page.hasStep("click:"+optionByText("Active").Expr))
	assert.True(t, page.hasStep("fill:"+locDate.Expr+"=January 2, 2006"))
	assert.True(t, page.hasStep("click:"+optionByText("Between").Expr))
	assert.True(t, page.hasStep("fill:"+locEndDate.Expr+"=March 4, 2006"))
	assert.True(t, page.hasStep("enter:"+locEndDate.Expr))

	// Filters go in before the search is submitted.
	assert.Less(t, page.stepIndex("fill:"+locEndDate.Expr), page.stepIndex("click:"+locSearchBtn.Expr))
}

func TestSearchWorkflowEndDateIgnoredWithoutBetween(t *testing.T) {
	page := &fakePage{location: "https://portal.example/results"}
	wf := NewSearchWorkflow(page, testPortalConfig(), testLogger())

	criteria := &models.SearchCriteria{
		Query:    "widget",
		Date:     ptr("January 2, 2006"),
		Operator: ptr(models.OperatorOn),
		EndDate:  ptr("March 4, 2006"),
	}
	_, err := wf.Run(context.Background(), criteria)
	require.NoError(t, err)

	assert.False(t, page.hasStep("RegistrationDate2"), "second date input belongs to Between only")
}

func TestSearchWorkflowNoResultsShortCircuits(t *testing.T) {
	page := &fakePage{noResults: true}
	wf := NewSearchWorkflow(page, testPortalConfig(), testLogger())

	outcome, err := wf.Run(context.Background(), &models.SearchCriteria{Query: "zzzznothing"})
	require.NoError(t, err)

	assert.True(t, outcome.NoResults)
	assert.Empty(t, outcome.ResultsURL)
	assert.False(t, page.hasStep("click:"+locPageSize200.Expr), "page size normalization must be skipped")
	assert.False(t, page.hasStep("location"), "results URL is never read")
}

func TestSearchWorkflowPropagatesStepFailure(t *testing.T) {
	wantErr := &browser.NotFoundError{Expr: locSearchBtn.Expr}
	page := &fakePage{failOn: map[string]error{locSearchBtn.Expr: wantErr}}
	wf := NewSearchWorkflow(page, testPortalConfig(), testLogger())

	_, err := wf.Run(context.Background(), &models.SearchCriteria{Query: "widget"})
	var nf *browser.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSearchWorkflowCompanies(t *testing.T) {
	page := &fakePage{texts: []string{"ACME WIDGETS INC.", "ACME HOLDINGS LTD."}}
	wf := NewSearchWorkflow(page, testPortalConfig(), testLogger())

	companies, err := wf.Companies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME WIDGETS INC.", "ACME HOLDINGS LTD."}, companies)
}
