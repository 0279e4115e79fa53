package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexconsult/registry-api/internal/browser"
	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

type fakeSession struct {
	fakePage
	releases int
}

func (s *fakeSession) Release() { s.releases++ }

// portalHarness hands the service a fresh fake session per attempt and
// keeps them all for release accounting.
type portalHarness struct {
	service  *PortalService
	sessions []*fakeSession
}

func newPortalHarness(t *testing.T, prepare func(attempt int, s *fakeSession)) *portalHarness {
	t.Helper()
	h := &portalHarness{}
	cfg := &config.Config{
		Portal: config.PortalConfig{
			SearchURL:    "https://portal.example/entry",
			Timezone:     "America/Toronto",
			DefaultEmail: "default@example.com",
		},
		Payment: testPaymentConfig(),
	}
	h.service = &PortalService{
		cfg:    cfg,
		policy: RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond},
		logger: testLogger(),
		acquire: func() (portalSession, error) {
			s := &fakeSession{}
			if prepare != nil {
				prepare(len(h.sessions)+1, s)
			}
			h.sessions = append(h.sessions, s)
			return s, nil
		},
	}
	return h
}

func (h *portalHarness) assertAllReleasedOnce(t *testing.T) {
	t.Helper()
	for i, s := range h.sessions {
		assert.Equalf(t, 1, s.releases, "session %d release count", i+1)
	}
}

func TestPortalSearchReleasesSession(t *testing.T) {
	h := newPortalHarness(t, func(attempt int, s *fakeSession) {
		s.location = "https://portal.example/results"
		s.texts = []string{"ACME WIDGETS INC."}
	})

	outcome, companies, err := h.service.Search(context.Background(), &models.SearchCriteria{Query: "widget"})
	require.NoError(t, err)

	assert.False(t, outcome.NoResults)
	assert.Equal(t, []string{"ACME WIDGETS INC."}, companies)
	require.Len(t, h.sessions, 1)
	h.assertAllReleasedOnce(t)
}

func TestPortalSearchRetriesWithFreshSession(t *testing.T) {
	h := newPortalHarness(t, func(attempt int, s *fakeSession) {
		if attempt == 1 {
			s.failOn = map[string]error{locSearchBtn.Expr: &browser.NotFoundError{Expr: locSearchBtn.Expr}}
		}
		s.location = "https://portal.example/results"
		s.texts = []string{"ACME WIDGETS INC."}
	})

	_, companies, err := h.service.Search(context.Background(), &models.SearchCriteria{Query: "widget"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ACME WIDGETS INC."}, companies)
	require.Len(t, h.sessions, 2, "failed attempt gets a brand new session")
	h.assertAllReleasedOnce(t)
}

func TestPortalSearchReleasesSessionsOnExhaustion(t *testing.T) {
	h := newPortalHarness(t, func(attempt int, s *fakeSession) {
		s.failOn = map[string]error{locSearchBtn.Expr: &browser.NotFoundError{Expr: locSearchBtn.Expr}}
	})

	_, _, err := h.service.Search(context.Background(), &models.SearchCriteria{Query: "widget"})
	var nf *browser.NotFoundError
	require.ErrorAs(t, err, &nf)

	require.Len(t, h.sessions, 3)
	h.assertAllReleasedOnce(t)
}

func TestPortalSearchInvalidCriteriaSkipsBrowser(t *testing.T) {
	h := newPortalHarness(t, nil)

	_, _, err := h.service.Search(context.Background(), &models.SearchCriteria{})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, h.sessions, "no session is started for invalid input")
}

func TestPortalSearchNoResults(t *testing.T) {
	h := newPortalHarness(t, func(attempt int, s *fakeSession) {
		s.noResults = true
	})

	outcome, companies, err := h.service.Search(context.Background(), &models.SearchCriteria{Query: "zzzznothing"})
	require.NoError(t, err)

	assert.True(t, outcome.NoResults)
	assert.Nil(t, companies)
	require.Len(t, h.sessions, 1, "an empty result is an answer, not a failure")
	h.assertAllReleasedOnce(t)
}

func TestPortalCheckoutNoResultsSkipsPurchase(t *testing.T) {
	h := newPortalHarness(t, func(attempt int, s *fakeSession) {
		s.noResults = true
	})

	req := &models.CheckoutRequest{
		SearchCriteria: models.SearchCriteria{Query: "zzzznothing"},
		Company:        "ACME WIDGETS INC.",
		Product:        models.ProductProfileReport,
	}
	outcome, finalURL, err := h.service.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, outcome.NoResults)
	assert.Empty(t, finalURL)
	require.Len(t, h.sessions, 1)
	assert.False(t, h.sessions[0].hasStep("click:"+locRequestProducts.Expr), "checkout never starts")
	h.assertAllReleasedOnce(t)
}

func TestPortalCheckoutUsesDefaultEmail(t *testing.T) {
	h := newPortalHarness(t, func(attempt int, s *fakeSession) {
		s.location = "https://portal.example/receipt"
	})

	req := &models.CheckoutRequest{
		SearchCriteria: models.SearchCriteria{Query: "widget"},
		Company:        "ACME WIDGETS INC.",
		Product:        models.ProductCertificateOfStatus,
	}
	outcome, finalURL, err := h.service.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, outcome.NoResults)
	assert.Equal(t, "https://portal.example/receipt", finalURL)
	require.Len(t, h.sessions, 1)
	assert.True(t, h.sessions[0].hasStep("fillall:"+locEmailInputs.Expr+"=default@example.com"))
	h.assertAllReleasedOnce(t)
}

func TestPortalPing(t *testing.T) {
	h := newPortalHarness(t, nil)

	require.NoError(t, h.service.Ping(context.Background()))
	require.Len(t, h.sessions, 1)
	h.assertAllReleasedOnce(t)
}
