package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/browser"
	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

// PortalService runs complete portal workflows: a fresh browser
// session per attempt, the state machines inside, retries around the
// whole thing. Sessions never outlive their attempt.
type PortalService struct {
	cfg    *config.Config
	policy RetryPolicy
	logger *logrus.Logger

	// acquire is swapped out in tests.
	acquire func() (portalSession, error)
}

// portalSession is what an attempt needs from a live session.
type portalSession interface {
	portalPage
	Release()
}

// NewPortalService wires the portal service from configuration.
func NewPortalService(cfg *config.Config, logger *logrus.Logger) *PortalService {
	s := &PortalService{
		cfg: cfg,
		policy: RetryPolicy{
			MaxAttempts: cfg.Portal.MaxRetries,
			BaseDelay:   cfg.Portal.RetryDelay,
			MaxDelay:    cfg.Portal.MaxDelay,
		},
		logger: logger,
	}
	s.acquire = func() (portalSession, error) {
		return browser.Acquire(cfg.Browser, logger)
	}
	return s
}

// Search runs the search workflow and, when there are results, reads
// the company names off the results page.
func (s *PortalService) Search(ctx context.Context, criteria *models.SearchCriteria) (*models.SearchOutcome, []string, error) {
	if err := criteria.Validate(); err != nil {
		return nil, nil, err
	}

	var outcome *models.SearchOutcome
	var companies []string
	err := Retry(ctx, s.logger, s.policy, "portal search", func(ctx context.Context) error {
		session, err := s.acquire()
		if err != nil {
			return err
		}
		defer session.Release()

		wf := NewSearchWorkflow(session, s.cfg.Portal, s.logger)
		out, err := wf.Run(ctx, criteria)
		if err != nil {
			return err
		}
		outcome = out
		if out.NoResults {
			companies = nil
			return nil
		}
		names, err := wf.Companies(ctx)
		if err != nil {
			return err
		}
		companies = names
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outcome, companies, nil
}

// Checkout searches, opens the requested company and buys the product.
// A no-results search ends the operation without touching checkout.
func (s *PortalService) Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.SearchOutcome, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	email := req.EmailOrDefault(s.cfg.Portal.DefaultEmail)

	var outcome *models.SearchOutcome
	var finalURL string
	err := Retry(ctx, s.logger, s.policy, "portal checkout", func(ctx context.Context) error {
		session, err := s.acquire()
		if err != nil {
			return err
		}
		defer session.Release()

		search := NewSearchWorkflow(session, s.cfg.Portal, s.logger)
		out, err := search.Run(ctx, &req.SearchCriteria)
		if err != nil {
			return err
		}
		outcome = out
		if out.NoResults {
			finalURL = ""
			return nil
		}

		checkout := NewCheckoutWorkflow(session, s.cfg.Payment, s.logger)
		url, err := checkout.Run(ctx, req.Company, req.Product, email)
		if err != nil {
			return err
		}
		finalURL = url
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return outcome, finalURL, nil
}

// Ping verifies a browser can still be started, for readiness checks.
func (s *PortalService) Ping(ctx context.Context) error {
	session, err := s.acquire()
	if err != nil {
		return err
	}
	session.Release()
	return nil
}
