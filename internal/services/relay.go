package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/models"
)

// RelayService submits document-copy requests through the registry's
// request API. The API insists on its own four-step dance: register a
// contact, look its id back up, enumerate the corporation's documents,
// then file the request referencing both.
type RelayService struct {
	client    *resty.Client
	directory *DirectoryService
	logger    *logrus.Logger
}

// NewRelayService wires the relay against the request API base URL.
func NewRelayService(cfg config.RegistryConfig, directory *DirectoryService, logger *logrus.Logger) *RelayService {
	client := resty.New().
		SetBaseURL(cfg.RequestBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &RelayService{client: client, directory: directory, logger: logger}
}

// Submit files a copy request for the given corporation number.
func (s *RelayService) Submit(ctx context.Context, req *models.CopyRequest) (*models.CopyRequestResponse, error) {
	log := s.logger.WithFields(logrus.Fields{
		"corporation_number": req.CorporationNumber,
		"email":              req.Email,
	})

	contact := map[string]interface{}{
		"contactMethod": map[string]string{
			"phoneNumber":  req.Phone,
			"emailAddress": req.Email,
		},
		"firstName": req.FirstName,
		"lastName":  req.LastName,
	}
	resp, err := s.client.R().SetContext(ctx).SetBody(contact).Post("/cntcts")
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create contact: registry returned %s", resp.Status())
	}

	contactID, err := s.lookupContact(ctx, req)
	if err != nil {
		return nil, err
	}
	log.WithField("contact_id", contactID).Debug("Contact registered")

	summaries, err := s.documentSummaries(ctx, req.CorporationNumber)
	if err != nil {
		return nil, err
	}

	order := map[string]interface{}{
		"@type":       "copies",
		"corporation": req.CorporationNumber,
		"summaries":   summaries,
		"contact":     contactID,
	}
	resp, err = s.client.R().SetContext(ctx).SetBody(order).Post("/rqsts")
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("submit request: registry returned %s", resp.Status())
	}

	log.WithField("documents", len(summaries)).Info("Copy request submitted")
	return &models.CopyRequestResponse{
		CorporationNumber: req.CorporationNumber,
		ContactID:         contactID,
		Documents:         len(summaries),
		Timestamp:         time.Now(),
	}, nil
}

// SubmitByName resolves the corporation number from the directory's
// first match for keyword, then files the request.
func (s *RelayService) SubmitByName(ctx context.Context, req *models.CopyRequestByName) (*models.CopyRequestResponse, error) {
	rows, err := s.directory.List(ctx, req.Keyword, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewValidationError("keyword", req.Keyword, "no corporation matches keyword")
	}

	return s.Submit(ctx, &models.CopyRequest{
		CorporationNumber: rows[0].CorporationNumber,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
	})
}

// lookupContact re-reads the contact just created to learn its id.
// The create endpoint does not echo it back.
func (s *RelayService) lookupContact(ctx context.Context, req *models.CopyRequest) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"eaddr":  req.Email,
			"frstNm": req.FirstName,
			"lstNm":  req.LastName,
			"phnn":   req.Phone,
		}).
		Get("/cntcts")
	if err != nil {
		return "", fmt.Errorf("lookup contact: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("lookup contact: registry returned %s", resp.Status())
	}

	id := extractID(resp.Body())
	if id == "" {
		return "", fmt.Errorf("lookup contact: no id in response")
	}
	return id, nil
}

// documentSummaries lists the corporation's documents, stripped of the
// request-bookkeeping fields the order endpoint rejects.
func (s *RelayService) documentSummaries(ctx context.Context, corporationNumber string) ([]map[string]interface{}, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("crprtnid", corporationNumber).
		Get("/dcmnts")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list documents: registry returned %s", resp.Status())
	}

	var documents []map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &documents); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range documents {
		delete(doc, "sourceRequest")
		delete(doc, "documentType")
	}
	return documents, nil
}

// extractID pulls "id" out of either a single object or the first
// element of an array.
func extractID(body []byte) string {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		if id, ok := obj["id"]; ok {
			return fmt.Sprintf("%v", id)
		}
	}
	var list []map[string]interface{}
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		if id, ok := list[0]["id"]; ok {
			return fmt.Sprintf("%v", id)
		}
	}
	return ""
}
