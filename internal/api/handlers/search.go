package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/models"
	"github.com/nexconsult/registry-api/internal/services"
)

// SearchHandler handles portal search requests
type SearchHandler struct {
	portal services.PortalServiceInterface
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(portal services.PortalServiceInterface, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{portal: portal, logger: logger}
}

// SearchCompanies runs a portal search and lists the matching companies
// @Summary Search the registry portal
// @Description Drive the portal's advanced search with the given criteria and return the matching company names
// @Tags Search
// @Accept json
// @Produce json
// @Param request body models.SearchCriteria true "Search criteria"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /search/companies [post]
func (h *SearchHandler) SearchCompanies(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var criteria models.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"query":      criteria.Query,
	}).Info("Processing portal search")

	outcome, companies, err := h.portal.Search(c.Request.Context(), &criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	duration := time.Since(start)
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"query":      criteria.Query,
		"no_results": outcome.NoResults,
		"companies":  len(companies),
		"duration":   duration,
	}).Info("Portal search completed")

	c.JSON(http.StatusOK, models.SearchResponse{
		Outcome:   *outcome,
		Companies: companies,
		TookMs:    duration.Milliseconds(),
		Timestamp: time.Now(),
	})
}
