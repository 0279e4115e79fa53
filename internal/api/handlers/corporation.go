package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/models"
	"github.com/nexconsult/registry-api/internal/services"
)

// CorporationHandler serves extracted corporation detail records.
type CorporationHandler struct {
	directory services.DirectoryServiceInterface
	logger    *logrus.Logger
}

// NewCorporationHandler creates a new corporation handler
func NewCorporationHandler(directory services.DirectoryServiceInterface, logger *logrus.Logger) *CorporationHandler {
	return &CorporationHandler{directory: directory, logger: logger}
}

// Get extracts one corporation's registry record
// @Summary Get a corporation record
// @Description Fetch and parse the registry detail page for a corporation id
// @Tags Corporations
// @Produce json
// @Param id path string true "Corporation id"
// @Success 200 {object} models.CorporationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /corporations/{id} [get]
func (h *CorporationHandler) Get(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")
	corpID := c.Param("id")

	h.logger.WithFields(logrus.Fields{
		"request_id":     requestID,
		"corporation_id": corpID,
	}).Info("Processing corporation lookup")

	record, cached, err := h.directory.Corporation(c.Request.Context(), corpID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Header("Cache-Control", "public, max-age=3600")

	h.logger.WithFields(logrus.Fields{
		"request_id":     requestID,
		"corporation_id": corpID,
		"cache":          cached,
		"duration":       time.Since(start),
	}).Info("Corporation lookup completed")

	c.JSON(http.StatusOK, models.CorporationResponse{
		Record:    record,
		Cache:     cached,
		Timestamp: time.Now(),
	})
}
