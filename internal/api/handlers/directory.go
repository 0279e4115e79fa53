package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/models"
	"github.com/nexconsult/registry-api/internal/services"
)

// DirectoryHandler serves the registry's directory listing, detail
// records and document-copy requests.
type DirectoryHandler struct {
	directory services.DirectoryServiceInterface
	relay     services.RelayServiceInterface
	logger    *logrus.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directory services.DirectoryServiceInterface, relay services.RelayServiceInterface, logger *logrus.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, relay: relay, logger: logger}
}

// List extracts directory rows matching a keyword
// @Summary List corporations by keyword
// @Description Walk the registry directory pages matching the keyword and return structured rows
// @Tags Directory
// @Produce json
// @Param keyword path string true "Search keyword"
// @Param limit query int false "Maximum rows to return, 0 for all"
// @Success 200 {object} models.DirectoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /directory/{keyword} [get]
func (h *DirectoryHandler) List(c *gin.Context) {
	requestID := c.GetString("request_id")
	keyword := c.Param("keyword")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondBadRequest(c, h.logger, models.NewValidationError("limit", raw, "must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"keyword":    keyword,
		"limit":      limit,
	}).Info("Processing directory listing")

	rows, err := h.directory.List(c.Request.Context(), keyword, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.DirectoryResponse{
		Keyword:   keyword,
		Rows:      rows,
		Total:     len(rows),
		Timestamp: time.Now(),
	})
}

// SubmitCopyRequest files a document-copy request by corporation number
// @Summary Request document copies
// @Description File a document-copy request with the registry for a corporation number
// @Tags Directory
// @Accept json
// @Produce json
// @Param request body models.CopyRequest true "Copy request"
// @Success 200 {object} models.CopyRequestResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /requests [post]
func (h *DirectoryHandler) SubmitCopyRequest(c *gin.Context) {
	requestID := c.GetString("request_id")

	var request models.CopyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id":         requestID,
		"corporation_number": request.CorporationNumber,
	}).Info("Processing copy request")

	result, err := h.relay.Submit(c.Request.Context(), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitCopyRequestByName files a copy request resolved from a keyword
// @Summary Request document copies by company name
// @Description Resolve the first directory match for the keyword, then file a document-copy request for it
// @Tags Directory
// @Accept json
// @Produce json
// @Param request body models.CopyRequestByName true "Copy request by name"
// @Success 200 {object} models.CopyRequestResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /requests/by-name [post]
func (h *DirectoryHandler) SubmitCopyRequestByName(c *gin.Context) {
	requestID := c.GetString("request_id")

	var request models.CopyRequestByName
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"keyword":    request.Keyword,
	}).Info("Processing copy request by name")

	result, err := h.relay.SubmitByName(c.Request.Context(), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
