package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/browser"
	"github.com/nexconsult/registry-api/internal/models"
)

// respondError maps service errors onto HTTP status codes. Validation
// problems are the caller's fault, extraction problems mean the
// upstream page changed, browser problems mean the portal or Chrome
// is struggling.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	requestID := c.GetString("request_id")
	entry := logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"path":       c.Request.URL.Path,
	}).WithError(err)

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		entry.Warn("Request rejected by validation")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Validation failed",
			Message:   ve.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	var ee *models.ExtractionError
	if errors.As(err, &ee) {
		entry.Error("Upstream page no longer matches parser")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:     "Extraction failed",
			Message:   ee.Error(),
			Code:      "EXTRACTION_FAILED",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	var se *browser.SessionError
	if errors.As(err, &se) {
		entry.Error("Browser session failure")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:     "Browser unavailable",
			Message:   "The browser automation backend is unavailable. Please try again later",
			Code:      "BROWSER_UNAVAILABLE",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	var nf *browser.NotFoundError
	if errors.As(err, &nf) {
		entry.Error("Portal element never appeared")
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Error:     "Portal timeout",
			Message:   "The registry portal did not respond in time. Please try again later",
			Code:      "PORTAL_TIMEOUT",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	entry.Error("Request failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:     "Internal server error",
		Message:   "An unexpected error occurred while processing your request",
		Code:      "INTERNAL_ERROR",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// respondBadRequest reports a malformed request body.
func respondBadRequest(c *gin.Context, logger *logrus.Logger, err error) {
	logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	}).WithError(err).Warn("Invalid request format")

	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "Invalid request format",
		Message:   err.Error(),
		Code:      "INVALID_REQUEST",
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
