package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/models"
	"github.com/nexconsult/registry-api/internal/services"
)

// CheckoutHandler handles portal checkout requests
type CheckoutHandler struct {
	portal services.PortalServiceInterface
	logger *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(portal services.PortalServiceInterface, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{portal: portal, logger: logger}
}

// Checkout searches the portal and purchases a product for a company
// @Summary Purchase a search product
// @Description Search the portal, open the named company and buy the requested product with the configured card
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Checkout request"
// @Success 200 {object} models.CheckoutResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var request models.CheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"query":      request.Query,
		"company":    request.Company,
		"product":    string(request.Product),
	}).Info("Processing portal checkout")

	outcome, finalURL, err := h.portal.Checkout(c.Request.Context(), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if outcome.NoResults {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"query":      request.Query,
		}).Info("Checkout aborted, search returned no results")

		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "No results",
			Message:   "The search returned no results, nothing to purchase",
			Code:      "NO_RESULTS",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	duration := time.Since(start)
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"company":    request.Company,
		"product":    string(request.Product),
		"duration":   duration,
	}).Info("Portal checkout completed")

	c.JSON(http.StatusOK, models.CheckoutResponse{
		Company:   request.Company,
		Product:   request.Product,
		FinalURL:  finalURL,
		TookMs:    duration.Milliseconds(),
		Timestamp: time.Now(),
	})
}
