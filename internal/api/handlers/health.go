package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/models"
	"github.com/nexconsult/registry-api/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	services  *services.Container
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services *services.Container, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		services:  services,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth handles general health check
// @Summary Health check
// @Description Get the health status of the API and its dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *gin.Context) {
	servicesHealth := h.services.Health()

	status := "healthy"
	response := models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Services:  make(map[string]models.ServiceInfo),
		Uptime:    time.Since(h.startTime).String(),
	}

	for serviceName, serviceHealth := range servicesHealth {
		info := models.ServiceInfo{Status: "healthy", LastCheck: time.Now()}
		if healthMap, ok := serviceHealth.(map[string]interface{}); ok {
			if s, exists := healthMap["status"]; exists {
				info.Status, _ = s.(string)
			}
			if errMsg, exists := healthMap["error"]; exists {
				info.Error, _ = errMsg.(string)
			}
		}
		if info.Status == "unhealthy" {
			response.Status = "unhealthy"
		}
		response.Services[serviceName] = info
	}

	httpStatus := http.StatusOK
	if response.Status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, response)
}

// GetReadiness handles readiness probe
// @Summary Readiness check
// @Description Check if the API can start a browser session and reach its dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /health/ready [get]
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	ready := true
	issues := make([]string, 0)

	if err := h.services.PortalService.Ping(c.Request.Context()); err != nil {
		ready = false
		issues = append(issues, "browser session cannot be started")
		h.logger.WithError(err).Warn("Readiness probe failed to start browser")
	}

	response := map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now(),
		"services":  h.services.Health(),
	}
	if len(issues) > 0 {
		response["issues"] = issues
	}

	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, response)
}

// GetLiveness handles liveness probe
// @Summary Liveness check
// @Description Check if the API is alive and responding
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
		"version":   "1.0.0",
	})
}
