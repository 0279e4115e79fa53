package models

import (
	"time"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"Validation failed"`
	Message   string    `json:"message" example:"date must look like 'January 2, 2006'"`
	Code      string    `json:"code,omitempty" example:"INVALID_CRITERIA"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string    `json:"path" example:"/api/v1/search/companies"`
}

// SearchResponse is returned by the portal search endpoint.
type SearchResponse struct {
	Outcome   SearchOutcome `json:"outcome"`
	Companies []string      `json:"companies,omitempty"`
	TookMs    int64         `json:"took_ms" example:"42000"`
	Timestamp time.Time     `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// CheckoutResponse is returned after a completed portal checkout.
type CheckoutResponse struct {
	Company   string    `json:"company" example:"ACME WIDGETS INC."`
	Product   Product   `json:"product" example:"Profile Report"`
	FinalURL  string    `json:"final_url" example:"https://portal.example/receipt?..."`
	TookMs    int64     `json:"took_ms" example:"95000"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// DirectoryResponse is returned by the directory listing endpoint.
type DirectoryResponse struct {
	Keyword   string         `json:"keyword" example:"acme"`
	Rows      []DirectoryRow `json:"rows"`
	Total     int            `json:"total" example:"37"`
	Timestamp time.Time      `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// CorporationResponse wraps a corporation record with cache metadata.
type CorporationResponse struct {
	Record    *CorporationRecord `json:"record"`
	Cache     bool               `json:"cache" example:"false"`
	Timestamp time.Time          `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// CopyRequestResponse reports a submitted document-copy request.
type CopyRequestResponse struct {
	CorporationNumber string    `json:"corporation_number" example:"1234567"`
	ContactID         string    `json:"contact_id" example:"98765"`
	Documents         int       `json:"documents" example:"12"`
	Timestamp         time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]ServiceInfo `json:"services"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
}

// ServiceInfo represents individual service health
type ServiceInfo struct {
	Status         string    `json:"status" example:"healthy"`
	LastCheck      time.Time `json:"last_check" example:"2024-01-15T10:30:00Z"`
	ResponseTimeMs int64     `json:"response_time_ms" example:"150"`
	Error          string    `json:"error,omitempty"`
}
