package services

import (
	"context"

	"github.com/nexconsult/registry-api/internal/models"
)

// PortalServiceInterface runs browser-driven portal workflows.
type PortalServiceInterface interface {
	// Search runs the portal search and reads the matching companies.
	Search(ctx context.Context, criteria *models.SearchCriteria) (*models.SearchOutcome, []string, error)

	// Checkout searches, opens a company and purchases a product.
	Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.SearchOutcome, string, error)

	// Ping verifies a browser session can still be started.
	Ping(ctx context.Context) error
}

// DirectoryServiceInterface reads the registry's legacy pages.
type DirectoryServiceInterface interface {
	// List walks the directory listing for a keyword, returning at
	// most limit rows (0 meaning all).
	List(ctx context.Context, keyword string, limit int) ([]models.DirectoryRow, error)

	// Corporation fetches one corporation's detail record. The bool
	// reports whether it came from cache.
	Corporation(ctx context.Context, corpID string) (*models.CorporationRecord, bool, error)
}

// RelayServiceInterface files document-copy requests.
type RelayServiceInterface interface {
	// Submit files a copy request for a corporation number.
	Submit(ctx context.Context, req *models.CopyRequest) (*models.CopyRequestResponse, error)

	// SubmitByName resolves the corporation from the directory first.
	SubmitByName(ctx context.Context, req *models.CopyRequestByName) (*models.CopyRequestResponse, error)
}
