package models

// Product is a purchasable search product on the portal. The string
// value is the literal label text of the product's radio option.
type Product string

const (
	ProductProfileReport       Product = "Profile Report"
	ProductDocumentCopies      Product = "Document Copies"
	ProductCertificateOfStatus Product = "Certificate of Status"
)

// CheckoutRequest asks the service to search the portal, open the
// named company and purchase a product for it.
// @Description Full checkout request: search criteria plus company, product and notification email
type CheckoutRequest struct {
	SearchCriteria
	// Company name as it appears in the result list
	Company string `json:"company" binding:"required" example:"ACME WIDGETS INC."`
	// Product to purchase
	Product Product `json:"product" binding:"required" example:"Profile Report"`
	// Delivery email; the configured default is used when empty
	Email string `json:"email,omitempty" example:"orders@example.com"`
}

// Validate checks the embedded criteria and the checkout fields.
func (r *CheckoutRequest) Validate() error {
	if err := r.SearchCriteria.Validate(); err != nil {
		return err
	}
	if r.Company == "" {
		return NewValidationError("company", "", "company is required")
	}
	switch r.Product {
	case ProductProfileReport, ProductDocumentCopies, ProductCertificateOfStatus:
	default:
		return NewValidationError("product", string(r.Product), "unknown product")
	}
	return nil
}

// EmailOrDefault resolves the delivery address against the configured default.
func (r *CheckoutRequest) EmailOrDefault(def string) string {
	if r.Email != "" {
		return r.Email
	}
	return def
}

// CopyRequest orders document copies for a corporation through the
// registry's request API.
type CopyRequest struct {
	CorporationNumber string `json:"corporation_number" binding:"required" example:"1234567"`
	FirstName         string `json:"first_name" binding:"required" example:"Jane"`
	LastName          string `json:"last_name" binding:"required" example:"Doe"`
	Email             string `json:"email" binding:"required" example:"jane@example.com"`
	Phone             string `json:"phone" binding:"required" example:"4165550100"`
}

// CopyRequestByName is a CopyRequest keyed by company name instead of
// corporation number; the number is resolved from the directory first.
type CopyRequestByName struct {
	Keyword   string `json:"keyword" binding:"required" example:"acme"`
	FirstName string `json:"first_name" binding:"required" example:"Jane"`
	LastName  string `json:"last_name" binding:"required" example:"Doe"`
	Email     string `json:"email" binding:"required" example:"jane@example.com"`
	Phone     string `json:"phone" binding:"required" example:"4165550100"`
}
