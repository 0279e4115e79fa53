package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSearchCriteriaValidate(t *testing.T) {
	tests := []struct {
		name     string
		criteria SearchCriteria
		wantErr  string
	}{
		{
			name:     "query only",
			criteria: SearchCriteria{Query: "widget"},
		},
		{
			name:    "missing query",
			wantErr: "query is required",
		},
		{
			name: "valid register and matching business type",
			criteria: SearchCriteria{
				Query:        "widget",
				RegisterType: ptr(RegisterCorporations),
				BusinessType: ptr("Business Corporation"),
			},
		},
		{
			name: "business type outside register set",
			criteria: SearchCriteria{
				Query:        "widget",
				RegisterType: ptr(RegisterCorporations),
				BusinessType: ptr("Sole Proprietorship"),
			},
			wantErr: "not offered under register",
		},
		{
			name: "any-type sentinel always allowed",
			criteria: SearchCriteria{
				Query:        "widget",
				RegisterType: ptr(RegisterPartnerships),
				BusinessType: ptr(AnyBusinessType),
			},
		},
		{
			name: "business type without register is not checked",
			criteria: SearchCriteria{
				Query:        "widget",
				BusinessType: ptr("Mining Cooperative"),
			},
		},
		{
			name: "business type under all-registers is not checked",
			criteria: SearchCriteria{
				Query:        "widget",
				RegisterType: ptr(RegisterAll),
				BusinessType: ptr("Mining Cooperative"),
			},
		},
		{
			name: "unknown register type",
			criteria: SearchCriteria{
				Query:        "widget",
				RegisterType: ptr(RegisterType("Trusts")),
			},
			wantErr: "unknown register type",
		},
		{
			name: "unknown status",
			criteria: SearchCriteria{
				Query:  "widget",
				Status: ptr(Status("Dormant")),
			},
			wantErr: "unknown status",
		},
		{
			name: "valid date",
			criteria: SearchCriteria{
				Query: "widget",
				Date:  ptr("January 2, 2006"),
			},
		},
		{
			name: "single digit day",
			criteria: SearchCriteria{
				Query: "widget",
				Date:  ptr("March 4, 1999"),
			},
		},
		{
			name: "iso date rejected",
			criteria: SearchCriteria{
				Query: "widget",
				Date:  ptr("2006-01-02"),
			},
			wantErr: "date must look like",
		},
		{
			name: "lowercase month rejected",
			criteria: SearchCriteria{
				Query: "widget",
				Date:  ptr("january 2, 2006"),
			},
			wantErr: "date must look like",
		},
		{
			name: "unknown operator",
			criteria: SearchCriteria{
				Query:    "widget",
				Operator: ptr(SearchOperator("After")),
			},
			wantErr: "unknown operator",
		},
		{
			name: "between with valid end date",
			criteria: SearchCriteria{
				Query:    "widget",
				Date:     ptr("January 2, 2006"),
				Operator: ptr(OperatorBetween),
				EndDate:  ptr("March 4, 2006"),
			},
		},
		{
			name: "between with malformed end date",
			criteria: SearchCriteria{
				Query:    "widget",
				Date:     ptr("January 2, 2006"),
				Operator: ptr(OperatorBetween),
				EndDate:  ptr("04/03/2006"),
			},
			wantErr: "date must look like",
		},
		{
			name: "malformed end date ignored without between",
			criteria: SearchCriteria{
				Query:    "widget",
				Date:     ptr("January 2, 2006"),
				Operator: ptr(OperatorOn),
				EndDate:  ptr("04/03/2006"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSearchCriteriaIsBetween(t *testing.T) {
	c := SearchCriteria{Query: "widget", Operator: ptr(OperatorBetween), EndDate: ptr("March 4, 2006")}
	assert.True(t, c.IsBetween())

	c = SearchCriteria{Query: "widget", Operator: ptr(OperatorBetween)}
	assert.False(t, c.IsBetween(), "between without end date has no usable range")

	c = SearchCriteria{Query: "widget", Operator: ptr(OperatorOn), EndDate: ptr("March 4, 2006")}
	assert.False(t, c.IsBetween(), "end date is only consulted with Between")
}

func TestRegisterTypeSerialization(t *testing.T) {
	assert.Equal(t, "-- All Registers --", string(RegisterAll))
	assert.Equal(t, "Business Names", string(RegisterBusinessNames))
	assert.Equal(t, "-- All Statuses --", string(StatusAll))
	assert.Equal(t, "From or On", string(OperatorFromOrOn))
}

func TestCheckoutRequestValidate(t *testing.T) {
	base := CheckoutRequest{
		SearchCriteria: SearchCriteria{Query: "widget"},
		Company:        "ACME WIDGETS INC.",
		Product:        ProductProfileReport,
	}

	assert.NoError(t, base.Validate())

	invalid := base
	invalid.Company = ""
	assert.ErrorContains(t, invalid.Validate(), "company is required")

	invalid = base
	invalid.Product = Product("Annual Report")
	assert.ErrorContains(t, invalid.Validate(), "unknown product")

	invalid = base
	invalid.Query = ""
	assert.ErrorContains(t, invalid.Validate(), "query is required")
}

func TestCheckoutRequestEmailOrDefault(t *testing.T) {
	req := CheckoutRequest{Email: "explicit@example.com"}
	assert.Equal(t, "explicit@example.com", req.EmailOrDefault("default@example.com"))

	req.Email = ""
	assert.Equal(t, "default@example.com", req.EmailOrDefault("default@example.com"))
}
