package models

import (
	"fmt"
	"regexp"
)

// RegisterType selects which register the portal searches. The string
// value of each constant is the literal text of the portal's dropdown
// option, so serialized values can be pasted straight into an XPath
// contains() predicate.
type RegisterType string

const (
	RegisterAll           RegisterType = "-- All Registers --"
	RegisterCorporations  RegisterType = "Corporations"
	RegisterBusinessNames RegisterType = "Business Names"
	RegisterPartnerships  RegisterType = "Partnerships"
)

// Status filters results by registration status.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusAll      Status = "-- All Statuses --"
)

// SearchOperator selects how the registration date filter is applied.
type SearchOperator string

const (
	OperatorOn       SearchOperator = "On"
	OperatorBefore   SearchOperator = "Before"
	OperatorFromOrOn SearchOperator = "From or On"
	OperatorBetween  SearchOperator = "Between"
)

// AnyBusinessType is the portal's sentinel option meaning "do not
// filter by business type". It is accepted for every register type.
const AnyBusinessType = "-- Any type --"

// businessTypesByRegister lists the business-type options the portal
// offers under each specific register. A criteria carrying a type
// outside its register's set would silently match nothing, so it is
// rejected up front. With no register (or the all-registers sentinel)
// the portal offers its full combined dropdown, so any type passes
// through unchecked.
var businessTypesByRegister = map[RegisterType][]string{
	RegisterCorporations: {
		"Business Corporation",
		"Not-for-Profit Corporation",
		"Co-operative Corporation",
		"Condominium Corporation",
	},
	RegisterBusinessNames: {
		"Sole Proprietorship",
		"General Partnership",
		"Business Name for a Corporation",
		"Limited Liability Partnership",
	},
	RegisterPartnerships: {
		"Limited Partnership",
		"Extra-Provincial Limited Partnership",
		"Limited Liability Partnership",
	},
}

// dateRe matches the portal's date widget format, e.g. "January 2, 2006".
var dateRe = regexp.MustCompile(`^[A-Z][a-z]+ \d{1,2}, \d{4}$`)

// SearchCriteria describes one portal search. Only Query is mandatory;
// every other field narrows the search when present.
// @Description Search filters applied on the registry portal's advanced search panel
type SearchCriteria struct {
	// Word or phrase typed into the search box
	Query string `json:"query" binding:"required" example:"widget"`
	// Register to search, one of the portal's register options
	RegisterType *RegisterType `json:"register_type,omitempty" example:"Corporations"`
	// Business type, must belong to the selected register's option set
	BusinessType *string `json:"business_type,omitempty" example:"Business Corporation"`
	// Registration status filter
	Status *Status `json:"status,omitempty" example:"Active"`
	// Registration date, formatted like "January 2, 2006"
	Date *string `json:"date,omitempty" example:"January 2, 2006"`
	// How the date filter is applied
	Operator *SearchOperator `json:"operator,omitempty" example:"Between"`
	// Upper bound date, only consulted when operator is Between
	EndDate *string `json:"end_date,omitempty" example:"March 4, 2006"`
}

// Validate checks internal consistency. It never mutates the criteria.
func (c *SearchCriteria) Validate() error {
	if c.Query == "" {
		return NewValidationError("query", "", "query is required")
	}
	if c.RegisterType != nil {
		switch *c.RegisterType {
		case RegisterAll, RegisterCorporations, RegisterBusinessNames, RegisterPartnerships:
		default:
			return NewValidationError("register_type", string(*c.RegisterType), "unknown register type")
		}
	}
	if c.BusinessType != nil && *c.BusinessType != AnyBusinessType && c.RegisterType != nil {
		if allowed, known := businessTypesByRegister[*c.RegisterType]; known {
			if !containsString(allowed, *c.BusinessType) {
				return NewValidationError("business_type", *c.BusinessType,
					fmt.Sprintf("not offered under register %q", *c.RegisterType))
			}
		}
	}
	if c.Status != nil {
		switch *c.Status {
		case StatusActive, StatusInactive, StatusAll:
		default:
			return NewValidationError("status", string(*c.Status), "unknown status")
		}
	}
	if c.Date != nil && !dateRe.MatchString(*c.Date) {
		return NewValidationError("date", *c.Date, `date must look like "January 2, 2006"`)
	}
	if c.Operator != nil {
		switch *c.Operator {
		case OperatorOn, OperatorBefore, OperatorFromOrOn, OperatorBetween:
		default:
			return NewValidationError("operator", string(*c.Operator), "unknown operator")
		}
	}
	// EndDate is only consulted with the Between operator; a stray end
	// date is ignored rather than rejected, matching the portal itself.
	if c.Operator != nil && *c.Operator == OperatorBetween && c.EndDate != nil && !dateRe.MatchString(*c.EndDate) {
		return NewValidationError("end_date", *c.EndDate, `date must look like "January 2, 2006"`)
	}
	return nil
}

// IsBetween reports whether the criteria carries a usable date range.
func (c *SearchCriteria) IsBetween() bool {
	return c.Operator != nil && *c.Operator == OperatorBetween && c.EndDate != nil
}

// SearchOutcome is the result of one search workflow run. Exactly one
// of the two conditions holds: the portal reported no matches, or it
// rendered a results page whose URL is captured here.
type SearchOutcome struct {
	NoResults  bool   `json:"no_results" example:"false"`
	ResultsURL string `json:"results_url,omitempty" example:"https://portal.example/results?..."`
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
