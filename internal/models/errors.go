package models

import "fmt"

// ValidationError reports a request that can never succeed as given.
// It is terminal: the retry driver must not re-run an operation that
// failed validation.
type ValidationError struct {
	Field   string `json:"field" example:"date"`
	Message string `json:"message" example:"date must look like 'January 2, 2006'"`
	Value   string `json:"value,omitempty" example:"2024-01-15"`
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ExtractionError reports a page whose structure no longer matches the
// parser's expectations. Retrying would fetch the same markup, so the
// retry driver treats it as terminal.
type ExtractionError struct {
	Section string `json:"section" example:"annual filings"`
	Index   int    `json:"index" example:"7"`
	Message string `json:"message" example:"section not present in document"`
}

func (e *ExtractionError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("extraction failed at section %q (index %d): %s", e.Section, e.Index, e.Message)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

// NewExtractionError builds an ExtractionError for a named positional section.
func NewExtractionError(section string, index int, message string) *ExtractionError {
	return &ExtractionError{Section: section, Index: index, Message: message}
}
