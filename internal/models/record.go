package models

import (
	"encoding/json"
	"fmt"
)

// LabeledValue is one label/value row scraped from the registry.
type LabeledValue struct {
	Label string `json:"label" example:"Corporation Status"`
	Value string `json:"value" example:"Active"`
}

// DirectoryRow is one row of the registry's corporation directory.
type DirectoryRow struct {
	BusinessName      string `json:"business_name" example:"ACME WIDGETS INC."`
	Status            string `json:"status" example:"Active"`
	CorporationNumber string `json:"corporation_number" example:"1234567"`
	BusinessNumber    string `json:"business_number" example:"123456789RC0001"`
}

// DirectorRecord is one entry of a corporation's director roster.
type DirectorRecord struct {
	Name    string `json:"name" example:"JANE DOE"`
	Address string `json:"address" example:"100 Main St, Toronto ON, Canada"`
}

// DirectorsSection groups the director counts with the roster itself.
type DirectorsSection struct {
	Counts []LabeledValue   `json:"counts"`
	Roster []DirectorRecord `json:"roster"`
}

// FilingKind discriminates the two shapes an annual-filing value takes.
type FilingKind string

const (
	// FilingPlain is a single free-text value.
	FilingPlain FilingKind = "plain"
	// FilingList is a list of label/value pairs, used by the
	// "Status of Annual Filings" row.
	FilingList FilingKind = "list"
)

// FilingValue is a two-variant sum. Callers must switch on Kind before
// touching Plain or Items; only the field matching Kind is populated.
type FilingValue struct {
	Kind  FilingKind     `json:"kind"`
	Plain string         `json:"-"`
	Items []LabeledValue `json:"-"`
}

// PlainFiling builds the plain variant.
func PlainFiling(value string) FilingValue {
	return FilingValue{Kind: FilingPlain, Plain: value}
}

// ListFiling builds the list variant.
func ListFiling(items []LabeledValue) FilingValue {
	return FilingValue{Kind: FilingList, Items: items}
}

type filingValueJSON struct {
	Kind  FilingKind     `json:"kind"`
	Plain string         `json:"plain,omitempty"`
	Items []LabeledValue `json:"items,omitempty"`
}

// MarshalJSON emits only the field matching Kind.
func (v FilingValue) MarshalJSON() ([]byte, error) {
	out := filingValueJSON{Kind: v.Kind}
	switch v.Kind {
	case FilingPlain:
		out.Plain = v.Plain
	case FilingList:
		out.Items = v.Items
	default:
		return nil, fmt.Errorf("unknown filing kind %q", v.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the variant, used when records come back out
// of the cache.
func (v *FilingValue) UnmarshalJSON(data []byte) error {
	var in filingValueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case FilingPlain:
		*v = FilingValue{Kind: FilingPlain, Plain: in.Plain}
	case FilingList:
		*v = FilingValue{Kind: FilingList, Items: in.Items}
	default:
		return fmt.Errorf("unknown filing kind %q", in.Kind)
	}
	return nil
}

// FilingEntry is one row of the annual-filings section.
type FilingEntry struct {
	Label string      `json:"label" example:"Annual Filing Period"`
	Value FilingValue `json:"value"`
}

// HistoryTable is the corporate name history table, keyed by its
// heading text.
type HistoryTable struct {
	Heading string         `json:"heading" example:"Corporate Name History"`
	Rows    []LabeledValue `json:"rows"`
}

// HistoryPanel is one titled info panel of the history section.
type HistoryPanel struct {
	Title string         `json:"title" example:"Amalgamation"`
	Rows  []LabeledValue `json:"rows"`
}

// CorporationRecord is everything extracted from one corporation
// detail page.
type CorporationRecord struct {
	CorporationID string           `json:"corporation_id" example:"1234567"`
	Details       []LabeledValue   `json:"details"`
	Address       string           `json:"address" example:"100 Main St, Toronto ON, Canada"`
	Directors     DirectorsSection `json:"directors"`
	AnnualFilings []FilingEntry    `json:"annual_filings"`
	NameHistory   HistoryTable     `json:"name_history"`
	HistoryPanels []HistoryPanel   `json:"history_panels"`
}
