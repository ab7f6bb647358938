package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldNotFound is stored for detail fields the detail page did not expose
const FieldNotFound = "None"

// PublishedDateLayout is the day/month/year layout used on the listing page and in the store
const PublishedDateLayout = "02/01/2006"

// CandidateListing is one row of the search results table dated today
type CandidateListing struct {
	PublishedOn       string `json:"published_on"`
	Category          string `json:"category"`
	ProcedureType     string `json:"procedure_type"`
	PublicBuyer       string `json:"public_buyer"`
	ExecutionLocation string `json:"execution_location"`
	DetailLink        string `json:"detail_link,omitempty"`
}

// HasDetailLink reports whether the row points at a detail page
func (c CandidateListing) HasDetailLink() bool {
	return c.DetailLink != ""
}

// DetailFields holds the values read from a tender detail page
type DetailFields struct {
	DownloadLink       string `json:"download_link"`
	DocumentsLink      string `json:"documents_link"`
	ObjectDescription  string `json:"object_description"`
	Reference          string `json:"reference"`
	SubmissionDeadline string `json:"submission_deadline"`
	Verified           bool   `json:"verified"`
}

// TenderRecord is the unit of persistence: a listing row merged with its detail fields
type TenderRecord struct {
	ID uuid.UUID `json:"id"`

	CandidateListing
	DetailFields

	CreatedAt time.Time `json:"created_at"`
}

// NewTenderRecord merges a listing row with the fields fetched from its detail page
func NewTenderRecord(listing CandidateListing, details DetailFields) TenderRecord {
	return TenderRecord{
		CandidateListing: listing,
		DetailFields:     details,
	}
}

// TenderIdentity is the ten-field tuple two records must share to be the same tender.
// It is comparable and can be used as a map key.
type TenderIdentity struct {
	PublishedOn        string
	Category           string
	ProcedureType      string
	DetailLink         string
	ExecutionLocation  string
	PublicBuyer        string
	DownloadLink       string
	ObjectDescription  string
	Reference          string
	SubmissionDeadline string
}

// Identity returns the dedup key of the record. ID, timestamps, DocumentsLink and
// Verified are not part of it.
func (r TenderRecord) Identity() TenderIdentity {
	return TenderIdentity{
		PublishedOn:        r.PublishedOn,
		Category:           r.Category,
		ProcedureType:      r.ProcedureType,
		DetailLink:         r.DetailLink,
		ExecutionLocation:  r.ExecutionLocation,
		PublicBuyer:        r.PublicBuyer,
		DownloadLink:       r.DownloadLink,
		ObjectDescription:  r.ObjectDescription,
		Reference:          r.Reference,
		SubmissionDeadline: r.SubmissionDeadline,
	}
}

// SameTender reports whether both records carry the same identity tuple
func (r TenderRecord) SameTender(other TenderRecord) bool {
	return r.Identity() == other.Identity()
}
