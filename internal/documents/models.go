package documents

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "docverify/pkg/domain-errors"
)

// DocumentType is the legal category chosen in the first wizard step.
type DocumentType string

const (
	TypeContract   DocumentType = "contract"
	TypeLease      DocumentType = "lease"
	TypeWill       DocumentType = "will"
	TypeNDA        DocumentType = "nda"
	TypeEmployment DocumentType = "employment"
	TypeOther      DocumentType = "other"
)

// TypeInfo describes a document type for selection screens.
type TypeInfo struct {
	ID          DocumentType `json:"id"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
}

var catalog = []TypeInfo{
	{TypeContract, "Contract", "Business contracts, service agreements, purchase agreements"},
	{TypeLease, "Lease Agreement", "Residential or commercial lease agreements"},
	{TypeWill, "Will & Testament", "Last will and testament, estate planning documents"},
	{TypeNDA, "NDA", "Non-disclosure agreements, confidentiality agreements"},
	{TypeEmployment, "Employment Agreement", "Employment contracts, offer letters, termination agreements"},
	{TypeOther, "Other", "Other legal documents not listed above"},
}

// Types returns the selectable document types in display order.
func Types() []TypeInfo {
	return append([]TypeInfo(nil), catalog...)
}

// ParseDocumentType accepts a type id case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	v := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range catalog {
		if t.ID == v {
			return v, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown document type")
}

// Document is an uploaded file owned by a user.
type Document struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
