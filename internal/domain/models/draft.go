package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus is the lifecycle state of a draft.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "draft"
	DraftStatusGenerated DraftStatus = "generated"
	DraftStatusPublished DraftStatus = "published"
)

// rank orders statuses along draft → generated → published.
func (s DraftStatus) rank() int {
	switch s {
	case DraftStatusGenerated:
		return 1
	case DraftStatusPublished:
		return 2
	default:
		return 0
	}
}

// Valid reports whether s is a known status.
func (s DraftStatus) Valid() bool {
	switch s {
	case DraftStatusDraft, DraftStatusGenerated, DraftStatusPublished:
		return true
	}
	return false
}

// Advance returns the status after moving toward next. Status never regresses,
// so generating a published draft keeps it published.
func (s DraftStatus) Advance(next DraftStatus) DraftStatus {
	if next.rank() > s.rank() {
		return next
	}
	return s
}

// DraftMetadata is the document header information.
type DraftMetadata struct {
	Subject       string `json:"subject"`
	Code          string `json:"code"`
	Department    string `json:"department"`
	Revision      string `json:"revision"`
	PublishDate   string `json:"publish_date"`
	EffectiveDate string `json:"effective_date"`
}

// DraftMetadataPatch carries a partial metadata update. Nil fields are left untouched.
type DraftMetadataPatch struct {
	Subject       *string `json:"subject,omitempty"`
	Code          *string `json:"code,omitempty"`
	Department    *string `json:"department,omitempty"`
	Revision      *string `json:"revision,omitempty"`
	PublishDate   *string `json:"publish_date,omitempty"`
	EffectiveDate *string `json:"effective_date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *DraftMetadataPatch) IsEmpty() bool {
	return p == nil || (p.Subject == nil && p.Code == nil && p.Department == nil &&
		p.Revision == nil && p.PublishDate == nil && p.EffectiveDate == nil)
}

// Apply merges the patch into m.
func (p *DraftMetadataPatch) Apply(m DraftMetadata) DraftMetadata {
	if p == nil {
		return m
	}
	if p.Subject != nil {
		m.Subject = *p.Subject
	}
	if p.Code != nil {
		m.Code = *p.Code
	}
	if p.Department != nil {
		m.Department = *p.Department
	}
	if p.Revision != nil {
		m.Revision = *p.Revision
	}
	if p.PublishDate != nil {
		m.PublishDate = *p.PublishDate
	}
	if p.EffectiveDate != nil {
		m.EffectiveDate = *p.EffectiveDate
	}
	return m
}

// Draft is the editable, pre-binary representation of a document.
type Draft struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	Title          string        `json:"title" db:"title"`
	Status         DraftStatus   `json:"status" db:"status"`
	Metadata       DraftMetadata `json:"metadata" db:"metadata"`
	Content        ParsedContent `json:"content" db:"content"`
	LocalFileRef   string        `json:"local_file_ref" db:"local_file_ref"` // relative to the output directory
	LastModifiedBy string        `json:"last_modified_by,omitempty" db:"last_modified_by"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	LastModifiedAt time.Time     `json:"last_modified_at" db:"last_modified_at"`
}

// Actors recorded in Draft.LastModifiedBy.
const (
	ActorAgent  = "agent"
	ActorEditor = "editor"
	ActorUser   = "user"
)
