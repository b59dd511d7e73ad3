package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TemplateStatus represents the publication state of a template item.
type TemplateStatus string

// Possible template status values
const (
	TemplateStatusDraft     TemplateStatus = "DRAFT"
	TemplateStatusPublished TemplateStatus = "PUBLISHED"
)

// MaxTemplateTitleLength is the maximum allowed length for a template title.
const MaxTemplateTitleLength = 200

// Common validation errors for TemplateItem
var (
	ErrEmptyTemplateID       = errors.New("template ID cannot be empty")
	ErrEmptyTemplateTitle    = errors.New("template title cannot be empty")
	ErrTemplateTitleTooLong  = errors.New("template title exceeds maximum length")
	ErrInvalidTemplateStatus = errors.New("invalid template status")
)

// TemplateItem is the worked example resource for the scaffold. It carries
// the fields every scaffolded resource is expected to have: a generated ID,
// user-visible content, a small status enum, and audit timestamps.
type TemplateItem struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Body      *string        `json:"body"`
	Status    TemplateStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewTemplateItem creates a new TemplateItem with the given title, optional
// body and status. It generates a new UUID, defaults an empty status to
// DRAFT, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTemplateItem(title string, body *string, status TemplateStatus) (*TemplateItem, error) {
	if status == "" {
		status = TemplateStatusDraft
	}

	now := time.Now().UTC()
	item := &TemplateItem{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the TemplateItem has valid data.
// Returns an error if any field fails validation.
func (t *TemplateItem) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTemplateID
	}

	if t.Title == "" {
		return ErrEmptyTemplateTitle
	}

	if len(t.Title) > MaxTemplateTitleLength {
		return ErrTemplateTitleTooLong
	}

	if !IsValidTemplateStatus(t.Status) {
		return ErrInvalidTemplateStatus
	}

	return nil
}

// IsValidTemplateStatus checks if the given status is a valid TemplateStatus.
func IsValidTemplateStatus(status TemplateStatus) bool {
	switch status {
	case TemplateStatusDraft, TemplateStatusPublished:
		return true
	default:
		return false
	}
}

// TemplateChanges describes a partial update to a TemplateItem. Nil fields
// are left untouched by the update.
type TemplateChanges struct {
	Title  *string
	Body   *string
	Status *TemplateStatus
}

// IsEmpty reports whether the change set would not modify any field.
func (c TemplateChanges) IsEmpty() bool {
	return c.Title == nil && c.Body == nil && c.Status == nil
}

// Validate checks the populated fields of the change set.
func (c TemplateChanges) Validate() error {
	if c.Title != nil {
		if *c.Title == "" {
			return ErrEmptyTemplateTitle
		}
		if len(*c.Title) > MaxTemplateTitleLength {
			return ErrTemplateTitleTooLong
		}
	}

	if c.Status != nil && !IsValidTemplateStatus(*c.Status) {
		return ErrInvalidTemplateStatus
	}

	return nil
}
