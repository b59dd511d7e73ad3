package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewTemplateItem(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid template creation
	body := "A body for the template."
	item, err := NewTemplateItem("Welcome template", &body, TemplateStatusPublished)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if item.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if item.Title != "Welcome template" {
		t.Errorf("Expected title %q, got %q", "Welcome template", item.Title)
	}

	if item.Body == nil || *item.Body != body {
		t.Errorf("Expected body %q, got %v", body, item.Body)
	}

	if item.Status != TemplateStatusPublished {
		t.Errorf("Expected status %s, got %s", TemplateStatusPublished, item.Status)
	}

	if item.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if item.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}

	// Empty status defaults to draft
	item, err = NewTemplateItem("Draft by default", nil, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if item.Status != TemplateStatusDraft {
		t.Errorf("Expected status %s, got %s", TemplateStatusDraft, item.Status)
	}
	if item.Body != nil {
		t.Errorf("Expected nil body, got %v", item.Body)
	}

	// Test invalid title
	_, err = NewTemplateItem("", nil, TemplateStatusDraft)
	if err != ErrEmptyTemplateTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTemplateTitle, err)
	}

	// Test overlong title
	_, err = NewTemplateItem(strings.Repeat("x", MaxTemplateTitleLength+1), nil, TemplateStatusDraft)
	if err != ErrTemplateTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTemplateTitleTooLong, err)
	}

	// Test invalid status
	_, err = NewTemplateItem("Valid title", nil, "ARCHIVED")
	if err != ErrInvalidTemplateStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTemplateStatus, err)
	}
}

func TestTemplateItemValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	validItem := TemplateItem{
		ID:     uuid.New(),
		Title:  "Test template",
		Status: TemplateStatusDraft,
	}

	// Test valid item
	if err := validItem.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test invalid ID
	invalidItem := validItem
	invalidItem.ID = uuid.Nil
	if err := invalidItem.Validate(); err != ErrEmptyTemplateID {
		t.Errorf("Expected error %v, got %v", ErrEmptyTemplateID, err)
	}

	// Test invalid title
	invalidItem = validItem
	invalidItem.Title = ""
	if err := invalidItem.Validate(); err != ErrEmptyTemplateTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTemplateTitle, err)
	}

	// Test overlong title
	invalidItem = validItem
	invalidItem.Title = strings.Repeat("x", MaxTemplateTitleLength+1)
	if err := invalidItem.Validate(); err != ErrTemplateTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTemplateTitleTooLong, err)
	}

	// Test invalid status
	invalidItem = validItem
	invalidItem.Status = "invalid_status"
	if err := invalidItem.Validate(); err != ErrInvalidTemplateStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTemplateStatus, err)
	}
}

func TestIsValidTemplateStatus(t *testing.T) {
	t.Parallel() // Enable parallel execution
	validStatuses := []TemplateStatus{
		TemplateStatusDraft,
		TemplateStatusPublished,
	}

	for _, status := range validStatuses {
		if !IsValidTemplateStatus(status) {
			t.Errorf("Expected status %s to be valid", status)
		}
	}

	invalidStatuses := []TemplateStatus{"", "draft", "published", "ARCHIVED"}
	for _, status := range invalidStatuses {
		if IsValidTemplateStatus(status) {
			t.Errorf("Expected status %q to be invalid", status)
		}
	}
}

func TestTemplateChanges(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Empty change set
	var changes TemplateChanges
	if !changes.IsEmpty() {
		t.Error("Expected empty change set")
	}
	if err := changes.Validate(); err != nil {
		t.Errorf("Expected no error for empty change set, got %v", err)
	}

	// Populated change set
	title := "Updated title"
	status := TemplateStatusPublished
	changes = TemplateChanges{Title: &title, Status: &status}
	if changes.IsEmpty() {
		t.Error("Expected non-empty change set")
	}
	if err := changes.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Empty title is rejected
	emptyTitle := ""
	changes = TemplateChanges{Title: &emptyTitle}
	if err := changes.Validate(); err != ErrEmptyTemplateTitle {
		t.Errorf("Expected error %v, got %v", ErrEmptyTemplateTitle, err)
	}

	// Overlong title is rejected
	longTitle := strings.Repeat("x", MaxTemplateTitleLength+1)
	changes = TemplateChanges{Title: &longTitle}
	if err := changes.Validate(); err != ErrTemplateTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTemplateTitleTooLong, err)
	}

	// Invalid status is rejected
	badStatus := TemplateStatus("ARCHIVED")
	changes = TemplateChanges{Status: &badStatus}
	if err := changes.Validate(); err != ErrInvalidTemplateStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTemplateStatus, err)
	}
}
