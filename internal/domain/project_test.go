package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	project, err := NewProject("North Quay Substation", "NQ-SUB-01", "Grid substation refit")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if project.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if project.Name != "North Quay Substation" {
		t.Errorf("Expected name %q, got %q", "North Quay Substation", project.Name)
	}

	if project.Code != "NQ-SUB-01" {
		t.Errorf("Expected code %q, got %q", "NQ-SUB-01", project.Code)
	}

	if project.Status != ProjectStatusDraft {
		t.Errorf("Expected status %s, got %s", ProjectStatusDraft, project.Status)
	}

	if project.StartDate != nil || project.EndDate != nil {
		t.Error("Expected nil start and end dates on a new project")
	}

	if project.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if project.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}

	// Test invalid name
	_, err = NewProject("", "NQ-SUB-01", "")
	if !errors.Is(err, ErrEmptyProjectName) {
		t.Errorf("Expected error %v, got %v", ErrEmptyProjectName, err)
	}

	// Test invalid code
	_, err = NewProject("North Quay Substation", "nq_sub", "")
	if !errors.Is(err, ErrInvalidProjectCode) {
		t.Errorf("Expected error %v, got %v", ErrInvalidProjectCode, err)
	}
}

func TestProjectValidate(t *testing.T) {
	t.Parallel()

	validProject := Project{
		ID:     uuid.New(),
		Name:   "Harbour Crane Upgrade",
		Code:   "HCU-22",
		Status: ProjectStatusDraft,
	}

	// Test valid project
	if err := validProject.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test invalid ID
	invalid := validProject
	invalid.ID = uuid.Nil
	if err := invalid.Validate(); !errors.Is(err, ErrEmptyProjectID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyProjectID, err)
	}

	// Test empty name
	invalid = validProject
	invalid.Name = ""
	if err := invalid.Validate(); !errors.Is(err, ErrEmptyProjectName) {
		t.Errorf("Expected error %v, got %v", ErrEmptyProjectName, err)
	}

	// Test overlong name
	invalid = validProject
	invalid.Name = strings.Repeat("x", 201)
	if err := invalid.Validate(); !errors.Is(err, ErrProjectNameTooLong) {
		t.Errorf("Expected error %v, got %v", ErrProjectNameTooLong, err)
	}

	// Test empty code
	invalid = validProject
	invalid.Code = ""
	if err := invalid.Validate(); !errors.Is(err, ErrEmptyProjectCode) {
		t.Errorf("Expected error %v, got %v", ErrEmptyProjectCode, err)
	}

	// Test overlong description
	invalid = validProject
	invalid.Description = strings.Repeat("x", 2001)
	if err := invalid.Validate(); !errors.Is(err, ErrProjectDescriptionTooLong) {
		t.Errorf("Expected error %v, got %v", ErrProjectDescriptionTooLong, err)
	}

	// Test invalid status
	invalid = validProject
	invalid.Status = "invalid_status"
	if err := invalid.Validate(); !errors.Is(err, ErrInvalidProjectStatus) {
		t.Errorf("Expected error %v, got %v", ErrInvalidProjectStatus, err)
	}
}

func TestProjectCodeFormat(t *testing.T) {
	t.Parallel()

	valid := []string{"AB", "NQ-SUB-01", "X9", "A1B2C3D4E5F6G7H8I9J0"}
	for _, code := range valid {
		if !isValidProjectCode(code) {
			t.Errorf("Expected code %q to be valid", code)
		}
	}

	invalid := []string{"", "A", "ab", "A B", "A_B", "A1B2C3D4E5F6G7H8I9J0X", "nq-sub"}
	for _, code := range invalid {
		if isValidProjectCode(code) {
			t.Errorf("Expected code %q to be invalid", code)
		}
	}
}

func TestProjectUpdateStatus(t *testing.T) {
	t.Parallel()

	project := Project{
		ID:     uuid.New(),
		Name:   "Harbour Crane Upgrade",
		Code:   "HCU-22",
		Status: ProjectStatusDraft,
	}

	origUpdatedAt := project.UpdatedAt
	if err := project.UpdateStatus(ProjectStatusActive); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if project.Status != ProjectStatusActive {
		t.Errorf("Expected status %s, got %s", ProjectStatusActive, project.Status)
	}

	if !project.UpdatedAt.After(origUpdatedAt) && !project.UpdatedAt.Equal(origUpdatedAt) {
		t.Error("Expected UpdatedAt to be updated")
	}

	// Test invalid status
	if err := project.UpdateStatus("invalid_status"); !errors.Is(err, ErrInvalidProjectStatus) {
		t.Errorf("Expected error %v, got %v", ErrInvalidProjectStatus, err)
	}
}
