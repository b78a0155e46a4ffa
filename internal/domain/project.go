package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

// Possible project status values
const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusOnHold   ProjectStatus = "on_hold"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Common validation errors for Project
var (
	ErrEmptyProjectID            = errors.New("project ID cannot be empty")
	ErrEmptyProjectName          = errors.New("project name cannot be empty")
	ErrProjectNameTooLong        = errors.New("project name must be at most 200 characters long")
	ErrEmptyProjectCode          = errors.New("project code cannot be empty")
	ErrInvalidProjectCode        = errors.New("project code must be 2-20 uppercase letters, digits, or dashes")
	ErrProjectDescriptionTooLong = errors.New("project description must be at most 2000 characters long")
	ErrInvalidProjectStatus      = errors.New("invalid project status")
)

// Project represents a tracked engineering project. It carries the project's
// identity, descriptive fields, and lifecycle status. Which status transitions
// are legal depends on the API version and is enforced by the service layer.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a new Project with the given name, code, and description.
// It generates a new UUID for the project ID, sets the status to draft,
// and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewProject(name, code, description string) (*Project, error) {
	project := &Project{
		ID:          uuid.New(),
		Name:        name,
		Code:        code,
		Description: description,
		Status:      ProjectStatusDraft,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// EntityID returns the project's unique identifier.
func (p *Project) EntityID() uuid.UUID {
	return p.ID
}

// Validate checks if the Project has valid data.
// Returns an error if any field fails validation.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if p.Name == "" {
		return ErrEmptyProjectName
	}

	if len(p.Name) > 200 {
		return ErrProjectNameTooLong
	}

	if p.Code == "" {
		return ErrEmptyProjectCode
	}

	if !isValidProjectCode(p.Code) {
		return ErrInvalidProjectCode
	}

	if len(p.Description) > 2000 {
		return ErrProjectDescriptionTooLong
	}

	if !isValidProjectStatus(p.Status) {
		return ErrInvalidProjectStatus
	}

	return nil
}

// UpdateStatus sets the project's status and updates the UpdatedAt timestamp.
// Returns an error if the new status is not in the project status vocabulary.
// Whether the transition itself is legal is decided by the service layer.
func (p *Project) UpdateStatus(status ProjectStatus) error {
	if !isValidProjectStatus(status) {
		return ErrInvalidProjectStatus
	}

	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidProjectStatus checks if the given status is a valid ProjectStatus.
func isValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusArchived:
		return true
	default:
		return false
	}
}

// isValidProjectCode checks that a code consists of 2 to 20 uppercase
// letters, digits, or dashes.
func isValidProjectCode(code string) bool {
	if len(code) < 2 || len(code) > 20 {
		return false
	}

	for _, char := range code {
		switch {
		case char >= 'A' && char <= 'Z':
		case char >= '0' && char <= '9':
		case char == '-':
		default:
			return false
		}
	}

	return true
}
