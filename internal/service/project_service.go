package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// ProjectRules is the business rule variant applied by a ProjectService
// instance. Hosts construct one service per registered API version and
// dispatch by resolved version, so one process serves several rule sets side
// by side.
type ProjectRules struct {
	// Label names the rule set in logs.
	Label string

	// Transitions lists the legal target statuses per current status.
	// Keeping the current status is always legal.
	Transitions map[domain.ProjectStatus][]domain.ProjectStatus
}

// ProjectRulesV1 returns the original contract rules: a linear flow from
// draft to active to archived, with direct archiving of drafts.
func ProjectRulesV1() ProjectRules {
	return ProjectRules{
		Label: "v1",
		Transitions: map[domain.ProjectStatus][]domain.ProjectStatus{
			domain.ProjectStatusDraft:  {domain.ProjectStatusActive, domain.ProjectStatusArchived},
			domain.ProjectStatusActive: {domain.ProjectStatusArchived},
		},
	}
}

// ProjectRulesV2 returns the second contract generation: active projects may
// be put on hold and resumed before archiving.
func ProjectRulesV2() ProjectRules {
	return ProjectRules{
		Label: "v2",
		Transitions: map[domain.ProjectStatus][]domain.ProjectStatus{
			domain.ProjectStatusDraft:  {domain.ProjectStatusActive, domain.ProjectStatusArchived},
			domain.ProjectStatusActive: {domain.ProjectStatusOnHold, domain.ProjectStatusArchived},
			domain.ProjectStatusOnHold: {domain.ProjectStatusActive, domain.ProjectStatusArchived},
		},
	}
}

// allows reports whether the rule set permits moving between two statuses.
func (r ProjectRules) allows(from, to domain.ProjectStatus) bool {
	if from == to {
		return true
	}
	for _, target := range r.Transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// ProjectSchedule is a planning window. Nil members clear the corresponding
// date.
type ProjectSchedule struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// check enforces the window ordering rule.
func (s ProjectSchedule) check() error {
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return domain.NewBusinessRuleError(RuleScheduleOrder, "project end date precedes start date")
	}
	return nil
}

// CreateProjectInput carries the fields accepted at project creation.
// Schedule stays nil for contract versions that do not expose it.
type CreateProjectInput struct {
	Name        string
	Code        string
	Description string
	Schedule    *ProjectSchedule
}

// UpdateProjectInput is a full replacement of the mutable project fields.
// The project code is fixed at creation and deliberately absent. A nil
// Schedule leaves the stored dates untouched.
type UpdateProjectInput struct {
	Name        string
	Description string
	Status      domain.ProjectStatus
	Schedule    *ProjectSchedule
}

// ProjectService provides project operations under one version's rule set.
type ProjectService interface {
	// GetProject retrieves a project by its ID.
	GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListProjects returns projects matching the filter.
	ListProjects(ctx context.Context, filter store.ProjectFilter) ([]*domain.Project, error)

	// CreateProject creates a new project in draft status.
	CreateProject(ctx context.Context, input CreateProjectInput) (*domain.Project, error)

	// UpdateProject replaces the mutable fields of a project, enforcing the
	// rule set's status transitions.
	UpdateProject(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*domain.Project, error)

	// DeleteProject removes a project by its ID.
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

// ProjectServiceImpl implements the ProjectService interface.
type ProjectServiceImpl struct {
	projectStore store.ProjectStore
	db           *sql.DB
	rules        ProjectRules
	logger       *slog.Logger
}

// NewProjectService creates a ProjectService applying the given rule set.
func NewProjectService(
	projectStore store.ProjectStore,
	db *sql.DB,
	rules ProjectRules,
	logger *slog.Logger,
) ProjectService {
	return &ProjectServiceImpl{
		projectStore: projectStore,
		db:           db,
		rules:        rules,
		logger:       logger.With("component", "project_service", "rules", rules.Label),
	}
}

// GetProject retrieves a project by its ID.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			s.logger.Debug("project not found", "project_id", id)
		} else {
			s.logger.Error("failed to retrieve project",
				"error", err,
				"project_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}

	return project, nil
}

// ListProjects returns projects matching the filter.
func (s *ProjectServiceImpl) ListProjects(
	ctx context.Context,
	filter store.ProjectFilter,
) ([]*domain.Project, error) {
	projects, err := s.projectStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// CreateProject creates a new project in draft status.
func (s *ProjectServiceImpl) CreateProject(
	ctx context.Context,
	input CreateProjectInput,
) (*domain.Project, error) {
	project, err := domain.NewProject(input.Name, input.Code, input.Description)
	if err != nil {
		s.logger.Debug("rejected invalid project input",
			"error", err,
			"code", input.Code)
		return nil, domain.NewValidationError("", err.Error(), err)
	}

	if input.Schedule != nil {
		if err := input.Schedule.check(); err != nil {
			s.logger.Debug("rejected project schedule", "error", err, "code", input.Code)
			return nil, err
		}
		project.StartDate = input.Schedule.StartDate
		project.EndDate = input.Schedule.EndDate
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.projectStore.WithTx(tx).Create(ctx, project)
	})
	if err != nil {
		if errors.Is(err, store.ErrProjectCodeExists) {
			s.logger.Debug("attempted to create project with existing code",
				"code", input.Code)
		} else {
			s.logger.Error("failed to save project",
				"error", err,
				"code", input.Code)
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		"project_id", project.ID,
		"code", project.Code)

	return project, nil
}

// UpdateProject replaces the mutable fields of a project. The stored status
// must be able to reach the requested status under the rule set.
func (s *ProjectServiceImpl) UpdateProject(
	ctx context.Context,
	id uuid.UUID,
	input UpdateProjectInput,
) (*domain.Project, error) {
	var updated *domain.Project

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.projectStore.WithTx(tx)

		project, err := txStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve project for update: %w", err)
		}

		if !s.rules.allows(project.Status, input.Status) {
			return domain.NewBusinessRuleError(RuleStatusTransition,
				fmt.Sprintf("project cannot move from %s to %s", project.Status, input.Status))
		}

		project.Name = input.Name
		project.Description = input.Description

		if input.Schedule != nil {
			if err := input.Schedule.check(); err != nil {
				return err
			}
			project.StartDate = input.Schedule.StartDate
			project.EndDate = input.Schedule.EndDate
		}

		if err := project.UpdateStatus(input.Status); err != nil {
			return domain.NewValidationError("status", "is not a valid project status", err)
		}

		if err := txStore.Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		updated = project
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProjectNotFound):
			s.logger.Debug("project not found for update", "project_id", id)
		case errors.Is(err, domain.ErrBusinessRule):
			s.logger.Debug("rejected project update", "error", err, "project_id", id)
		default:
			s.logger.Error("failed to update project",
				"error", err,
				"project_id", id)
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated", "project_id", id)

	return updated, nil
}

// DeleteProject removes a project by its ID.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.projectStore.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			s.logger.Debug("attempted to delete non-existent project", "project_id", id)
		} else {
			s.logger.Error("failed to delete project",
				"error", err,
				"project_id", id)
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", "project_id", id)

	return nil
}
