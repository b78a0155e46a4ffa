package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

func newProjectServiceForTest(
	t *testing.T,
	rules ProjectRules,
) (ProjectService, *fakeProjectStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newTestDB(t)
	projects := newFakeProjectStore()
	svc := NewProjectService(projects, db, rules, newTestLogger())

	return svc, projects, mock
}

func TestProjectServiceCreateAndGet(t *testing.T) {
	t.Parallel()

	svc, _, mock := newProjectServiceForTest(t, ProjectRulesV1())
	expectCommits(mock, 1)

	created, err := svc.CreateProject(context.Background(), CreateProjectInput{
		Name:        "Harbour Crane Refit",
		Code:        "HCR-2025",
		Description: "Refit of the east harbour gantry cranes",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, domain.ProjectStatusDraft, created.Status)

	fetched, err := svc.GetProject(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Harbour Crane Refit", fetched.Name)
	assert.Equal(t, "HCR-2025", fetched.Code)
	assert.Equal(t, "Refit of the east harbour gantry cranes", fetched.Description)
	assert.Equal(t, created.Status, fetched.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectServiceCreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   CreateProjectInput
		wantErr error
	}{
		{
			name:    "missing name",
			input:   CreateProjectInput{Code: "HCR-2025"},
			wantErr: domain.ErrEmptyProjectName,
		},
		{
			name:    "missing code",
			input:   CreateProjectInput{Name: "Harbour Crane Refit"},
			wantErr: domain.ErrEmptyProjectCode,
		},
		{
			name:    "lowercase code",
			input:   CreateProjectInput{Name: "Harbour Crane Refit", Code: "hcr-2025"},
			wantErr: domain.ErrInvalidProjectCode,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, projects, _ := newProjectServiceForTest(t, ProjectRulesV1())

			created, err := svc.CreateProject(context.Background(), tc.input)
			require.Error(t, err)
			assert.Nil(t, created)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, projects.projects, "nothing should be stored")
		})
	}
}

func TestProjectServiceCreateDuplicateCode(t *testing.T) {
	t.Parallel()

	svc, _, mock := newProjectServiceForTest(t, ProjectRulesV1())
	expectCommits(mock, 1)
	expectRollback(mock)

	_, err := svc.CreateProject(context.Background(), CreateProjectInput{
		Name: "Harbour Crane Refit",
		Code: "HCR-2025",
	})
	require.NoError(t, err)

	dup, err := svc.CreateProject(context.Background(), CreateProjectInput{
		Name: "Another Refit",
		Code: "HCR-2025",
	})
	require.Error(t, err)
	assert.Nil(t, dup)
	assert.ErrorIs(t, err, store.ErrProjectCodeExists)
	assert.True(t, store.IsDuplicateError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectServiceCreateWithSchedule(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

	t.Run("valid window persists", func(t *testing.T) {
		t.Parallel()

		svc, _, mock := newProjectServiceForTest(t, ProjectRulesV2())
		expectCommits(mock, 1)

		created, err := svc.CreateProject(context.Background(), CreateProjectInput{
			Name:     "Substation Upgrade",
			Code:     "SUB-09",
			Schedule: &ProjectSchedule{StartDate: &start, EndDate: &end},
		})
		require.NoError(t, err)
		require.NotNil(t, created.StartDate)
		require.NotNil(t, created.EndDate)
		assert.True(t, created.StartDate.Equal(start))
		assert.True(t, created.EndDate.Equal(end))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("end before start rejected", func(t *testing.T) {
		t.Parallel()

		svc, projects, _ := newProjectServiceForTest(t, ProjectRulesV2())

		created, err := svc.CreateProject(context.Background(), CreateProjectInput{
			Name:     "Substation Upgrade",
			Code:     "SUB-09",
			Schedule: &ProjectSchedule{StartDate: &end, EndDate: &start},
		})
		require.Error(t, err)
		assert.Nil(t, created)

		var ruleErr *domain.BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, RuleScheduleOrder, ruleErr.Rule)
		assert.Empty(t, projects.projects)
	})
}

func TestProjectServiceUpdateTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rules   ProjectRules
		from    domain.ProjectStatus
		to      domain.ProjectStatus
		allowed bool
	}{
		{"draft to active", ProjectRulesV1(), domain.ProjectStatusDraft, domain.ProjectStatusActive, true},
		{"draft to archived", ProjectRulesV1(), domain.ProjectStatusDraft, domain.ProjectStatusArchived, true},
		{"active to archived", ProjectRulesV1(), domain.ProjectStatusActive, domain.ProjectStatusArchived, true},
		{"same status is not a transition", ProjectRulesV1(), domain.ProjectStatusActive, domain.ProjectStatusActive, true},
		{"active to draft rejected", ProjectRulesV1(), domain.ProjectStatusActive, domain.ProjectStatusDraft, false},
		{"archived is terminal", ProjectRulesV1(), domain.ProjectStatusArchived, domain.ProjectStatusActive, false},
		{"hold not reachable under v1 rules", ProjectRulesV1(), domain.ProjectStatusActive, domain.ProjectStatusOnHold, false},
		{"active to hold under v2 rules", ProjectRulesV2(), domain.ProjectStatusActive, domain.ProjectStatusOnHold, true},
		{"hold back to active under v2 rules", ProjectRulesV2(), domain.ProjectStatusOnHold, domain.ProjectStatusActive, true},
		{"hold to archived under v2 rules", ProjectRulesV2(), domain.ProjectStatusOnHold, domain.ProjectStatusArchived, true},
		{"draft to hold rejected under v2 rules", ProjectRulesV2(), domain.ProjectStatusDraft, domain.ProjectStatusOnHold, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, projects, mock := newProjectServiceForTest(t, tc.rules)
			seeded := projects.mustSeedProject(t, "TRN-01", tc.from)

			if tc.allowed {
				expectCommits(mock, 1)
			} else {
				expectRollback(mock)
			}

			updated, err := svc.UpdateProject(context.Background(), seeded.ID, UpdateProjectInput{
				Name:        seeded.Name,
				Description: seeded.Description,
				Status:      tc.to,
			})

			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)

				stored, getErr := projects.GetByID(context.Background(), seeded.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tc.to, stored.Status)
			} else {
				require.Error(t, err)
				assert.Nil(t, updated)

				var ruleErr *domain.BusinessRuleError
				require.ErrorAs(t, err, &ruleErr)
				assert.Equal(t, RuleStatusTransition, ruleErr.Rule)

				stored, getErr := projects.GetByID(context.Background(), seeded.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tc.from, stored.Status, "status must be unchanged after rejection")
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProjectServiceUpdateSchedule(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

	svc, projects, mock := newProjectServiceForTest(t, ProjectRulesV2())
	seeded := projects.mustSeedProject(t, "SCH-01", domain.ProjectStatusActive)

	// Inverted window is rejected inside the transaction.
	expectRollback(mock)
	_, err := svc.UpdateProject(context.Background(), seeded.ID, UpdateProjectInput{
		Name:     seeded.Name,
		Status:   domain.ProjectStatusActive,
		Schedule: &ProjectSchedule{StartDate: &end, EndDate: &start},
	})
	require.Error(t, err)

	var ruleErr *domain.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, RuleScheduleOrder, ruleErr.Rule)

	// A valid window persists.
	expectCommits(mock, 1)
	updated, err := svc.UpdateProject(context.Background(), seeded.ID, UpdateProjectInput{
		Name:     seeded.Name,
		Status:   domain.ProjectStatusActive,
		Schedule: &ProjectSchedule{StartDate: &start, EndDate: &end},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.StartDate)
	assert.True(t, updated.StartDate.Equal(start))

	// A nil schedule leaves the stored dates untouched.
	expectCommits(mock, 1)
	updated, err = svc.UpdateProject(context.Background(), seeded.ID, UpdateProjectInput{
		Name:   "Renamed Without Schedule",
		Status: domain.ProjectStatusActive,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.StartDate)
	assert.True(t, updated.StartDate.Equal(start))
	assert.Equal(t, "Renamed Without Schedule", updated.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectServiceUpdateNotFound(t *testing.T) {
	t.Parallel()

	svc, _, mock := newProjectServiceForTest(t, ProjectRulesV1())
	expectRollback(mock)

	updated, err := svc.UpdateProject(context.Background(), uuid.New(), UpdateProjectInput{
		Name:   "Ghost",
		Status: domain.ProjectStatusDraft,
	})
	require.Error(t, err)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
	assert.True(t, store.IsNotFoundError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectServiceDelete(t *testing.T) {
	t.Parallel()

	svc, projects, mock := newProjectServiceForTest(t, ProjectRulesV1())
	seeded := projects.mustSeedProject(t, "DEL-01", domain.ProjectStatusDraft)

	expectCommits(mock, 1)
	require.NoError(t, svc.DeleteProject(context.Background(), seeded.ID))

	_, err := svc.GetProject(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)

	expectRollback(mock)
	err = svc.DeleteProject(context.Background(), seeded.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectServiceList(t *testing.T) {
	t.Parallel()

	svc, projects, mock := newProjectServiceForTest(t, ProjectRulesV1())
	projects.mustSeedProject(t, "LST-01", domain.ProjectStatusDraft)
	projects.mustSeedProject(t, "LST-02", domain.ProjectStatusActive)
	projects.mustSeedProject(t, "LST-03", domain.ProjectStatusActive)

	all, err := svc.ListProjects(context.Background(), store.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListProjects(context.Background(), store.ProjectFilter{
		Status: domain.ProjectStatusActive,
	})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}
