package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/app"
	"github.com/gridstonehq/gridstone-api/internal/config"
)

func newProjectsRegistry(t *testing.T) *apiversion.Registry {
	t.Helper()

	registry := apiversion.NewRegistry()
	require.NoError(t, registry.Register("projects", apiversion.MustParse("v1")))
	require.NoError(t, registry.Register("projects", apiversion.MustParse("v2")))
	return registry
}

func TestApplyVersionConfigDeprecatesWithSunset(t *testing.T) {
	t.Parallel()

	registry := newProjectsRegistry(t)
	cfg := config.APIConfig{
		Deprecated:      []string{"projects:v1:2026-06-30"},
		DefaultVersions: []string{"projects:v2"},
	}

	require.NoError(t, app.ApplyVersionConfig(registry, cfg))

	res, err := registry.Resolve("projects", "v1")
	require.NoError(t, err)
	assert.True(t, res.Deprecated())
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), res.Sunset)

	res, err = registry.Resolve("projects", "")
	require.NoError(t, err)
	assert.Equal(t, apiversion.MustParse("v2"), res.Version,
		"versionless requests should resolve to the pinned default")
}

func TestApplyVersionConfigRemovesAfterDeprecating(t *testing.T) {
	t.Parallel()

	registry := newProjectsRegistry(t)
	cfg := config.APIConfig{
		Deprecated: []string{"projects:v1:2026-06-30"},
		Removed:    []string{"projects:v1"},
	}

	require.NoError(t, app.ApplyVersionConfig(registry, cfg))

	_, err := registry.Resolve("projects", "v1")
	assert.ErrorIs(t, err, apiversion.ErrVersionRemoved)
}

func TestApplyVersionConfigEmptyIsNoop(t *testing.T) {
	t.Parallel()

	registry := newProjectsRegistry(t)
	require.NoError(t, app.ApplyVersionConfig(registry, config.APIConfig{}))

	res, err := registry.Resolve("projects", "")
	require.NoError(t, err)
	assert.Equal(t, apiversion.MustParse("v2"), res.Version,
		"without config the highest active version serves versionless requests")
}

func TestApplyVersionConfigRejectsBadEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.APIConfig
		wantErr string
	}{
		{
			name:    "missing version segment",
			cfg:     config.APIConfig{Removed: []string{"projects"}},
			wantErr: "want resource:version",
		},
		{
			name:    "empty resource",
			cfg:     config.APIConfig{Removed: []string{":v1"}},
			wantErr: "empty resource",
		},
		{
			name:    "malformed version token",
			cfg:     config.APIConfig{Removed: []string{"projects:one"}},
			wantErr: "invalid version entry",
		},
		{
			name:    "sunset on removal entry",
			cfg:     config.APIConfig{Removed: []string{"projects:v1:2026-06-30"}},
			wantErr: "unexpected sunset segment",
		},
		{
			name:    "unparseable sunset date",
			cfg:     config.APIConfig{Deprecated: []string{"projects:v1:June 30"}},
			wantErr: "invalid sunset date",
		},
		{
			name:    "lifecycle change for unregistered version",
			cfg:     config.APIConfig{Deprecated: []string{"materials:v9:2026-06-30"}},
			wantErr: "failed to apply deprecation",
		},
		{
			name: "default pinned to deprecated version",
			cfg: config.APIConfig{
				Deprecated:      []string{"projects:v1:2026-06-30"},
				DefaultVersions: []string{"projects:v1"},
			},
			wantErr: "failed to apply default version",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := app.ApplyVersionConfig(newProjectsRegistry(t), tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
