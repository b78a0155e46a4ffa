package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/config"
)

// sunsetDateLayout is the date-only form accepted in deprecation entries.
const sunsetDateLayout = "2006-01-02"

// ApplyVersionConfig moves registered versions through their lifecycle per
// configuration. Hosts register the versions they implement before calling
// this; configuration can only deprecate, remove or pin what is registered,
// so a typo in an entry fails startup instead of silently doing nothing.
//
// Deprecations apply first and removals second, which keeps a version listed
// in both sections on its monotonic path. Defaults apply last so they are
// validated against the final lifecycle state.
func ApplyVersionConfig(registry *apiversion.Registry, cfg config.APIConfig) error {
	for _, entry := range cfg.Deprecated {
		resource, version, sunset, err := parseLifecycleEntry(entry, true)
		if err != nil {
			return err
		}
		if err := registry.Deprecate(resource, version, sunset); err != nil {
			return fmt.Errorf("failed to apply deprecation %q: %w", entry, err)
		}
	}

	for _, entry := range cfg.Removed {
		resource, version, _, err := parseLifecycleEntry(entry, false)
		if err != nil {
			return err
		}
		if err := registry.Remove(resource, version); err != nil {
			return fmt.Errorf("failed to apply removal %q: %w", entry, err)
		}
	}

	for _, entry := range cfg.DefaultVersions {
		resource, version, _, err := parseLifecycleEntry(entry, false)
		if err != nil {
			return err
		}
		if err := registry.SetDefault(resource, version); err != nil {
			return fmt.Errorf("failed to apply default version %q: %w", entry, err)
		}
	}

	return nil
}

// parseLifecycleEntry splits a "resource:version" entry, plus an optional
// date-only sunset segment when allowSunset is set.
func parseLifecycleEntry(entry string, allowSunset bool) (string, apiversion.Version, time.Time, error) {
	parts := strings.Split(entry, ":")

	var sunset time.Time
	switch len(parts) {
	case 2:
	case 3:
		if !allowSunset {
			return "", apiversion.Version{}, time.Time{},
				fmt.Errorf("invalid version entry %q: unexpected sunset segment", entry)
		}
		parsed, err := time.Parse(sunsetDateLayout, strings.TrimSpace(parts[2]))
		if err != nil {
			return "", apiversion.Version{}, time.Time{},
				fmt.Errorf("invalid sunset date in %q: %w", entry, err)
		}
		sunset = parsed
	default:
		return "", apiversion.Version{}, time.Time{},
			fmt.Errorf("invalid version entry %q: want resource:version", entry)
	}

	resource := strings.TrimSpace(parts[0])
	if resource == "" {
		return "", apiversion.Version{}, time.Time{},
			fmt.Errorf("invalid version entry %q: empty resource", entry)
	}

	version, err := apiversion.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", apiversion.Version{}, time.Time{},
			fmt.Errorf("invalid version entry %q: %w", entry, err)
	}

	return resource, version, sunset, nil
}
