package apiversion

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registration errors reported by Registry mutations.
var (
	// ErrDuplicateRegistration indicates the (resource, version) pair was
	// already registered.
	ErrDuplicateRegistration = errors.New("version already registered for resource")

	// ErrUnknownRegistration indicates a lifecycle operation named a
	// (resource, version) pair that was never registered.
	ErrUnknownRegistration = errors.New("version not registered for resource")

	// ErrLifecycleRegression indicates an attempt to move a version
	// backwards in its lifecycle, such as deprecating a removed version.
	ErrLifecycleRegression = errors.New("version lifecycle only moves forward")

	// ErrDefaultNotActive indicates an attempt to pin a default version that
	// is not currently active.
	ErrDefaultNotActive = errors.New("default version must be active")

	// ErrNoServableVersion is returned by Resolve when a resource has no
	// version left to fall back on.
	ErrNoServableVersion = fmt.Errorf("%w: no servable version", ErrUnsupportedVersion)
)

// State tracks where a registered version sits in its lifecycle.
type State int

const (
	StateActive State = iota
	StateDeprecated
	StateRemoved
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDeprecated:
		return "deprecated"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type registration struct {
	version Version
	state   State
	sunset  time.Time
}

// Registry tracks which versions serve each resource and where each sits in
// its lifecycle. Hosts build one registry at startup from configuration;
// lifecycle changes are operator-driven, never request-driven.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string][]registration
	defaults map[string]Version
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:  make(map[string][]registration),
		defaults: make(map[string]Version),
	}
}

// Register adds an active version for a resource. Registering the same
// (resource, version) pair twice fails with ErrDuplicateRegistration.
func (r *Registry) Register(resource string, v Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.entries[resource] {
		if reg.version == v {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRegistration, resource, v)
		}
	}

	regs := append(r.entries[resource], registration{version: v, state: StateActive})
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].version.Less(regs[j].version)
	})
	r.entries[resource] = regs

	return nil
}

// Deprecate marks an active version as deprecated with an advisory sunset
// date. Deprecating an already deprecated version is a no-op that keeps the
// original sunset; deprecating a removed version fails with
// ErrLifecycleRegression.
func (r *Registry) Deprecate(resource string, v Version, sunset time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg := r.find(resource, v)
	if reg == nil {
		return fmt.Errorf("%w: %s %s", ErrUnknownRegistration, resource, v)
	}

	switch reg.state {
	case StateActive:
		reg.state = StateDeprecated
		reg.sunset = sunset
		return nil
	case StateDeprecated:
		return nil
	default:
		return fmt.Errorf("%w: %s %s is removed", ErrLifecycleRegression, resource, v)
	}
}

// Remove withdraws a version from service. Both active and deprecated
// versions may be removed; removing an already removed version is a no-op.
func (r *Registry) Remove(resource string, v Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg := r.find(resource, v)
	if reg == nil {
		return fmt.Errorf("%w: %s %s", ErrUnknownRegistration, resource, v)
	}

	reg.state = StateRemoved
	reg.sunset = time.Time{}

	return nil
}

// SetDefault pins the version served when a request carries no version
// segment. The version must already be registered and active at the time the
// default is pinned.
func (r *Registry) SetDefault(resource string, v Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg := r.find(resource, v)
	if reg == nil {
		return fmt.Errorf("%w: %s %s", ErrUnknownRegistration, resource, v)
	}
	if reg.state != StateActive {
		return fmt.Errorf("%w: %s %s is %s", ErrDefaultNotActive, resource, v, reg.state)
	}

	r.defaults[resource] = v

	return nil
}

// Resolution is the outcome of resolving a version token for a resource.
// Handlers read it from the request context to pick the contract variant.
type Resolution struct {
	Resource string
	Version  Version
	State    State
	Sunset   time.Time
	Latest   Version
}

// Deprecated reports whether responses for this resolution should carry
// advisory deprecation headers.
func (res Resolution) Deprecated() bool {
	return res.State == StateDeprecated
}

// Resolve selects the serving version for a resource. An empty token falls
// back to the pinned default, or to the highest active version when no
// default is pinned; for a fixed registry state the fallback is
// deterministic. Malformed, unknown and removed tokens fail with errors
// wrapping ErrUnsupportedVersion.
func (r *Registry) Resolve(resource, token string) (Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := r.latestActive(resource)

	if token == "" {
		return r.resolveDefault(resource, latest)
	}

	v, err := Parse(token)
	if err != nil {
		return Resolution{}, err
	}

	reg := r.find(resource, v)
	if reg == nil {
		return Resolution{}, fmt.Errorf("%w: %s %s", ErrVersionUnknown, resource, v)
	}
	if reg.state == StateRemoved {
		return Resolution{}, fmt.Errorf("%w: %s %s", ErrVersionRemoved, resource, v)
	}

	return r.resolution(resource, reg, latest), nil
}

// resolveDefault serves versionless requests. Callers must hold mu.
func (r *Registry) resolveDefault(resource string, latest Version) (Resolution, error) {
	if def, ok := r.defaults[resource]; ok {
		if reg := r.find(resource, def); reg != nil && reg.state != StateRemoved {
			return r.resolution(resource, reg, latest), nil
		}
	}

	if reg := r.find(resource, latest); reg != nil {
		return r.resolution(resource, reg, latest), nil
	}

	return Resolution{}, fmt.Errorf("%w: %s", ErrNoServableVersion, resource)
}

func (r *Registry) resolution(resource string, reg *registration, latest Version) Resolution {
	return Resolution{
		Resource: resource,
		Version:  reg.version,
		State:    reg.state,
		Sunset:   reg.sunset,
		Latest:   latest,
	}
}

// find returns a pointer into the registration slice. Callers must hold mu.
func (r *Registry) find(resource string, v Version) *registration {
	regs := r.entries[resource]
	for i := range regs {
		if regs[i].version == v {
			return &regs[i]
		}
	}
	return nil
}

// latestActive returns the highest active version, or the zero Version when
// none is active. Callers must hold mu.
func (r *Registry) latestActive(resource string) Version {
	regs := r.entries[resource]
	for i := len(regs) - 1; i >= 0; i-- {
		if regs[i].state == StateActive {
			return regs[i].version
		}
	}
	return Version{}
}
