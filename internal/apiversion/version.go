package apiversion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// Resolution errors. Boundary code maps anything wrapping
// ErrUnsupportedVersion to a 400 response.
var (
	// ErrUnsupportedVersion is the base error for every version token that
	// cannot be served.
	ErrUnsupportedVersion = errors.New("unsupported api version")

	// ErrMalformedVersion indicates the token did not parse as
	// v{major}[.{minor}].
	ErrMalformedVersion = fmt.Errorf("%w: malformed version token", ErrUnsupportedVersion)

	// ErrVersionUnknown indicates the version was never registered for the
	// resource.
	ErrVersionUnknown = fmt.Errorf("%w: version not registered", ErrUnsupportedVersion)

	// ErrVersionRemoved indicates the version used to be served but has been
	// withdrawn.
	ErrVersionRemoved = fmt.Errorf("%w: version removed", ErrUnsupportedVersion)
)

// Version is an ordered API contract tag. Only major and minor participate
// in identity and ordering, so "v1" and "v1.0" select the same contract.
type Version struct {
	Major uint64
	Minor uint64
}

// Parse converts a path token into a Version. Accepted forms are
// "v{major}" and "v{major}.{minor}", case-insensitively, with or without
// the leading "v". Anything else fails with ErrMalformedVersion.
func Parse(token string) (Version, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, token)
	}

	parsed, err := semver.ParseTolerant(normalized)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, token)
	}

	// Contract tags carry no patch, pre-release or build segments.
	if parsed.Patch != 0 || len(parsed.Pre) > 0 || len(parsed.Build) > 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, token)
	}

	return Version{Major: parsed.Major, Minor: parsed.Minor}, nil
}

// MustParse is Parse for static wiring code. It panics on malformed tokens.
func MustParse(token string) Version {
	v, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the canonical token form, always carrying the minor
// component ("v2.0").
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Compare orders versions by major then minor, returning -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major < o.Major:
		return -1
	case v.Major > o.Major:
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	default:
		return 0
	}
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// IsZero reports whether v is the zero Version, which never denotes a real
// contract.
func (v Version) IsZero() bool {
	return v == Version{}
}
