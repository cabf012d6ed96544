// Package migrate moves an application's resources from the legacy layout
// (app/App_Resources) to the layout introduced with version 4.0.
//
// A Gate decides whether a project needs the migration; a Restructurer
// performs it exactly once. The two share nothing but the filesystem.
package migrate

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/danieljhkim/resmigrate/internal/fsops"
	"github.com/danieljhkim/resmigrate/internal/layout"
)

// MinimumVersion is the first release that expects the new layout.
const MinimumVersion = "4.0.0"

// Gate decides whether a project root requires migration. It never mutates
// the filesystem and is safe for concurrent use.
type Gate struct {
	fs fsops.FS
}

// NewGate creates a Gate that inspects the filesystem through fs.
func NewGate(fs fsops.FS) *Gate {
	return &Gate{fs: fs}
}

// ShouldMigrate reports whether root still has the legacy layout and version
// is at least MinimumVersion. The version is validated before the filesystem
// is consulted; a malformed version yields ErrMalformedVersion.
func (g *Gate) ShouldMigrate(version, root string) (bool, error) {
	atLeast, err := AtLeast(version, MinimumVersion)
	if err != nil {
		return false, err
	}

	hasLegacy, err := layout.New(root).HasLegacyLayout(g.fs)
	if err != nil {
		return false, err
	}

	return hasLegacy && atLeast, nil
}

// AtLeast reports whether version >= minimum under semantic-version
// precedence. Pre-releases order below their release and build metadata is
// ignored. A leading "v" is accepted.
func AtLeast(version, minimum string) (bool, error) {
	v, err := canonical(version)
	if err != nil {
		return false, err
	}
	m, err := canonical(minimum)
	if err != nil {
		return false, err
	}
	return semver.Compare(v, m) >= 0, nil
}

// canonical converts version into the "v"-prefixed form semver expects.
// Shorthands like "4" or "4.0" are rejected.
func canonical(version string) (string, error) {
	trimmed := strings.TrimSpace(version)
	v := "v" + strings.TrimPrefix(trimmed, "v")

	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrMalformedVersion, version)
	}

	core := v
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.Count(core, ".") != 2 {
		return "", fmt.Errorf("%w: %q is not major.minor.patch", ErrMalformedVersion, version)
	}

	return v, nil
}
