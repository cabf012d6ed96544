// Package layout names the fixed paths of the legacy and new resource layouts.
//
// The legacy layout keeps platform resources under <root>/app/App_Resources.
// The new layout promotes them to <root>/App_Resources and nests Android
// resources under a Gradle source set (Android/src/main/res).
// None of the segments are configurable.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/resmigrate/internal/fsops"
)

const (
	AppDir       = "app"
	ResourcesDir = "App_Resources"
	Android      = "Android"
	IOS          = "iOS"
	GradleFile   = "app.gradle"
	ManifestFile = "AndroidManifest.xml"
)

// Paths contains every path a migration reads from or writes to.
type Paths struct {
	// Root is the application root as given by the caller
	Root string

	// Legacy is <root>/app/App_Resources
	Legacy string

	// LegacyAndroid is the legacy Android platform directory
	LegacyAndroid string

	// LegacyIOS is the legacy iOS platform directory
	LegacyIOS string

	// Destination is <root>/App_Resources
	Destination string

	// AndroidDestination is Destination/Android
	AndroidDestination string

	// AndroidMainSourceSet is AndroidDestination/src/main
	AndroidMainSourceSet string

	// AndroidResources is AndroidMainSourceSet/res
	AndroidResources string

	// IOSDestination is Destination/iOS
	IOSDestination string
}

// New computes the paths for the application rooted at root.
func New(root string) Paths {
	legacy := filepath.Join(root, AppDir, ResourcesDir)
	destination := filepath.Join(root, ResourcesDir)
	androidDestination := filepath.Join(destination, Android)
	mainSourceSet := filepath.Join(androidDestination, "src", "main")

	return Paths{
		Root:                 root,
		Legacy:               legacy,
		LegacyAndroid:        filepath.Join(legacy, Android),
		LegacyIOS:            filepath.Join(legacy, IOS),
		Destination:          destination,
		AndroidDestination:   androidDestination,
		AndroidMainSourceSet: mainSourceSet,
		AndroidResources:     filepath.Join(mainSourceSet, "res"),
		IOSDestination:       filepath.Join(destination, IOS),
	}
}

// Directories returns the directories that must exist before any file is
// moved, parents first.
func (p Paths) Directories() []string {
	return []string{
		p.Destination,
		p.AndroidDestination,
		p.AndroidMainSourceSet,
		p.AndroidResources,
	}
}

// Rel returns path relative to the application root using forward slashes.
// Paths outside the root are returned unchanged.
func (p Paths) Rel(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// HasLegacyLayout reports whether the legacy resource directory is present.
// A symlink to a directory counts; a plain file at that path does not.
func (p Paths) HasLegacyLayout(fsys fsops.FS) (bool, error) {
	info, err := fsys.Stat(p.Legacy)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", p.Legacy, err)
	}
	return info.IsDir(), nil
}
