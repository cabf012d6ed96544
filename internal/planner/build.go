package planner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/resmigrate/internal/fsops"
	"github.com/danieljhkim/resmigrate/internal/layout"
)

// ErrPreconditionUnmet indicates the legacy tree is missing an entry the
// migration depends on.
var ErrPreconditionUnmet = errors.New("legacy layout precondition unmet")

// BuildMigrationPlan inspects the legacy tree under paths and returns the plan
// that restructures it. The filesystem is only read.
func BuildMigrationPlan(fsys fsops.FS, paths layout.Paths) (*MigrationPlan, error) {
	if err := checkPreconditions(fsys, paths); err != nil {
		return nil, err
	}

	plan := NewMigrationPlan(paths.Root)

	for _, dir := range paths.Directories() {
		plan.AddOperation(Operation{
			Type:     OpMkdir,
			Stage:    StageDirectoriesEnsured,
			DestPath: dir,
		})
	}

	plan.AddOperation(Operation{
		Type:       OpMove,
		Stage:      StageAndroidFilesMoved,
		SourcePath: filepath.Join(paths.LegacyAndroid, layout.GradleFile),
		DestPath:   filepath.Join(paths.AndroidDestination, layout.GradleFile),
	})
	plan.AddOperation(Operation{
		Type:       OpMove,
		Stage:      StageAndroidFilesMoved,
		SourcePath: filepath.Join(paths.LegacyAndroid, layout.ManifestFile),
		DestPath:   filepath.Join(paths.AndroidMainSourceSet, layout.ManifestFile),
	})

	entries, err := fsys.ReadDir(paths.LegacyAndroid)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", paths.LegacyAndroid, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		source := filepath.Join(paths.LegacyAndroid, name)

		// Symlinks report IsDir false and are left behind like loose files.
		if entry.IsDir() {
			plan.AddOperation(Operation{
				Type:       OpMove,
				Stage:      StageAndroidResourcesMoved,
				SourcePath: source,
				DestPath:   filepath.Join(paths.AndroidResources, name),
			})
			continue
		}
		if name != layout.GradleFile && name != layout.ManifestFile {
			plan.Residue = append(plan.Residue, paths.Rel(source))
		}
	}

	plan.AddOperation(Operation{
		Type:       OpMove,
		Stage:      StageIOSMoved,
		SourcePath: paths.LegacyIOS,
		DestPath:   paths.IOSDestination,
	})

	legacyEntries, err := fsys.ReadDir(paths.Legacy)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", paths.Legacy, err)
	}
	for _, entry := range legacyEntries {
		if entry.Name() == layout.Android || entry.Name() == layout.IOS {
			continue
		}
		plan.Residue = append(plan.Residue, paths.Rel(filepath.Join(paths.Legacy, entry.Name())))
	}

	plan.AddOperation(Operation{
		Type:     OpRemove,
		Stage:    StageLegacyDeleted,
		DestPath: paths.Legacy,
	})

	if err := detectConflicts(fsys, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// checkPreconditions verifies every legacy entry the plan moves by name.
// The legacy root may be a symlink to a directory, matching what the gate
// accepts. Entries inside it are checked without following links.
func checkPreconditions(fsys fsops.FS, paths layout.Paths) error {
	required := []struct {
		path   string
		isDir  bool
		follow bool
	}{
		{paths.Legacy, true, true},
		{paths.LegacyAndroid, true, false},
		{filepath.Join(paths.LegacyAndroid, layout.GradleFile), false, false},
		{filepath.Join(paths.LegacyAndroid, layout.ManifestFile), false, false},
		{paths.LegacyIOS, true, false},
	}

	for _, req := range required {
		stat := fsys.Lstat
		if req.follow {
			stat = fsys.Stat
		}
		info, err := stat(req.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s is missing", ErrPreconditionUnmet, paths.Rel(req.path))
			}
			return fmt.Errorf("failed to stat %s: %w", req.path, err)
		}
		if info.IsDir() != req.isDir {
			kind := "file"
			if req.isDir {
				kind = "directory"
			}
			return fmt.Errorf("%w: %s is not a %s", ErrPreconditionUnmet, paths.Rel(req.path), kind)
		}
	}

	return nil
}

// detectConflicts records every move whose destination is already taken.
func detectConflicts(fsys fsops.FS, plan *MigrationPlan) error {
	for _, op := range plan.Moves() {
		exists, err := fsys.Exists(op.DestPath)
		if err != nil {
			return fmt.Errorf("failed to check destination %s: %w", op.DestPath, err)
		}
		if exists {
			plan.AddConflict(Conflict{
				Path:   op.DestPath,
				Reason: fmt.Sprintf("destination already exists, cannot move %s", filepath.Base(op.SourcePath)),
			})
		}
	}
	return nil
}
