package migrate

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/resmigrate/internal/fsops"
	"github.com/danieljhkim/resmigrate/internal/planner"
)

var (
	// ErrMalformedVersion indicates the version string is not a full
	// major.minor.patch semantic version.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrPreconditionUnmet indicates the legacy tree is missing an entry the
	// migration depends on.
	ErrPreconditionUnmet = planner.ErrPreconditionUnmet

	// ErrConflict indicates a destination in the new layout is already occupied.
	ErrConflict = errors.New("conflict detected")

	// ErrDestinationExists is returned when a move target appeared after planning.
	ErrDestinationExists = fsops.ErrDestinationExists
)

// StepError reports the filesystem operation that halted a migration.
// The tree is left as the completed stages produced it.
type StepError struct {
	// Stage is the stage the failing operation belongs to
	Stage planner.Stage

	// Op is the operation type: "mkdir", "move", "remove"
	Op string

	// Path is the path the operation failed on
	Path string

	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s failed during %s: %v", e.Op, e.Path, e.Stage, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
