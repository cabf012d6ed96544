package planner

import "fmt"

// Stage is a point in the migration state machine. Stages only move forward;
// there is no rollback transition.
type Stage int

const (
	StageNotStarted Stage = iota
	StageDirectoriesEnsured
	StageAndroidFilesMoved
	StageAndroidResourcesMoved
	StageIOSMoved
	StageLegacyDeleted
	StageComplete
)

var stageNames = map[Stage]string{
	StageNotStarted:            "not_started",
	StageDirectoriesEnsured:    "directories_ensured",
	StageAndroidFilesMoved:     "android_files_moved",
	StageAndroidResourcesMoved: "android_resources_moved",
	StageIOSMoved:              "ios_moved",
	StageLegacyDeleted:         "legacy_deleted",
	StageComplete:              "complete",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// MarshalText lets stages appear by name in JSON output.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// Stages lists the stages a plan's operations complete, in execution order.
var Stages = []Stage{
	StageDirectoriesEnsured,
	StageAndroidFilesMoved,
	StageAndroidResourcesMoved,
	StageIOSMoved,
	StageLegacyDeleted,
}

// Operation type constants
const (
	OpMkdir  = "mkdir"
	OpMove   = "move"
	OpRemove = "remove"
)

// Operation represents a single filesystem operation to execute.
type Operation struct {
	// Type is the operation type: "mkdir", "move", "remove"
	Type string `json:"type"`

	// Stage is the stage reached once every operation of this stage has run
	Stage Stage `json:"stage"`

	// SourcePath is the absolute path being moved (empty for mkdir and remove)
	SourcePath string `json:"source,omitempty"`

	// DestPath is the absolute path created, written or removed
	DestPath string `json:"dest"`
}

// Conflict represents a destination that is already occupied.
type Conflict struct {
	// Path is the destination path that already exists
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`
}

// MigrationPlan is the ordered list of operations that turns a legacy
// resource tree into the new layout.
type MigrationPlan struct {
	Root       string      `json:"root"`
	Operations []Operation `json:"operations"`

	// Residue lists legacy entries, relative to Root, that are deleted with
	// the legacy tree without being moved anywhere.
	Residue []string `json:"residue"`

	Conflicts []Conflict `json:"conflicts"`
}

// NewMigrationPlan creates a new empty MigrationPlan.
func NewMigrationPlan(root string) *MigrationPlan {
	return &MigrationPlan{
		Root:       root,
		Operations: []Operation{},
		Residue:    []string{},
		Conflicts:  []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *MigrationPlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddOperation adds an operation to the plan.
func (p *MigrationPlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddConflict adds a conflict to the plan.
func (p *MigrationPlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// OperationsFor returns the operations that complete stage, in plan order.
func (p *MigrationPlan) OperationsFor(stage Stage) []Operation {
	var ops []Operation
	for _, op := range p.Operations {
		if op.Stage == stage {
			ops = append(ops, op)
		}
	}
	return ops
}

// Moves returns only the move operations.
func (p *MigrationPlan) Moves() []Operation {
	var ops []Operation
	for _, op := range p.Operations {
		if op.Type == OpMove {
			ops = append(ops, op)
		}
	}
	return ops
}
