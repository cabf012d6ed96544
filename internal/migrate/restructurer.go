package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danieljhkim/resmigrate/internal/clock"
	"github.com/danieljhkim/resmigrate/internal/fsops"
	"github.com/danieljhkim/resmigrate/internal/layout"
	"github.com/danieljhkim/resmigrate/internal/planner"
)

// CompletionMessage is logged once a migration finishes.
const CompletionMessage = "Successfully migrated your project's App_Resources to conform to the version 4.0 directory structure. " +
	"The App_Resources directory can now be found on the root level of your project, next to the 'app' directory."

// Move records one relocated entry, relative to the application root.
type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result describes how far a migration got.
type Result struct {
	Root        string        `json:"root"`
	Destination string        `json:"destination"`
	Stage       planner.Stage `json:"stage"`
	Moved       []Move        `json:"moved"`
	Residue     []string      `json:"residue"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  time.Time     `json:"finishedAt"`
}

// Duration is the time spent between starting and halting or finishing.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Restructurer performs the one-shot transformation of a legacy resource tree.
// It is not reentrant: callers must not run two migrations on the same root
// at once.
type Restructurer struct {
	fs     fsops.FS
	clock  clock.Clock
	logger *slog.Logger
}

// NewRestructurer creates a Restructurer. A nil logger discards output.
func NewRestructurer(fs fsops.FS, logger *slog.Logger) *Restructurer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Restructurer{
		fs:     fs,
		clock:  clock.RealClock{},
		logger: logger.With("component", "restructurer"),
	}
}

// WithClock replaces the clock used to timestamp results.
func (r *Restructurer) WithClock(c clock.Clock) *Restructurer {
	r.clock = c
	return r
}

// Plan returns the operations Migrate would execute for root without
// touching the filesystem.
func (r *Restructurer) Plan(root string) (*planner.MigrationPlan, error) {
	return planner.BuildMigrationPlan(r.fs, layout.New(root))
}

// Migrate restructures root into the new layout. Stages run strictly in
// order and the context is only checked between stages, so a cancelled run
// never stops halfway through a stage's operations. On failure the returned
// Result reports the last completed stage; nothing is rolled back.
func (r *Restructurer) Migrate(ctx context.Context, root string) (*Result, error) {
	paths := layout.New(root)
	result := &Result{
		Root:        root,
		Destination: paths.Destination,
		Stage:       planner.StageNotStarted,
		Moved:       []Move{},
		Residue:     []string{},
		StartedAt:   r.clock.Now(),
	}
	defer func() {
		result.FinishedAt = r.clock.Now()
	}()

	plan, err := planner.BuildMigrationPlan(r.fs, paths)
	if err != nil {
		return result, err
	}
	if plan.HasConflicts() {
		return result, fmt.Errorf("%w: %s", ErrConflict, paths.Rel(plan.Conflicts[0].Path))
	}
	result.Residue = plan.Residue

	for _, residue := range plan.Residue {
		r.logger.Warn("legacy entry will be deleted without being moved", "path", residue)
	}

	for _, stage := range planner.Stages {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("migration cancelled after %s: %w", result.Stage, err)
		}

		for _, op := range plan.OperationsFor(stage) {
			if err := r.execute(op); err != nil {
				return result, &StepError{Stage: stage, Op: op.Type, Path: op.DestPath, Err: err}
			}
			if op.Type == planner.OpMove {
				result.Moved = append(result.Moved, Move{
					From: paths.Rel(op.SourcePath),
					To:   paths.Rel(op.DestPath),
				})
			}
		}

		result.Stage = stage
		r.logger.Debug("stage complete", "stage", stage.String())
	}

	result.Stage = planner.StageComplete
	r.logger.Info(CompletionMessage, "destination", paths.Destination, "moved", len(result.Moved))
	return result, nil
}

// execute executes a single operation.
func (r *Restructurer) execute(op planner.Operation) error {
	switch op.Type {
	case planner.OpMkdir:
		return r.fs.MkdirAll(op.DestPath, 0755)
	case planner.OpMove:
		return r.fs.Move(op.SourcePath, op.DestPath)
	case planner.OpRemove:
		return r.fs.RemoveAll(op.DestPath)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}
