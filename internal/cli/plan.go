package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/resmigrate/internal/layout"
	"github.com/danieljhkim/resmigrate/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan [root]",
	Short: "Show the operations a migration would perform",
	Long: `Inspect the legacy app/App_Resources tree of the project at [root] and print the
ordered directory creations, moves and deletion a migration would perform.

Nothing is modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		root, err := projectRoot(args)
		if err != nil {
			return err
		}

		plan, err := a.restructurer.Plan(root)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), plan)
		}

		printPlan(plan)
		return nil
	},
}

// printPlan prints the plan grouped by stage, then its conflicts and residue.
func printPlan(plan *planner.MigrationPlan) {
	paths := layout.New(plan.Root)

	PrintSection("Migration Plan")
	PrintLabelValue("Project", plan.Root)
	PrintInfo(fmt.Sprintf("%s planned", PrintCount(len(plan.Operations), "operation", "operations")))

	for _, stage := range planner.Stages {
		ops := plan.OperationsFor(stage)
		if len(ops) == 0 {
			continue
		}
		PrintSubsection(stage.String() + ":")
		lines := make([]string, 0, len(ops))
		for _, op := range ops {
			switch op.Type {
			case planner.OpMove:
				lines = append(lines, fmt.Sprintf("move: %s -> %s", paths.Rel(op.SourcePath), paths.Rel(op.DestPath)))
			default:
				lines = append(lines, fmt.Sprintf("%s: %s", op.Type, paths.Rel(op.DestPath)))
			}
		}
		PrintList(lines, 2)
	}

	if plan.HasConflicts() {
		PrintSection("Conflicts Detected")
		for _, conflict := range plan.Conflicts {
			PrintError(fmt.Sprintf("%s: %s", paths.Rel(conflict.Path), conflict.Reason))
		}
	}

	if len(plan.Residue) > 0 {
		PrintSection("Deleted Without Moving")
		PrintList(plan.Residue, 1)
	} else {
		PrintEmptyState("No legacy entries are discarded.")
	}
}
