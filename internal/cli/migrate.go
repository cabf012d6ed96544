package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/resmigrate/internal/migrate"
	"github.com/danieljhkim/resmigrate/internal/planner"
)

var (
	migrateTo     string
	migrateForce  bool
	migrateDryRun bool
)

// migrateOutput is the JSON shape of `migrate --json`.
type migrateOutput struct {
	Migrated bool                   `json:"migrated"`
	DryRun   bool                   `json:"dryRun,omitempty"`
	Version  string                 `json:"version"`
	Plan     *planner.MigrationPlan `json:"plan,omitempty"`
	Result   *migrate.Result        `json:"result,omitempty"`
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [root]",
	Short: "Move app/App_Resources to the 4.0 layout",
	Long: `Migrate the project at [root] (default: current directory) from the legacy
app/App_Resources layout to App_Resources at the project root.

  app/App_Resources/Android/app.gradle          -> App_Resources/Android/app.gradle
  app/App_Resources/Android/AndroidManifest.xml -> App_Resources/Android/src/main/AndroidManifest.xml
  app/App_Resources/Android/<dir>/              -> App_Resources/Android/src/main/res/<dir>/
  app/App_Resources/iOS/                        -> App_Resources/iOS/

The legacy directory is deleted afterwards, including anything not listed above.
Nothing happens if the project does not need migrating.

The migration is not resumable. If it fails, restore the project from version
control before running it again.`,
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

		version := a.targetVersion(migrateTo)
		should, err := a.gate.ShouldMigrate(version, root)
		if err != nil {
			return err
		}
		if !should {
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), migrateOutput{Version: version})
			}
			PrintSuccess(fmt.Sprintf("No migration needed for version %s", version))
			return nil
		}

		plan, err := a.restructurer.Plan(root)
		if err != nil {
			return err
		}
		if plan.HasConflicts() {
			if !jsonOutput {
				printPlan(plan)
				fmt.Println()
				PrintWarning("Move or remove the conflicting paths, then run migrate again.")
			}
			return fmt.Errorf("%w: %s", migrate.ErrConflict, PrintCount(len(plan.Conflicts), "destination exists", "destinations exist"))
		}

		if migrateDryRun {
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), migrateOutput{DryRun: true, Version: version, Plan: plan})
			}
			printPlan(plan)
			return nil
		}

		if err := checkUncommitted(a.git, root, migrateForce); err != nil {
			return err
		}

		if !jsonOutput && len(plan.Residue) > 0 {
			PrintWarning(fmt.Sprintf("%s will be deleted without being moved:", PrintCount(len(plan.Residue), "legacy entry", "legacy entries")))
			PrintList(plan.Residue, 1)
		}

		result, err := a.restructurer.Migrate(cmd.Context(), root)
		if err != nil {
			if result != nil && result.Stage != planner.StageNotStarted && !jsonOutput {
				PrintWarning(fmt.Sprintf("Migration halted after stage %s. Restore the project from version control before retrying.", result.Stage))
			}
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), migrateOutput{Migrated: true, Version: version, Result: result})
		}

		PrintSuccess(fmt.Sprintf("Migrated App_Resources (%s)", PrintCount(len(result.Moved), "entry moved", "entries moved")))
		PrintLabelValue("New location", result.Destination)
		PrintLabelValue("Took", result.Duration().Round(time.Millisecond).String())
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateTo, "to", "t", "", "Target version (default from RESMIGRATE_TARGET_VERSION or 4.0.0)")
	migrateCmd.Flags().BoolVarP(&migrateForce, "force", "f", false, "Migrate even if the legacy resources have uncommitted changes")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Show what would be migrated without changing anything")
}
