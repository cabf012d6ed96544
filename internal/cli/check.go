package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkTo string

// checkResult is the JSON shape of `check --json`.
type checkResult struct {
	Root          string `json:"root"`
	Version       string `json:"version"`
	ShouldMigrate bool   `json:"shouldMigrate"`
}

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Report whether a project needs the layout migration",
	Long: `Check whether the project at [root] (default: current directory) still uses
the legacy app/App_Resources layout and the target version requires the new one.

Exits 0 whether or not a migration is needed.`,
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

		version := a.targetVersion(checkTo)
		should, err := a.gate.ShouldMigrate(version, root)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), checkResult{
				Root:          root,
				Version:       version,
				ShouldMigrate: should,
			})
		}

		if should {
			PrintWarning(fmt.Sprintf("Migration required for version %s", version))
			PrintLabelValue("Legacy resources", "app/App_Resources")
			PrintInfo("Run 'resmigrate migrate' to move them to the project root.")
			return nil
		}
		PrintSuccess(fmt.Sprintf("No migration needed for version %s", version))
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkTo, "to", "t", "", "Target version (default from RESMIGRATE_TARGET_VERSION or 4.0.0)")
}
