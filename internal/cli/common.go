package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/danieljhkim/resmigrate/internal/config"
	"github.com/danieljhkim/resmigrate/internal/fsops"
	"github.com/danieljhkim/resmigrate/internal/gitx"
	"github.com/danieljhkim/resmigrate/internal/layout"
	"github.com/danieljhkim/resmigrate/internal/logger"
	"github.com/danieljhkim/resmigrate/internal/migrate"
)

// app bundles the collaborators a command needs.
type app struct {
	settings     *config.Settings
	logger       *slog.Logger
	gate         *migrate.Gate
	restructurer *migrate.Restructurer
	git          gitx.GitRepo
}

// newApp creates the gate and restructurer with real implementations of all
// dependencies.
func newApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if logLevel != "" {
		level, err := config.ParseLevel(logLevel)
		if err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		settings.LogLevel = level
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = settings.LogLevel
	logCfg.Format = settings.LogFormat
	log := logger.Init(logCfg)

	fs := fsops.NewRealFS()

	return &app{
		settings:     settings,
		logger:       log,
		gate:         migrate.NewGate(fs),
		restructurer: migrate.NewRestructurer(fs, log),
		git:          gitx.NewRealGitRepo(),
	}, nil
}

// targetVersion returns the --to flag value, or the configured default.
func (a *app) targetVersion(flag string) string {
	if flag != "" {
		return flag
	}
	return a.settings.TargetVersion
}

// projectRoot resolves the optional [root] argument against the current directory.
func projectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}
	return abs, nil
}

// checkUncommitted refuses to migrate a project whose legacy resources have
// uncommitted changes, because a failed run is recovered by restoring from
// version control. force downgrades the refusal to a warning.
func checkUncommitted(git gitx.GitRepo, root string, force bool) error {
	repoRoot, err := git.Discover(root)
	if err != nil {
		if !jsonOutput {
			PrintWarning("Project is not under version control; the migration cannot be undone.")
		}
		return nil
	}

	changes, err := git.Status(repoRoot, layout.New(root).Legacy)
	if err != nil {
		return fmt.Errorf("failed to check for uncommitted changes: %w", err)
	}
	if len(changes) == 0 {
		return nil
	}

	msg := fmt.Sprintf("%s under app/App_Resources", PrintCount(len(changes), "uncommitted change", "uncommitted changes"))
	if !force {
		return fmt.Errorf("%s; commit them first or pass --force", msg)
	}
	if !jsonOutput {
		PrintWarning(msg + " (continuing because of --force)")
	}
	return nil
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
