package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/resmigrate/internal/config"
	"github.com/danieljhkim/resmigrate/internal/migrate"
)

// resetFlags restores flag variables between Execute calls; cobra keeps
// parsed values on the package-level commands.
func resetFlags() {
	jsonOutput = false
	logLevel = ""
	checkTo = ""
	migrateTo = ""
	migrateForce = false
	migrateDryRun = false
}

// setupLegacyProject creates a project with the legacy resource layout.
func setupLegacyProject(t *testing.T) string {
	t.Helper()

	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvTargetVersion, "")

	root := t.TempDir()
	files := map[string]string{
		"app/App_Resources/Android/app.gradle":           "android {}",
		"app/App_Resources/Android/AndroidManifest.xml":  "<manifest/>",
		"app/App_Resources/Android/values/strings.xml":   "<resources/>",
		"app/App_Resources/iOS/Assets.xcassets/icon.png": "icon",
		"app/App_Resources/iOS/LaunchScreen.storyboard":  "<document/>",
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return root
}

// execute runs the root command and returns stdout written through cmd.OutOrStdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	rootCmd.SetArgs(args)
	var bufOut, bufErr bytes.Buffer
	rootCmd.SetOut(&bufOut)
	rootCmd.SetErr(&bufErr)

	err := rootCmd.Execute()
	return bufOut.String(), err
}

func TestCheckCommand_JSONOutput(t *testing.T) {
	root := setupLegacyProject(t)

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"default target version", []string{"check", root, "--json"}, true},
		{"explicit 4.x", []string{"check", root, "--json", "--to", "4.2.0"}, true},
		{"older target", []string{"check", root, "--json", "--to", "3.9.0"}, false},
		{"pre-release target", []string{"check", root, "--json", "--to", "4.0.0-rc.2"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			var got checkResult
			if err := json.Unmarshal([]byte(output), &got); err != nil {
				t.Fatalf("expected valid JSON output, got error: %v, output: %q", err, output)
			}
			if got.ShouldMigrate != tt.want {
				t.Errorf("shouldMigrate = %v, want %v", got.ShouldMigrate, tt.want)
			}
		})
	}
}

func TestCheckCommand_EnvironmentTargetVersion(t *testing.T) {
	root := setupLegacyProject(t)
	t.Setenv(config.EnvTargetVersion, "3.5.0")

	output, err := execute(t, "check", root, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got checkResult
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Version != "3.5.0" || got.ShouldMigrate {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestCheckCommand_MalformedVersion(t *testing.T) {
	root := setupLegacyProject(t)

	_, err := execute(t, "check", root, "--to", "four")
	if !errors.Is(err, migrate.ErrMalformedVersion) {
		t.Errorf("expected ErrMalformedVersion, got %v", err)
	}
}

func TestPlanCommand_JSONOutput(t *testing.T) {
	root := setupLegacyProject(t)

	output, err := execute(t, "plan", root, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var plan struct {
		Operations []struct {
			Type  string `json:"type"`
			Stage string `json:"stage"`
		} `json:"operations"`
	}
	if err := json.Unmarshal([]byte(output), &plan); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v, output: %q", err, output)
	}

	// 4 mkdir, app.gradle, manifest, values, iOS, remove
	if len(plan.Operations) != 9 {
		t.Errorf("expected 9 operations, got %d", len(plan.Operations))
	}
	if last := plan.Operations[len(plan.Operations)-1]; last.Type != "remove" || last.Stage != "legacy_deleted" {
		t.Errorf("last operation = %+v, want remove in legacy_deleted", last)
	}
}

func TestMigrateCommand_DryRun(t *testing.T) {
	root := setupLegacyProject(t)

	output, err := execute(t, "migrate", root, "--dry-run", "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got migrateOutput
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("invalid JSON: %v, output: %q", err, output)
	}
	if got.Migrated || !got.DryRun {
		t.Errorf("dry run reported %+v", got)
	}

	if _, err := os.Stat(filepath.Join(root, "App_Resources")); !os.IsNotExist(err) {
		t.Error("dry run must not create App_Resources")
	}
}

func TestMigrateCommand_Migrates(t *testing.T) {
	root := setupLegacyProject(t)

	output, err := execute(t, "migrate", root, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got migrateOutput
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("invalid JSON: %v, output: %q", err, output)
	}
	if !got.Migrated {
		t.Fatalf("expected migrated=true, got %+v", got)
	}

	for _, rel := range []string{
		"App_Resources/Android/app.gradle",
		"App_Resources/Android/src/main/AndroidManifest.xml",
		"App_Resources/Android/src/main/res/values/strings.xml",
		"App_Resources/iOS/Assets.xcassets/icon.png",
		"App_Resources/iOS/LaunchScreen.storyboard",
	} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s after migration: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "app", "App_Resources")); !os.IsNotExist(err) {
		t.Error("legacy App_Resources should be deleted")
	}

	// A second run finds nothing to do and still exits cleanly.
	output, err = execute(t, "migrate", root, "--json")
	if err != nil {
		t.Fatalf("second migrate error = %v", err)
	}
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Migrated {
		t.Error("second run should not migrate again")
	}
}

func TestMigrateCommand_MissingGradleFile(t *testing.T) {
	root := setupLegacyProject(t)
	if err := os.Remove(filepath.Join(root, "app", "App_Resources", "Android", "app.gradle")); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "migrate", root, "--json")
	if !errors.Is(err, migrate.ErrPreconditionUnmet) {
		t.Errorf("expected ErrPreconditionUnmet, got %v", err)
	}
}

func TestMigrateCommand_Conflict(t *testing.T) {
	root := setupLegacyProject(t)
	if err := os.MkdirAll(filepath.Join(root, "App_Resources", "iOS"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "migrate", root, "--json")
	if !errors.Is(err, migrate.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestLogLevelErrorNamesItsSource(t *testing.T) {
	root := setupLegacyProject(t)

	_, err := execute(t, "check", root, "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "--log-level") {
		t.Fatalf("flag error = %v, want it to name --log-level", err)
	}
	if strings.Contains(err.Error(), config.EnvLogLevel) {
		t.Errorf("flag error %q should not blame %s", err, config.EnvLogLevel)
	}

	t.Setenv(config.EnvLogLevel, "loud")
	_, err = execute(t, "check", root)
	if err == nil || !strings.Contains(err.Error(), config.EnvLogLevel) {
		t.Errorf("environment error = %v, want it to name %s", err, config.EnvLogLevel)
	}
}
