package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "resmigrate") {
		t.Error("expected help to contain 'resmigrate'")
	}
	if !strings.Contains(output, "Migration:") {
		t.Error("expected help to list the Migration group")
	}
}

func TestRootCommand_Version(t *testing.T) {
	resetFlags()
	SetVersion("1.2.3")
	rootCmd.SetArgs([]string{"--version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(buf.String(), "1.2.3") {
		t.Errorf("expected version output to contain version, got %q", buf.String())
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"normal version", "1.2.3"},
		{"empty version", ""},
		{"dev version", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rootCmd.Version
			SetVersion(tt.version)
			want := tt.version
			if want == "" {
				want = before
			}
			if rootCmd.Version != want {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	for _, name := range []string{"check", "plan", "migrate", "version", "completion"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := rootCmd.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", name, err)
			}
			if subCmd.Name() != name {
				t.Errorf("Find(%q) = %q", name, subCmd.Name())
			}
		})
	}
}
