package hash

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestSHA256Hasher_HashFile(t *testing.T) {
	tmpDir := t.TempDir()
	hasher := NewSHA256Hasher()

	t.Run("known digest", func(t *testing.T) {
		path := filepath.Join(tmpDir, "hello.txt")
		writeFile(t, path, "hello world")

		got, err := hasher.HashFile(path)
		if err != nil {
			t.Fatalf("HashFile failed: %v", err)
		}
		want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
		if got != want {
			t.Errorf("HashFile() = %s, want %s", got, want)
		}
	})

	t.Run("different content differs", func(t *testing.T) {
		a := filepath.Join(tmpDir, "a.txt")
		b := filepath.Join(tmpDir, "b.txt")
		writeFile(t, a, "content A")
		writeFile(t, b, "content B")

		ha, _ := hasher.HashFile(a)
		hb, _ := hasher.HashFile(b)
		if ha == hb {
			t.Error("different files produced the same hash")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := hasher.HashFile(filepath.Join(tmpDir, "missing")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestHashTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "values", "strings.xml"), "<resources/>")
	writeFile(t, filepath.Join(root, "app.gradle"), "android {}")
	if err := os.Symlink("values/strings.xml", filepath.Join(root, "link.xml")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	tree, err := HashTree(NewSHA256Hasher(), root)
	if err != nil {
		t.Fatalf("HashTree failed: %v", err)
	}

	if tree["values"] != "dir" {
		t.Errorf("values = %q, want dir", tree["values"])
	}
	if tree["link.xml"] != "link:values/strings.xml" {
		t.Errorf("link.xml = %q", tree["link.xml"])
	}
	if len(tree) != 4 {
		t.Errorf("expected 4 entries, got %d: %v", len(tree), tree)
	}

	single, err := HashTree(NewSHA256Hasher(), filepath.Join(root, "app.gradle"))
	if err != nil {
		t.Fatalf("HashTree on file failed: %v", err)
	}
	if single["."] != tree["app.gradle"] {
		t.Errorf("single file digest = %q, want %q", single["."], tree["app.gradle"])
	}
}

func TestDiff(t *testing.T) {
	a := Tree{"x": "1", "y": "2", "only-a": "3"}
	b := Tree{"x": "1", "y": "changed", "only-b": "4"}

	got := Diff(a, b)
	sort.Strings(got)
	want := []string{"only-a", "only-b", "y"}
	if len(got) != len(want) {
		t.Fatalf("Diff() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Diff()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if d := Diff(a, a); len(d) != 0 {
		t.Errorf("Diff of identical trees = %v", d)
	}
}
