// Package hash computes content digests used to verify copied resource trees.
//
// When a move has to fall back to copy-and-delete (source and destination on
// different devices), the copy is compared with the source entry by entry
// before anything is removed.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Tree maps slash-separated paths, relative to the hashed root, to a digest.
// Directories map to "dir" and symlinks to "link:<target>".
type Tree map[string]string

// HashTree digests every entry under root. If root is a file, the tree has a
// single entry keyed ".".
func HashTree(h Hasher, root string) (Tree, error) {
	tree := Tree{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read symlink %s: %w", path, err)
			}
			tree[rel] = "link:" + target
		case d.IsDir():
			if rel != "." {
				tree[rel] = "dir"
			}
		default:
			digest, err := h.HashFile(path)
			if err != nil {
				return err
			}
			tree[rel] = digest
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Diff returns the paths whose digests differ between a and b, including
// paths present on only one side, in no particular order.
func Diff(a, b Tree) []string {
	var diff []string
	for path, digest := range a {
		if b[path] != digest {
			diff = append(diff, path)
		}
	}
	for path := range b {
		if _, ok := a[path]; !ok {
			diff = append(diff, path)
		}
	}
	return diff
}
