// Package fsops provides the filesystem operations used by a migration.
//
// Every mutation resmigrate performs on a project tree goes through the FS
// interface, so the restructuring logic can be exercised against a real
// temporary directory or a wrapper that injects failures.
//
// Key features:
//   - Recursive Move that keeps the full contents of a directory
//   - Cross-device moves that never leave a partial copy behind
//   - Idempotent directory creation
//   - Testable via the FS interface
package fsops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/danieljhkim/resmigrate/internal/hash"
)

// ErrDestinationExists is returned by Move when the target path is already taken.
var ErrDestinationExists = errors.New("destination already exists")

// ErrCopyMismatch is returned when a cross-device copy does not match its source.
var ErrCopyMismatch = errors.New("copied tree does not match source")

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// Lstat returns file info without following symlinks.
	Lstat(path string) (os.FileInfo, error)

	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	// It is a no-op if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// ReadDir lists the immediate entries of a directory, sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)

	// Move relocates a file or a whole directory tree from src to dst.
	Move(src, dst string) error

	// Copy copies a file or directory from src to dst.
	Copy(src, dst string) error

	// RemoveAll removes a path and all its contents.
	RemoveAll(path string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct {
	hasher hash.Hasher

	// rename defaults to os.Rename
	rename func(src, dst string) error
}

// NewRealFS creates a new RealFS that verifies cross-device copies with SHA-256.
func NewRealFS() *RealFS {
	return &RealFS{hasher: hash.NewSHA256Hasher(), rename: os.Rename}
}

// Exists checks if a path exists.
func (fs *RealFS) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Lstat returns file info without following symlinks.
func (fs *RealFS) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

// Stat returns file info, following symlinks.
func (fs *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates a directory and all parent directories.
func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ReadDir lists the entries of a directory, sorted by name.
func (fs *RealFS) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// RemoveAll removes a path and all its contents.
func (fs *RealFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Move relocates src to dst, keeping every descendant when src is a directory.
// The parent of dst must already exist and dst itself must not.
// A rename is attempted first. Across devices it falls back to a recursive
// copy, verified against the source, followed by removal of the source. If
// that copy fails or does not match, whatever reached dst is removed and the
// source is left untouched.
func (fs *RealFS) Move(src, dst string) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	exists, err := fs.Exists(dst)
	if err != nil {
		return fmt.Errorf("failed to stat destination: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}

	rename := fs.rename
	if rename == nil {
		rename = os.Rename
	}
	err = rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	if srcInfo.Mode()&os.ModeSymlink != 0 {
		err = copySymlink(src, dst)
	} else {
		err = fs.Copy(src, dst)
	}
	if err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("failed to copy across devices: %w", err)
	}
	if err := fs.verifyCopy(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}

// verifyCopy compares the digests of src and dst. The source is left alone
// either way.
func (fs *RealFS) verifyCopy(src, dst string) error {
	hasher := fs.hasher
	if hasher == nil {
		hasher = hash.NewSHA256Hasher()
	}

	want, err := hash.HashTree(hasher, src)
	if err != nil {
		return fmt.Errorf("failed to hash source: %w", err)
	}
	got, err := hash.HashTree(hasher, dst)
	if err != nil {
		return fmt.Errorf("failed to hash copy: %w", err)
	}

	if diff := hash.Diff(want, got); len(diff) > 0 {
		sort.Strings(diff)
		return fmt.Errorf("%w: %s differs", ErrCopyMismatch, diff[0])
	}
	return nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return false
	}
	return errors.Is(linkErr.Err, syscall.EXDEV)
}

// Copy copies a file or directory from src to dst.
// A symlink at src is followed. Symlinks inside a copied directory are
// recreated as links.
func (fs *RealFS) Copy(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if srcInfo.IsDir() {
		return fs.copyDir(src, dst, srcInfo.Mode())
	}
	return fs.copyFile(src, dst, srcInfo.Mode())
}

func (fs *RealFS) copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return dstFile.Sync()
}

// copyDir recursively copies a directory from src to dst.
func (fs *RealFS) copyDir(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(dst, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to get entry info: %w", err)
		}

		switch {
		case entry.IsDir():
			err = fs.copyDir(srcPath, dstPath, info.Mode())
		case info.Mode()&os.ModeSymlink != 0:
			err = copySymlink(srcPath, dstPath)
		default:
			err = fs.copyFile(srcPath, dstPath, info.Mode())
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// copySymlink recreates a symlink instead of following it, so a moved tree
// keeps its links as links.
func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink: %w", err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}
