// Package fsops provides filesystem operations with durability guarantees.
//
// All filesystem mutations in rip go through the FS interface, which keeps
// the move primitive testable (a wrapper can inject EXDEV from Rename, for
// instance) and concentrates fsync handling in one place.
//
// Key features:
//   - Unique-name moves into the graveyard with cross-device fallback
//   - Iterative tree copy and removal (no recursion depth limit)
//   - Atomic writes using temp file + fsync + rename + directory fsync
//   - Capability-checked directory fsync
package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDirSyncUnsupported is returned by SyncDir on platforms where a directory
// cannot be fsynced. Callers decide whether that is acceptable.
var ErrDirSyncUnsupported = errors.New("directory fsync not supported")

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Lstat returns file info without following symlinks.
	Lstat(path string) (os.FileInfo, error)

	// Readlink reads the target of a symlink.
	Readlink(path string) (string, error)

	// Symlink creates newname as a symbolic link to oldname.
	Symlink(oldname, newname string) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Mkdir creates a single directory.
	Mkdir(path string, perm os.FileMode) error

	// Chmod changes the mode of path.
	Chmod(path string, mode os.FileMode) error

	// Rename renames oldpath to newpath.
	Rename(oldpath, newpath string) error

	// RenameNoReplace renames oldpath to newpath and fails with an error
	// matching os.ErrExist when newpath already exists.
	RenameNoReplace(oldpath, newpath string) error

	// Remove removes a file, symlink or empty directory.
	Remove(path string) error

	// ReadDir lists a directory, sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)

	// Open opens a file for reading.
	Open(path string) (*os.File, error)

	// OpenFile opens a file with the given flags.
	OpenFile(path string, flag int, perm os.FileMode) (*os.File, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// SyncDir fsyncs a directory so entries created or renamed in it survive
	// a crash. Returns ErrDirSyncUnsupported where the platform cannot do it.
	SyncDir(path string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

func (fs *RealFS) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }

func (fs *RealFS) Readlink(path string) (string, error) { return os.Readlink(path) }

func (fs *RealFS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }

func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (fs *RealFS) Mkdir(path string, perm os.FileMode) error { return os.Mkdir(path, perm) }

func (fs *RealFS) Chmod(path string, mode os.FileMode) error { return os.Chmod(path, mode) }

func (fs *RealFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

// RenameNoReplace renames without replacing an existing newpath. The kernel
// enforces it where the platform supports that.
func (fs *RealFS) RenameNoReplace(oldpath, newpath string) error {
	return renameNoReplace(oldpath, newpath)
}

func (fs *RealFS) Remove(path string) error { return os.Remove(path) }

func (fs *RealFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

func (fs *RealFS) Open(path string) (*os.File, error) { return os.Open(path) }

func (fs *RealFS) OpenFile(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

func (fs *RealFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// SyncDir fsyncs a directory.
func (fs *RealFS) SyncDir(path string) error {
	return syncDir(path)
}

// BestEffortSyncDir fsyncs dir through fsys and swallows ErrDirSyncUnsupported.
func BestEffortSyncDir(fsys FS, dir string) error {
	if err := fsys.SyncDir(dir); err != nil && !errors.Is(err, ErrDirSyncUnsupported) {
		return err
	}
	return nil
}

// Exists checks if a path exists without following symlinks.
func Exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// AtomicWrite writes data to path atomically using temp file + rename, then
// fsyncs the parent directory so the rename itself is durable.
//
// Readers observe either the previous contents or the new contents, never a
// partial write. The directory fsync error is returned unless the platform
// reports ErrDirSyncUnsupported.
func AtomicWrite(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = fsys.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fsys.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	tmpFile = nil

	if err := BestEffortSyncDir(fsys, dir); err != nil {
		return fmt.Errorf("failed to sync directory %s: %w", dir, err)
	}
	return nil
}
