package fsops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danieljhkim/rip/internal/hash"
)

// ErrUnsupportedType is returned when a tree contains an entry that cannot be
// copied (device, socket, named pipe).
var ErrUnsupportedType = errors.New("unsupported file type")

type copyJob struct {
	src, dst string
}

type dirFixup struct {
	path string
	perm os.FileMode
}

// CopyTree copies src to dst, which must not exist. Directories are
// recreated, symlinks are recreated with the same target, and regular files
// are streamed and fsynced. Every created directory is fsynced once its
// children are in place, and the parent of dst is fsynced last.
//
// When verify is non-nil each regular file copy is checked against its
// source digest.
func CopyTree(fsys FS, src, dst string, verify hash.Hasher) error {
	stack := []copyJob{{src: src, dst: dst}}
	var dirs []dirFixup

	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := fsys.Lstat(job.src)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", job.src, err)
		}

		switch mode := info.Mode(); {
		case mode&os.ModeSymlink != 0:
			target, err := fsys.Readlink(job.src)
			if err != nil {
				return fmt.Errorf("failed to read link %s: %w", job.src, err)
			}
			if err := fsys.Symlink(target, job.dst); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", job.dst, err)
			}

		case mode.IsDir():
			// Owner needs write access while children are created; the
			// original mode is applied afterwards.
			if err := fsys.Mkdir(job.dst, mode.Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", job.dst, err)
			}
			dirs = append(dirs, dirFixup{path: job.dst, perm: mode.Perm()})

			entries, err := fsys.ReadDir(job.src)
			if err != nil {
				return fmt.Errorf("failed to read directory %s: %w", job.src, err)
			}
			for i := len(entries) - 1; i >= 0; i-- {
				name := entries[i].Name()
				stack = append(stack, copyJob{
					src: filepath.Join(job.src, name),
					dst: filepath.Join(job.dst, name),
				})
			}

		case mode.IsRegular():
			if err := copyFile(fsys, job.src, job.dst, mode.Perm()); err != nil {
				return err
			}
			if verify != nil {
				if err := hash.Verify(verify, job.src, job.dst); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, job.src, mode.Type())
		}
	}

	// Deepest directories were created last; settle them first.
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if err := BestEffortSyncDir(fsys, d.path); err != nil {
			return fmt.Errorf("failed to sync directory %s: %w", d.path, err)
		}
		if d.perm&0o700 != 0o700 {
			if err := fsys.Chmod(d.path, d.perm); err != nil {
				return fmt.Errorf("failed to restore mode on %s: %w", d.path, err)
			}
		}
	}

	parent := filepath.Dir(dst)
	if err := BestEffortSyncDir(fsys, parent); err != nil {
		return fmt.Errorf("failed to sync directory %s: %w", parent, err)
	}
	return nil
}

// copyFile streams src into a newly created dst and fsyncs it.
func copyFile(fsys FS, src, dst string, perm os.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to sync %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

type removeJob struct {
	path     string
	expanded bool
}

// RemoveTree removes path and everything below it, children before their
// parent directory. Symlinks are unlinked and never followed. A missing path
// yields an error wrapping os.ErrNotExist.
func RemoveTree(fsys FS, path string) error {
	stack := []removeJob{{path: path}}

	for len(stack) > 0 {
		top := len(stack) - 1
		job := stack[top]

		if job.expanded {
			if err := fsys.Remove(job.path); err != nil {
				return fmt.Errorf("failed to remove directory %s: %w", job.path, err)
			}
			stack = stack[:top]
			continue
		}

		info, err := fsys.Lstat(job.path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", job.path, err)
		}
		if !info.IsDir() {
			if err := fsys.Remove(job.path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", job.path, err)
			}
			stack = stack[:top]
			continue
		}

		// Read-only directories cannot have entries unlinked from them.
		if info.Mode().Perm()&0o200 == 0 {
			_ = fsys.Chmod(job.path, info.Mode().Perm()|0o700)
		}

		entries, err := fsys.ReadDir(job.path)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", job.path, err)
		}
		stack[top].expanded = true
		for _, entry := range entries {
			stack = append(stack, removeJob{path: filepath.Join(job.path, entry.Name())})
		}
	}
	return nil
}
