//go:build unix

package fsops

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func syncDir(path string) error {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s for fsync: %w", path, err)
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	if err := unix.Fsync(fd); err != nil {
		// Some filesystems refuse fsync on directory descriptors.
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP) {
			return ErrDirSyncUnsupported
		}
		return fmt.Errorf("fsync %s: %w", path, err)
	}
	return nil
}

// IsCrossDevice reports whether err is the EXDEV returned by a rename across
// filesystems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
