//go:build unix

package catalog

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an flock(2) lock. The kernel drops it when the descriptor is
// closed, including when the process dies.
type fileLock struct {
	f *os.File
}

func acquireLock(path string, exclusive bool) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	for {
		err = unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, &os.PathError{Op: "flock", Path: path, Err: err}
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() error {
	uerr := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	cerr := l.f.Close()
	if uerr != nil {
		return uerr
	}
	return cerr
}
