//go:build windows

package catalog

import (
	"os"

	"golang.org/x/sys/windows"
)

type fileLock struct {
	f *os.File
}

func acquireLock(path string, exclusive bool) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	var flags uint32
	if exclusive {
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	ol := new(windows.Overlapped)
	if err := windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, ol); err != nil {
		_ = f.Close()
		return nil, &os.PathError{Op: "LockFileEx", Path: path, Err: err}
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() error {
	ol := new(windows.Overlapped)
	uerr := windows.UnlockFileEx(windows.Handle(l.f.Fd()), 0, 1, 0, ol)
	cerr := l.f.Close()
	if uerr != nil {
		return uerr
	}
	return cerr
}
