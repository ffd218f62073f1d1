//go:build !unix && !windows

package catalog

import "os"

// fileLock only holds the marker file open on platforms without advisory
// locking.
type fileLock struct {
	f *os.File
}

func acquireLock(path string, _ bool) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() error {
	return l.f.Close()
}
