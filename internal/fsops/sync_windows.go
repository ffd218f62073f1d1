//go:build windows

package fsops

import (
	"errors"

	"golang.org/x/sys/windows"
)

func syncDir(string) error {
	return ErrDirSyncUnsupported
}

// IsCrossDevice reports whether err is the error returned by a rename across
// volumes.
func IsCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}
