//go:build !unix && !windows

package fsops

func syncDir(string) error {
	return ErrDirSyncUnsupported
}

// IsCrossDevice always reports false on this platform.
func IsCrossDevice(error) bool {
	return false
}
