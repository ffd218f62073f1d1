//go:build !linux && !darwin

package fsops

func renameNoReplace(oldpath, newpath string) error {
	return checkedRename(oldpath, newpath)
}
