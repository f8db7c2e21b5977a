//go:build !windows

package files

import "os"

func renameAtomic(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// isReparsePoint is a Windows concept; Lstat already reports symlinks here.
func isReparsePoint(string) (bool, error) {
	return false, nil
}
