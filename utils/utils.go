package utils

import (
	"os"
	"path/filepath"
)

// FileExist reports whether filePath exists and is a regular file.
func FileExist(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// CreateParentDirIfNotExist creates every missing directory on the way to filePath.
func CreateParentDirIfNotExist(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}

	return nil
}
