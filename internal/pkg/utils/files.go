package utils

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/afero"
)

// FileExists checks if a file exists and is not a directory before we
// try using it to prevent further errors
func FileExists(fsys afero.Fs, filename string) bool {
	info, err := fsys.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ModTime returns the modification time of a regular file.
// The boolean is false when the file does not exist.
func ModTime(fsys afero.Fs, filename string) (time.Time, bool, error) {
	info, err := fsys.Stat(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	if info.IsDir() {
		return time.Time{}, false, nil
	}

	return info.ModTime(), true, nil
}
