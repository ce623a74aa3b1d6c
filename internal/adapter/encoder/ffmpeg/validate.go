package ffmpeg

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

// validatePath rejects empty paths and paths carrying null bytes, which
// would silently truncate the argument handed to the encoder process.
func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	return nil
}
