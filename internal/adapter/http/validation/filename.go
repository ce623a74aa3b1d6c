package validation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyFilename  = errors.New("filename is empty")
	ErrUnsafeFilename = errors.New("filename contains unsafe characters")
)

// ValidateArtifactName rejects download filenames that could escape the
// output directory or smuggle control characters into headers. Artifact
// names are generated as {workflowID}_{variant}.mp4, so anything with
// separators, dot segments, or control characters is hostile input.
func ValidateArtifactName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyFilename
	}
	if name == "." || name == ".." {
		return ErrUnsafeFilename
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrUnsafeFilename
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return ErrUnsafeFilename
		}
	}
	return nil
}

// ContentDisposition returns an attachment Content-Disposition header
// value, replacing characters that could break the quoted filename.
func ContentDisposition(filename string) string {
	var sb strings.Builder
	sb.Grow(len(filename))
	for _, r := range filename {
		switch {
		case r == '"' || r == '\\' || r < 32 || r == 127:
			sb.WriteRune('_')
		default:
			sb.WriteRune(r)
		}
	}
	return fmt.Sprintf("attachment; filename=%q", sb.String())
}
