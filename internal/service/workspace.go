package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/logger"
)

// WorkspaceManager hands out per-job scratch directories keyed by
// (workflow id, variant) and removes them when the job concludes.
// Distinct keys never share a directory; identical keys map to the
// same directory with no cooperative locking.
type WorkspaceManager struct {
	baseDir string
}

func NewWorkspaceManager(baseDir string) *WorkspaceManager {
	return &WorkspaceManager{baseDir: baseDir}
}

// Acquire creates (idempotently) and returns the workspace directory
// for the given key.
func (m *WorkspaceManager) Acquire(workflowID, variantName string) (string, error) {
	if err := validateSegment(workflowID); err != nil {
		return "", fmt.Errorf("invalid workflow id: %w", err)
	}
	if err := validateSegment(variantName); err != nil {
		return "", fmt.Errorf("invalid variant name: %w", err)
	}

	dir := filepath.Join(m.baseDir, workflowID, variantName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// Release removes the workspace tree. Removal is best-effort: failures
// are logged and never alter the job's outcome.
func (m *WorkspaceManager) Release(path string) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		logger.Warn.Printf("workspace cleanup failed for %s: %v", logger.SanitizeForLog(path), err)
	}
}

// validateSegment rejects key parts that would escape the workspace
// base directory when joined into a path.
func validateSegment(s string) error {
	if s == "" {
		return fmt.Errorf("empty path segment")
	}
	if s == "." || s == ".." {
		return fmt.Errorf("reserved path segment %q", s)
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return fmt.Errorf("path segment %q contains separator or null byte", s)
	}
	return nil
}
