package port

import "github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"

// JobStore persists job history. Recording is advisory: callers log
// store errors but never promote them to job failures.
type JobStore interface {
	Record(rec *domain.JobRecord) error
	ListRecent(limit int) ([]*domain.JobRecord, error)
}
