package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists job history. History is advisory for the pipeline:
// callers log record failures but never promote them to job failures.
type Store struct {
	db *sql.DB
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA busy_timeout = 5000",
				"PRAGMA synchronous = NORMAL",
				"PRAGMA foreign_keys = ON",
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewStore(dataDir string) (*Store, error) {
	registerHook()

	dbPath := filepath.Join(dataDir, "worker.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for SQLite (WAL allows concurrent reads but only one writer)
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(rec *domain.JobRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, workflow_id, variant, status, error_message, output_path, file_size, checksum, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.WorkflowID, rec.Variant, rec.Status, rec.Error,
		rec.OutputPath, rec.FileSize, rec.Checksum, rec.DurationMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}
	return nil
}

func (s *Store) ListRecent(limit int) ([]*domain.JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workflow_id, variant, status, error_message, output_path, file_size, checksum, duration_ms, created_at
		FROM jobs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []*domain.JobRecord
	for rows.Next() {
		rec := &domain.JobRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.WorkflowID, &rec.Variant, &rec.Status, &rec.Error,
			&rec.OutputPath, &rec.FileSize, &rec.Checksum, &rec.DurationMs, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ port.JobStore = (*Store)(nil)
