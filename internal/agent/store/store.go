package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Sample is one captured GPS reading waiting for server acknowledgment.
type Sample struct {
	ID         string
	Lat        float64
	Lon        float64
	Alt        float64
	CapturedAt time.Time
}

// Store is the durable pending-sample buffer. Every mutation commits to
// SQLite before returning, so a crash right after Append cannot lose the
// sample. Mutations are serialized; a capture landing mid-sync cannot race
// the acknowledgment delete.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open initializes the database connection, creating directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InitSchema ensures the pending buffer table exists. Rows already present
// from a previous run stay in place and become the restored buffer.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pending_samples (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			alt REAL NOT NULL,
			captured_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Append persists one sample. The insert commits before Append returns.
func (s *Store) Append(ctx context.Context, sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_samples (id, lat, lon, alt, captured_at)
		VALUES (?, ?, ?, ?, ?)
	`, sample.ID, sample.Lat, sample.Lon, sample.Alt, sample.CapturedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append sample: %w", err)
	}
	return nil
}

// All returns the buffered samples in capture order.
func (s *Store) All(ctx context.Context) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lat, lon, alt, captured_at
		FROM pending_samples
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sample Sample
		var capturedAt string
		if err := rows.Scan(&sample.ID, &sample.Lat, &sample.Lon, &sample.Alt, &capturedAt); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, capturedAt); err == nil {
			sample.CapturedAt = ts
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// RemoveAcknowledged deletes exactly the given samples. Samples appended
// after an acknowledged batch was snapshotted are untouched.
func (s *Store) RemoveAcknowledged(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`DELETE FROM pending_samples WHERE id IN (%s)`, strings.Join(placeholders, ","))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove acknowledged: %w", err)
	}
	return nil
}

// Count returns the number of buffered samples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_samples`).Scan(&n)
	return n, err
}
