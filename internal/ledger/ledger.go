package ledger

import (
	"context"

	"backend-geoattend/internal/db"

	"github.com/google/uuid"
)

// Store appends received location samples to the attendance_logs table.
// Rows are never updated or deleted; duplicate delivery of a batch simply
// appends again.
type Store struct {
	db db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{db: q}
}

// EnsureSchema creates the ledger table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS attendance_logs (
			id UUID PRIMARY KEY,
			student_id TEXT NOT NULL,
			class_id TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			alt DOUBLE PRECISION NOT NULL,
			recorded_at TEXT NOT NULL,
			received_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// Record appends one row per entry. The first failing insert aborts and is
// returned; rows inserted before it stay in place (append-only, no
// transaction semantics promised to callers).
func (s *Store) Record(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		_, err := s.db.Exec(ctx, `
			INSERT INTO attendance_logs (id, student_id, class_id, lat, lon, alt, recorded_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, uuid.NewString(), e.StudentID, e.ClassID, e.Lat, e.Lon, e.Alt, e.RecordedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// History returns the recorded rows for a class, oldest first, optionally
// narrowed to one student.
func (s *Store) History(ctx context.Context, classID, studentID string) ([]Record, error) {
	query := `
		SELECT id, student_id, class_id, lat, lon, alt, recorded_at, received_at
		FROM attendance_logs
		WHERE class_id=$1
		ORDER BY received_at
	`
	args := []any{classID}
	if studentID != "" {
		query = `
		SELECT id, student_id, class_id, lat, lon, alt, recorded_at, received_at
		FROM attendance_logs
		WHERE class_id=$1 AND student_id=$2
		ORDER BY received_at
	`
		args = append(args, studentID)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.StudentID, &r.ClassID, &r.Lat, &r.Lon, &r.Alt, &r.RecordedAt, &r.ReceivedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
