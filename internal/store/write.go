package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Ahmad-Qasm/RM-client/internal/session"
)

// WriteSubmission inserts the submission header row.
// Uses ON CONFLICT DO NOTHING for idempotency - a token seen before is
// silently ignored.
func (s *Store) WriteSubmission(ctx context.Context, token string, orderID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (token, order_id, submitted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		token,
		orderID,
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}

// WriteTaskDate inserts one task date into the log and reports whether
// a new row was inserted.
//
// Uses ON CONFLICT(submission_token, catalog_id) DO NOTHING for
// idempotency: retrying a save after a crash never duplicates a row.
// Other constraint violations (e.g. NOT NULL) still return errors.
func (s *Store) WriteTaskDate(ctx context.Context, td session.TaskDate, seq int64) (inserted bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO taskdates
		(submission_token, catalog_id, name, due, minutes, order_id, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(submission_token, catalog_id) DO NOTHING
	`,
		td.SubmissionToken,
		td.CatalogID,
		td.Name,
		td.Due.Format(time.DateOnly),
		td.Minutes,
		td.OrderID,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("write task date: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write task date: rows affected: %w", err)
	}
	return rows > 0, nil
}

// Saver adapts the store to the planning session's persistence
// interface. Each save stamps the row with the next seq from the clock
// and ensures the submission header exists first.
type Saver struct {
	store *Store
	clock *Clock
	now   func() time.Time
}

// NewSaver creates a Saver over the store. The seq clock resumes from
// the highest seq already in the log, so rows written after a reopen
// sort after every earlier row.
func NewSaver(ctx context.Context, s *Store) (*Saver, error) {
	max, err := s.MaxSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume seq clock: %w", err)
	}
	return &Saver{store: s, clock: NewClockAt(max), now: time.Now}, nil
}

// SaveTaskDate implements session.Saver.
func (sv *Saver) SaveTaskDate(ctx context.Context, td session.TaskDate) error {
	if err := sv.store.WriteSubmission(ctx, td.SubmissionToken, td.OrderID, sv.now()); err != nil {
		return err
	}
	_, err := sv.store.WriteTaskDate(ctx, td, sv.clock.Next())
	return err
}
