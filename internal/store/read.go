package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Ahmad-Qasm/RM-client/internal/session"
)

// Record is one logged task date together with its log position.
type Record struct {
	session.TaskDate
	Seq int64
}

// ListTaskDates returns every logged task date for an order.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC.
//
// Returns an empty slice (not nil) when the order has no records.
func (s *Store) ListTaskDates(ctx context.Context, orderID int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT submission_token, catalog_id, name, due, minutes, order_id, seq
		FROM taskdates
		WHERE order_id = ?
		ORDER BY seq ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query task dates: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListSubmission returns every task date saved under one submission
// token, in log order.
func (s *Store) ListSubmission(ctx context.Context, token string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT submission_token, catalog_id, name, due, minutes, order_id, seq
		FROM taskdates
		WHERE submission_token = ?
		ORDER BY seq ASC, id ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query submission: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// MaxSeq returns the highest seq stamped in the log, or 0 when empty.
// Used to resume the clock when reopening a log.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM taskdates`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec Record
			due string
		)
		err := rows.Scan(
			&rec.SubmissionToken,
			&rec.CatalogID,
			&rec.Name,
			&due,
			&rec.Minutes,
			&rec.OrderID,
			&rec.Seq,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task date: %w", err)
		}
		rec.Due, err = time.ParseInLocation(time.DateOnly, due, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse due date %q: %w", due, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task dates: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
