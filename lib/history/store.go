package history

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Append writes change events in one transaction. Rows are insert-only;
// nothing in this package updates or deletes them.
func (s Store) Append(ctx context.Context, events []offer.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.ExecContext(ctx, `
INSERT INTO change_events (source, product_id, observed_at, field, old_value, new_value, kind)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Source, e.ProductID, e.ObservedAt.Unix(), e.Field, e.Old, e.New, string(e.Kind))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns every recorded event for an identity, oldest first.
func (s Store) Query(ctx context.Context, id offer.Identity) ([]offer.ChangeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT observed_at, field, old_value, new_value, kind
FROM change_events
WHERE source = ? AND product_id = ?
ORDER BY observed_at ASC, id ASC`,
		id.Source, id.ProductID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []offer.ChangeEvent
	for rows.Next() {
		var observedAt int64
		var kind string
		e := offer.ChangeEvent{Identity: id}
		err := rows.Scan(&observedAt, &e.Field, &e.Old, &e.New, &kind)
		if err != nil {
			return nil, err
		}
		e.ObservedAt = time.Unix(observedAt, 0).UTC()
		e.Kind = offer.ChangeKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// SourceRun is one source's outcome within a pipeline run, as persisted.
type SourceRun struct {
	Source    string
	Status    string
	StartedAt time.Time
	Duration  time.Duration
	Processed int
	Failed    int
	Error     string
}

// RecordRun persists a run summary with its per-source rows and returns
// the run id.
func (s Store) RecordRun(ctx context.Context, startedAt, finishedAt time.Time, sources []SourceRun) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var processed, failed int
	for _, sr := range sources {
		processed += sr.Processed
		failed += sr.Failed
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO runs (started_at, finished_at, records_processed, records_failed)
VALUES (?, ?, ?, ?)`,
		startedAt.Unix(), finishedAt.Unix(), processed, failed)
	if err != nil {
		return 0, err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, sr := range sources {
		_, err := tx.ExecContext(ctx, `
INSERT INTO source_runs (run_id, source, status, started_at, duration_ms, records_processed, records_failed, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runId, sr.Source, sr.Status, sr.StartedAt.Unix(),
			sr.Duration.Milliseconds(), sr.Processed, sr.Failed, sr.Error)
		if err != nil {
			return 0, err
		}
	}
	return runId, tx.Commit()
}

// RecentRuns returns the newest run summaries, most recent first.
func (s Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, finished_at, records_processed, records_failed
FROM runs
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, finished int64
		err := rows.Scan(&r.Id, &started, &finished, &r.Processed, &r.Failed)
		if err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0).UTC()
		r.FinishedAt = time.Unix(finished, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type RunSummary struct {
	Id         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Failed     int
}
