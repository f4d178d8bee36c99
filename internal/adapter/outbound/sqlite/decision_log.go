// Package sqlite provides an SQLite-backed decision audit log for
// deployments that want a queryable record instead of flat files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id             TEXT PRIMARY KEY,
	ts             INTEGER NOT NULL,
	request_hash   TEXT NOT NULL,
	decision       TEXT NOT NULL,
	status_code    TEXT,
	status_message TEXT,
	obligation_ids TEXT,
	advice_ids     TEXT,
	duration_ns    INTEGER NOT NULL,
	cached         INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions (ts);
CREATE INDEX IF NOT EXISTS idx_decisions_request_hash ON decisions (request_hash);
`

// DecisionLog persists decision audit records in an SQLite database.
type DecisionLog struct {
	db *sql.DB
}

var _ audit.Store = (*DecisionLog)(nil)

// Open opens (creating if needed) the decision log database at path.
func Open(path string) (*DecisionLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening decision log: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing decision log schema: %w", err)
	}
	return &DecisionLog{db: db}, nil
}

// Append inserts the records in one transaction.
func (l *DecisionLog) Append(ctx context.Context, records ...audit.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning decision log transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO decisions
		(id, ts, request_hash, decision, status_code, status_message, obligation_ids, advice_ids, duration_ns, cached)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing decision insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		cached := 0
		if rec.Cached {
			cached = 1
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.Timestamp.UnixNano(),
			rec.RequestHash,
			rec.Decision,
			rec.StatusCode,
			rec.StatusMessage,
			strings.Join(rec.ObligationIDs, ","),
			strings.Join(rec.AdviceIDs, ","),
			int64(rec.Duration),
			cached,
		); err != nil {
			return fmt.Errorf("inserting decision %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// Flush is a no-op: Append commits synchronously.
func (l *DecisionLog) Flush(context.Context) error { return nil }

// Close closes the database.
func (l *DecisionLog) Close() error { return l.db.Close() }

// Query returns records in [from, to) ordered by timestamp, newest first,
// capped at limit.
func (l *DecisionLog) Query(ctx context.Context, from, to time.Time, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx, `SELECT
		id, ts, request_hash, decision, status_code, status_message, obligation_ids, advice_ids, duration_ns, cached
		FROM decisions WHERE ts >= ? AND ts < ? ORDER BY ts DESC LIMIT ?`,
		from.UnixNano(), to.UnixNano(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying decision log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []audit.Record
	for rows.Next() {
		var (
			rec         audit.Record
			ts, dur     int64
			obls, advs  string
			cached      int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.RequestHash, &rec.Decision,
			&rec.StatusCode, &rec.StatusMessage, &obls, &advs, &dur, &cached); err != nil {
			return nil, fmt.Errorf("scanning decision record: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		rec.Duration = time.Duration(dur)
		rec.Cached = cached != 0
		if obls != "" {
			rec.ObligationIDs = strings.Split(obls, ",")
		}
		if advs != "" {
			rec.AdviceIDs = strings.Split(advs, ",")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
