package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventhubx/eventhubx/internal/record"
)

// ErrNotFound is returned when a requested mirror row does not exist.
var ErrNotFound = fmt.Errorf("mirror row not found")

// Store defines the interface for mirror data operations.
type Store interface {
	UpsertEvent(ctx context.Context, eventID string, data record.Record) error
	ListEvents(ctx context.Context) ([]record.Record, error)
	GetEventRow(ctx context.Context, eventID string) (*EventRow, error)
	UpsertSubpage(ctx context.Context, eventID string, entityType record.EntityType, data []record.Record) error
	GetSubpage(ctx context.Context, eventID string, entityType record.EntityType) ([]record.Record, error)
	ScanSubpages(ctx context.Context, entityType record.EntityType) ([]record.Record, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	upsertEvent   *sql.Stmt
	upsertSubpage *sql.Stmt
	getEvent      *sql.Stmt
	getSubpage    *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertEvent, err = s.db.Prepare(`
		INSERT INTO mirror_events (event_id, data, record_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			data = excluded.data,
			record_count = excluded.record_count,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.upsertSubpage, err = s.db.Prepare(`
		INSERT INTO mirror_subpages (event_id, entity_type, data, record_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(event_id, entity_type) DO UPDATE SET
			data = excluded.data,
			record_count = excluded.record_count,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.getEvent, err = s.db.Prepare(`
		SELECT event_id, data, record_count, updated_at
		FROM mirror_events WHERE event_id = ?
	`)
	if err != nil {
		return err
	}

	s.getSubpage, err = s.db.Prepare(`
		SELECT data FROM mirror_subpages WHERE event_id = ? AND entity_type = ?
	`)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// decodePayload turns a stored JSON array into records. A corrupt payload
// degrades to an empty slice; the gateway treats that the same as no data.
func decodePayload(data []byte) []record.Record {
	records, err := record.DecodeList(data)
	if err != nil {
		return []record.Record{}
	}
	return records
}

// UpsertEvent writes one mirrored event row, replacing any previous payload.
func (s *SQLiteStore) UpsertEvent(ctx context.Context, eventID string, data record.Record) error {
	if eventID == "" {
		return fmt.Errorf("upsert event: empty event id")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.upsertEvent.ExecContext(ctx, eventID, string(payload), 1, ts); err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// ListEvents returns every mirrored event payload in insertion order.
// Rows whose payload cannot be decoded are skipped.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM mirror_events ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []record.Record{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		var rec record.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			continue
		}
		events = append(events, rec)
	}

	return events, rows.Err()
}

// GetEventRow retrieves a single mirrored event row by id.
func (s *SQLiteStore) GetEventRow(ctx context.Context, eventID string) (*EventRow, error) {
	var row EventRow
	var payload, tsStr string

	err := s.getEvent.QueryRowContext(ctx, eventID).Scan(
		&row.EventID, &payload, &row.RecordCount, &tsStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event row: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &row.Data); err != nil {
		row.Data = record.Record{}
	}
	row.UpdatedAt, _ = parseTimestamp(tsStr)

	return &row, nil
}

// UpsertSubpage writes the per-event payload for one entity type.
func (s *SQLiteStore) UpsertSubpage(ctx context.Context, eventID string, entityType record.EntityType, data []record.Record) error {
	if eventID == "" {
		return fmt.Errorf("upsert subpage: empty event id")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal subpage payload: %w", err)
	}

	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.upsertSubpage.ExecContext(ctx, eventID, string(entityType), string(payload), len(data), ts); err != nil {
		return fmt.Errorf("upsert subpage: %w", err)
	}
	return nil
}

// GetSubpage retrieves the payload for one (event, entity type) pair.
// Returns ErrNotFound when the pair has never been mirrored.
func (s *SQLiteStore) GetSubpage(ctx context.Context, eventID string, entityType record.EntityType) ([]record.Record, error) {
	var payload string
	err := s.getSubpage.QueryRowContext(ctx, eventID, string(entityType)).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subpage: %w", err)
	}
	return decodePayload([]byte(payload)), nil
}

// ScanSubpages concatenates the payloads of every event for one entity type,
// in insertion order. Rows across events are disjoint by construction, so no
// deduplication is applied.
func (s *SQLiteStore) ScanSubpages(ctx context.Context, entityType record.EntityType) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM mirror_subpages WHERE entity_type = ? ORDER BY rowid`,
		string(entityType),
	)
	if err != nil {
		return nil, fmt.Errorf("scan subpages: %w", err)
	}
	defer rows.Close()

	all := []record.Record{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan subpage row: %w", err)
		}
		all = append(all, decodePayload([]byte(payload))...)
	}

	return all, rows.Err()
}

// GetStats returns aggregate statistics about the mirror database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mirror_events").Scan(&stats.Events)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(record_count), 0) FROM mirror_subpages",
	).Scan(&stats.SubpageRows, &stats.Records)
	if err != nil {
		return nil, fmt.Errorf("count subpages: %w", err)
	}

	if stats.Events > 0 || stats.SubpageRows > 0 {
		var newest sql.NullString
		err = s.db.QueryRowContext(ctx, `
			SELECT MAX(ts) FROM (
				SELECT MAX(updated_at) AS ts FROM mirror_events
				UNION ALL
				SELECT MAX(updated_at) AS ts FROM mirror_subpages
			)
		`).Scan(&newest)
		if err != nil {
			return nil, fmt.Errorf("last updated: %w", err)
		}
		if newest.Valid {
			stats.LastUpdated, _ = parseTimestamp(newest.String)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_type, COUNT(*), COALESCE(SUM(record_count), 0)
		FROM mirror_subpages GROUP BY entity_type ORDER BY entity_type
	`)
	if err != nil {
		return nil, fmt.Errorf("per-type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.EntityType, &tc.Rows, &tc.Records); err != nil {
			return nil, err
		}
		stats.PerType = append(stats.PerType, tc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed — that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.upsertEvent, s.upsertSubpage, s.getEvent, s.getSubpage,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
