package storage

import "database/sql"

// migrateV001 creates the initial mirror schema: tables and indexes. Every
// statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS mirror_events (
			event_id     TEXT PRIMARY KEY,
			data         TEXT NOT NULL DEFAULT '{}',
			record_count INTEGER NOT NULL DEFAULT 0,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS mirror_subpages (
			event_id     TEXT NOT NULL,
			entity_type  TEXT NOT NULL,
			data         TEXT NOT NULL DEFAULT '[]',
			record_count INTEGER NOT NULL DEFAULT 0,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (event_id, entity_type)
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_subpages_type       ON mirror_subpages(entity_type)`,
		`CREATE INDEX IF NOT EXISTS idx_subpages_updated_at ON mirror_subpages(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_updated_at   ON mirror_events(updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
