// ABOUTME: Database schema definitions
// ABOUTME: Tables for import/export runs and their per-contact log entries
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS transfer_runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK(kind IN ('import', 'export')),
	scope TEXT,
	state TEXT NOT NULL CHECK(state IN ('init', 'loading_groups', 'running', 'done', 'failed')),
	count INTEGER NOT NULL DEFAULT 0,
	import_group TEXT,
	import_group_id TEXT,
	last_resource TEXT,
	error_message TEXT,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transfer_runs_started ON transfer_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_transfer_runs_kind ON transfer_runs(kind);

CREATE TABLE IF NOT EXISTS transfer_items (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	resource_name TEXT,
	display_name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('created', 'exported', 'skipped', 'failed')),
	detail TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (run_id) REFERENCES transfer_runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_transfer_items_run ON transfer_items(run_id);
CREATE INDEX IF NOT EXISTS idx_transfer_items_resource ON transfer_items(resource_name);
`

// InitSchema creates any missing tables and indexes.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
