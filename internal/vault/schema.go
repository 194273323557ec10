// Package vault provides the SQLite-backed per-user store of extracted
// document fields.
package vault

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS data_vault (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	category          TEXT NOT NULL,
	field_name        TEXT NOT NULL,
	field_value       TEXT NOT NULL DEFAULT '',
	is_verified       INTEGER NOT NULL DEFAULT 0,
	verification_date DATETIME,
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, category, field_name)
);

CREATE INDEX IF NOT EXISTS idx_vault_user ON data_vault(user_id);
CREATE INDEX IF NOT EXISTS idx_vault_user_category ON data_vault(user_id, category);
`

// DB wraps a sql.DB with vault-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("vault: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("vault: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("vault: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
