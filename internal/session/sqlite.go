package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the pure-Go "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// SQLiteBackend persists session values in a single-table SQLite file, the
// on-disk counterpart of a browser's local storage. The session survives a
// restart of the client for as long as the file is kept.
type SQLiteBackend struct {
	conn *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (or creates) the session file at path. ":memory:" gives a
// throwaway database for tests.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: opening %s: %w", path, err)
	}

	// One connection: an in-memory database is per-connection, and a
	// single writer is all the session ever needs.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: pinging %s: %w", path, err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS local_storage (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: creating local_storage table: %w", err)
	}

	return &SQLiteBackend{conn: conn}, nil
}

// Close releases the database file.
func (b *SQLiteBackend) Close() error {
	return b.conn.Close()
}

func (b *SQLiteBackend) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := b.conn.QueryContext(ctx,
		`SELECT key, value FROM local_storage WHERE key IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("session: reading keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("session: scanning key: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: iterating keys: %w", err)
	}

	return out, nil
}

// Set upserts every value inside one transaction.
func (b *SQLiteBackend) Set(ctx context.Context, values map[string]string) error {
	return b.inTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO local_storage (key, value) VALUES (?, ?)
				 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
				k, v,
			); err != nil {
				return fmt.Errorf("session: writing %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes every key inside one transaction.
func (b *SQLiteBackend) Delete(ctx context.Context, keys ...string) error {
	return b.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, k); err != nil {
				return fmt.Errorf("session: deleting %s: %w", k, err)
			}
		}
		return nil
	})
}

func (b *SQLiteBackend) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := b.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("session: committing: %w", err)
	}
	return nil
}
