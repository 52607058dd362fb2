package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// busyTimeoutMS bounds waiting for a database lock.
	busyTimeoutMS = 5000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS index_entries (
	partname   TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	identifier TEXT NOT NULL,
	drivers    TEXT NOT NULL
);`

// SQLiteStore keeps the index in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", path, busyTimeoutMS)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Kind returns "sqlite".
func (s *SQLiteStore) Kind() string {
	return "sqlite"
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Save replaces the stored entries in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, idx *Index) error {
	stamp(idx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM index_entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO index_entries (partname, document, identifier, drivers) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range idx.Entries {
		ident, err := json.Marshal(e.Identifier)
		if err != nil {
			return fmt.Errorf("encoding identifier of %s: %w", e.Partname, err)
		}
		drivers, err := json.Marshal(e.Drivers)
		if err != nil {
			return fmt.Errorf("encoding drivers of %s: %w", e.Partname, err)
		}
		if _, err := stmt.ExecContext(ctx, e.Partname, e.Document, string(ident), string(drivers)); err != nil {
			return fmt.Errorf("inserting %s: %w", e.Partname, err)
		}
	}

	meta := map[string]string{
		"version":  strconv.Itoa(idx.Version),
		"saved_at": idx.SavedAt.Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO index_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Load reads the stored index. Returns nil, nil if nothing has been saved.
func (s *SQLiteStore) Load(ctx context.Context) (*Index, error) {
	idx := &Index{}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM index_meta`)
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		meta[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metadata: %w", err)
	}
	if len(meta) == 0 {
		return nil, nil
	}

	if idx.Version, err = strconv.Atoi(meta["version"]); err != nil {
		return nil, fmt.Errorf("parsing version: %w", err)
	}
	if idx.SavedAt, err = time.Parse(time.RFC3339Nano, meta["saved_at"]); err != nil {
		return nil, fmt.Errorf("parsing saved_at: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT partname, document, identifier, drivers FROM index_entries ORDER BY partname`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		idx.Entries = append(idx.Entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return idx, nil
}

// Lookup reads one entry.
func (s *SQLiteStore) Lookup(ctx context.Context, partname string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT partname, document, identifier, drivers FROM index_entries WHERE partname = ?`, partname)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%q: %w", partname, ErrEntryNotFound)
		}
		return nil, err
	}
	return e, nil
}

// Clear removes all entries and metadata.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	for _, table := range []string{"index_entries", "index_meta"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e              Entry
		ident, drivers string
	)
	if err := row.Scan(&e.Partname, &e.Document, &ident, &drivers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ident), &e.Identifier); err != nil {
		return nil, fmt.Errorf("decoding identifier of %s: %w", e.Partname, err)
	}
	if err := json.Unmarshal([]byte(drivers), &e.Drivers); err != nil {
		return nil, fmt.Errorf("decoding drivers of %s: %w", e.Partname, err)
	}
	return &e, nil
}

var _ Store = (*SQLiteStore)(nil)
