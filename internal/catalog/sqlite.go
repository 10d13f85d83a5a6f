package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrEmptyPath is returned when no database path is configured.
var ErrEmptyPath = errors.New("database path is empty")

// SchemaVersion is the schema version the store migrates to.
const SchemaVersion = 2

type migration struct {
	up          func(*sql.Tx) error
	description string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "Initial paint schema",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS paints (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT,
				brand TEXT NOT NULL,
				hex TEXT NOT NULL,
				category TEXT NOT NULL,
				finish TEXT NOT NULL DEFAULT 'matte',
				transparency REAL NOT NULL DEFAULT 0,
				color_family TEXT NOT NULL DEFAULT ''
			)`)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_paints_brand ON paints(brand)`)
			return err
		},
	},
	{
		version:     2,
		description: "Add paint tags",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE paints ADD COLUMN tags TEXT NOT NULL DEFAULT '[]'`)
			return err
		},
	},
}

// SQLiteStore keeps the raw catalogue in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to SchemaVersion.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := m.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		slog.Debug("Applied migration", "version", m.version, "description", m.description)
	}
	return nil
}

// Replace overwrites the stored catalogue with records.
func (s *SQLiteStore) Replace(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM paints`); err != nil {
		return fmt.Errorf("failed to clear paints: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO paints (name, brand, hex, category, finish, transparency, color_family, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}

		var name sql.NullString
		if rec.Name != nil {
			name = sql.NullString{String: *rec.Name, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, name, rec.Brand, rec.Hex, rec.Category, rec.Finish,
			rec.Transparency, rec.ColorFamily, string(tagsJSON)); err != nil {
			return fmt.Errorf("failed to insert paint %q: %w", rec.Hex, err)
		}
	}

	return tx.Commit()
}

// Records returns every stored record in insertion order.
func (s *SQLiteStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, brand, hex, category, finish, transparency, color_family, tags
		FROM paints
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query paints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			rec  Record
			name sql.NullString
			tags string
		)
		if err := rows.Scan(&name, &rec.Brand, &rec.Hex, &rec.Category, &rec.Finish,
			&rec.Transparency, &rec.ColorFamily, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan paint: %w", err)
		}
		if name.Valid {
			n := name.String
			rec.Name = &n
		}
		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for %q: %w", rec.Hex, err)
		}
		if len(rec.Tags) == 0 {
			rec.Tags = nil
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paints: %w", err)
	}
	return records, nil
}

// Load reads and normalises the stored catalogue.
func (s *SQLiteStore) Load(ctx context.Context) (*Catalog, Report, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, Report{}, err
	}
	paints, report := Normalize(records)
	return New(paints), report, nil
}

// Open loads a catalogue from a .json file or a SQLite database, chosen by
// extension.
func Open(ctx context.Context, path string) (*Catalog, Report, error) {
	switch filepath.Ext(path) {
	case ".json":
		return LoadJSON(path)
	case ".db", ".sqlite", ".sqlite3":
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, Report{}, err
		}
		defer func() { _ = store.Close() }()
		if err := store.Migrate(ctx); err != nil {
			return nil, Report{}, err
		}
		return store.Load(ctx)
	}
	return nil, Report{}, fmt.Errorf("unsupported catalogue format: %s", path)
}
