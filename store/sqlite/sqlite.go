/*
Package sqlite provides the SQLite-backed implementation of the storage
contracts.

PURPOSE:
  Implements pay.RecordStore, pay.SettingsStore and auth.IdentityStore
  against a single SQLite database file. Use ":memory:" for tests.

KEY TABLES:
  records:   activity records; one row per logged interval/adjustment
  settings:  per-owner key/value wage configuration
  users:     dedicated credential table, separated from settings

FIELD TOLERANCE:
  The record columns are declared without strict affinity and scanned
  into strings. Rows imported from older spreadsheet exports may carry
  "9.0" where an integer is expected; the coercion boundary in the pay
  package (pay.DecodeRecords) owns turning those into typed records.
  This store returns rows as-is.

ID ASSIGNMENT:
  Append assigns max(id)+1 (1 when empty) inside a write transaction,
  mirroring the sheet-era behavior. The process-level mutex keeps this
  single-writer; the store makes no multi-process guarantee.

WAL MODE:
  The database is opened with WAL so readers do not block the writer.

USAGE:
  st, err := sqlite.New("./paybook.db")
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shiftwork/paybook/auth"
	"github.com/shiftwork/paybook/pay"
)

// Store implements all storage contracts using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Activity records. Columns deliberately loose-typed: legacy imports
	-- carry numeric fields as text or floats and the engine coerces them.
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY,
		owner TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		start_hour NUMERIC,
		start_minute NUMERIC,
		end_hour NUMERIC,
		end_minute NUMERIC,
		distance_km NUMERIC,
		adjustment NUMERIC,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_owner_date
		ON records(owner, date);

	-- Per-owner settings
	CREATE TABLE IF NOT EXISTS settings (
		owner TEXT NOT NULL DEFAULT '',
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (owner, key)
	);

	-- Users: credentials live here, never in settings
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (pay.RecordStore)
// =============================================================================

// ReadAll returns the owner's rows in id order, loosely typed. An empty
// owner matches every row. An empty table yields an empty slice.
func (s *Store) ReadAll(ctx context.Context, owner string) ([]pay.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, owner, date, kind,
		       start_hour, start_minute, end_hour, end_minute,
		       distance_km, adjustment
		FROM records
	`
	args := []any{}
	if owner != "" {
		query += ` WHERE owner = ?`
		args = append(args, owner)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	out := []pay.RawRecord{}
	for rows.Next() {
		var (
			raw pay.RawRecord
			id  int64
			f   [6]sql.NullString
		)
		if err := rows.Scan(&id, &raw.Owner, &raw.Date, &raw.Kind,
			&f[0], &f[1], &f[2], &f[3], &f[4], &f[5]); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		raw.ID = fmt.Sprintf("%d", id)
		raw.StartHour = f[0].String
		raw.StartMinute = f[1].String
		raw.EndHour = f[2].String
		raw.EndMinute = f[3].String
		raw.DistanceKm = f[4].String
		raw.Adjustment = f[5].String
		out = append(out, raw)
	}
	return out, rows.Err()
}

// Append persists a validated record under id max+1 (1 when empty).
func (s *Store) Append(ctx context.Context, rec pay.ActivityRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM records`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to assign record id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records
		(id, owner, date, kind, start_hour, start_minute, end_hour, end_minute,
		 distance_km, adjustment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Owner, rec.Date.String(), string(rec.Kind),
		rec.Start.Hour, rec.Start.Minute, rec.End.Hour, rec.End.Minute,
		rec.DistanceKm.String(), rec.Adjustment,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit record: %w", err)
	}
	return id, nil
}

// DeleteByID removes exactly one record; no-op when the id is absent.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS STORE (pay.SettingsStore)
// =============================================================================

// Get returns a setting value or pay.ErrSettingNotFound.
func (s *Store) Get(ctx context.Context, owner, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE owner = ? AND key = ?`,
		owner, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", pay.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// Set stores or overwrites a setting value in place.
func (s *Store) Set(ctx context.Context, owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (owner, key, value) VALUES (?, ?, ?)
		ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value`,
		owner, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// IDENTITY STORE (auth.IdentityStore)
// =============================================================================

// LookupByName finds a user by account name.
func (s *Store) LookupByName(ctx context.Context, name string) (auth.User, error) {
	return s.lookupUser(ctx, `SELECT id, name, password_hash, created_at FROM users WHERE name = ?`, name)
}

// LookupByID finds a user by id.
func (s *Store) LookupByID(ctx context.Context, id string) (auth.User, error) {
	return s.lookupUser(ctx, `SELECT id, name, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) lookupUser(ctx context.Context, query, arg string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		u         auth.User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// Create inserts a new user.
func (s *Store) Create(ctx context.Context, u auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return auth.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Rename changes an account name.
func (s *Store) Rename(ctx context.Context, id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, newName, id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return auth.ErrUserExists
		}
		return fmt.Errorf("failed to rename user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
