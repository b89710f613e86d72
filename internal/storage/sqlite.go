package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/stormlab/shipsdb/pkg/types"
)

const (
	// CurrentSchemaVersion tracks the database layout version stored in the
	// meta table. Databases written by an incompatible major version are
	// rejected on open rather than silently misread.
	CurrentSchemaVersion = "1.0.0"

	// timeLayout is how TIME values are stored, matching the raw archive's
	// convention.
	timeLayout = "2006-01-02 15:04:05"
)

// ErrNoTable is returned when a query targets a diagnostics table that has
// not been created by an ingestion run.
var ErrNoTable = errors.New("diagnostics table does not exist")

// Store is the SQLite-backed relational store for parsed diagnostics.
// Ingestion is single-writer; after ingestion the store is read-only for
// queries.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database at path with the settings
// the module relies on.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers unblocked while an ingestion run commits batches.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, logger: logger}
	if err := s.ensureMeta(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureMeta creates the meta table on first open and verifies schema
// version compatibility on subsequent opens.
func (s *Store) ensureMeta(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS shipsdb_meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	if err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}

	var stored string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM shipsdb_meta WHERE key = 'schema_version'`).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO shipsdb_meta (key, value) VALUES ('schema_version', ?)`,
			CurrentSchemaVersion)
		if err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	have, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("corrupt schema version %q: %w", stored, err)
	}
	want := semver.MustParse(CurrentSchemaVersion)
	if have.Major() != want.Major() {
		return fmt.Errorf("database schema version %s is incompatible with %s", stored, CurrentSchemaVersion)
	}
	if have.LessThan(want) {
		_, err = s.db.ExecContext(ctx,
			`UPDATE shipsdb_meta SET value = ? WHERE key = 'schema_version'`,
			CurrentSchemaVersion)
		if err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}
	return nil
}

// CreateDiagnosticsTable creates the diagnostics table from the derived
// schema, replacing any previous table of the same name.
func (s *Store) CreateDiagnosticsTable(ctx context.Context, schema types.Schema) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+schema.Table); err != nil {
		return fmt.Errorf("failed to drop existing table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(schema)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// InsertRows persists one batch of rows as a single transaction. Either
// every row in the batch commits or none does.
func (s *Store) InsertRows(ctx context.Context, schema types.Schema, rows []types.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(schema))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		if len(row.Values) != len(schema.Params) {
			return fmt.Errorf("row for %s has %d values, schema has %d columns",
				row.ATCFID, len(row.Values), len(schema.Params))
		}
		args := make([]any, 0, len(row.Values)+2)
		args = append(args, row.ATCFID, row.Time.UTC().Format(timeLayout))
		for _, v := range row.Values {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row for %s: %w", row.ATCFID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// TableExists reports whether the named table exists.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TableColumns returns the ordered column names of a table via PRAGMA
// introspection.
func (s *Store) TableColumns(ctx context.Context, table string) ([]string, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// StormRow is one stored observation as read back from the database, with
// the TIME column already decoded. Values are the parameter columns in
// table order, still holding raw integers including the missing sentinel.
type StormRow struct {
	ATCFID string
	Time   time.Time
	Values []int64
}

// FetchStorm returns the parameter column names and every stored row for
// the given storm, time-ordered. If at is non-nil only the exact matching
// row is returned. A storm with no rows yields an empty slice, not an
// error: "no data" is a normal outcome for an unassigned storm.
func (s *Store) FetchStorm(ctx context.Context, table, atcfID string, at *time.Time) ([]string, []StormRow, error) {
	if !identPattern.MatchString(table) {
		return nil, nil, fmt.Errorf("invalid table name %q", table)
	}
	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoTable, table)
	}

	query := "SELECT * FROM " + table + " WHERE ATCF_ID = ?"
	args := []any{atcfID}
	if at != nil {
		query += " AND TIME = ?"
		args = append(args, at.UTC().Format(timeLayout))
	} else {
		query += " ORDER BY TIME"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	if len(cols) < 2 || cols[0] != "ATCF_ID" || cols[1] != "TIME" {
		return nil, nil, fmt.Errorf("table %s is missing identifying columns", table)
	}
	params := cols[2:]

	out := make([]StormRow, 0)
	for rows.Next() {
		var (
			id string
			ts string
		)
		vals := make([]int64, len(params))
		dest := make([]any, 0, len(cols))
		dest = append(dest, &id, &ts)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		t, err := time.ParseInLocation(timeLayout, ts, time.UTC)
		if err != nil {
			return nil, nil, fmt.Errorf("stored TIME %q does not decode: %w", ts, err)
		}
		out = append(out, StormRow{ATCFID: id, Time: t, Values: vals})
	}
	return params, out, rows.Err()
}

// RowCount returns the number of rows in the diagnostics table, or zero
// when the table has not been created yet.
func (s *Store) RowCount(ctx context.Context, table string) (int64, error) {
	if !identPattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	exists, err := s.TableExists(ctx, table)
	if err != nil || !exists {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SizeBytes returns the database size computed from page statistics.
func (s *Store) SizeBytes(ctx context.Context) (int64, error) {
	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, err
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, err
	}
	return pageCount * pageSize, nil
}
