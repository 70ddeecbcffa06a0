// Package store is the keyed tabular store holding the annotation snapshot.
//
// The snapshot is a SQLite file with one table per source, named after the
// groups of the original annotation store (annotations/mturk,
// annotations/staff, ...). Reads load a whole table into memory; the
// transforms in internal/annotation and internal/dataset never touch SQL.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

// Table names in the snapshot.
const (
	TableSimilarities = "annotations/similarities"
	TableMusicRatio   = "annotations/yoho_musicratio"
	TableMTurk        = "annotations/mturk"
	TableExpert       = "annotations/expert"
	TableStaff        = "annotations/staff"
)

// Tables lists every snapshot table.
var Tables = []string{TableSimilarities, TableMusicRatio, TableMTurk, TableExpert, TableStaff}

// Key columns shared by the annotation tables.
var pairKeyColumns = []string{"set_id", "ver_id", "reference_yt_id", "candidate_yt_id", "sample_group"}

var (
	// ErrMissingTable is returned when a snapshot table does not exist.
	ErrMissingTable = errors.New("table not found in store")
	// ErrMissingColumn is returned when a table lacks a required column.
	ErrMissingColumn = errors.New("required column missing")
	// ErrUnknownTable is returned for table names outside Tables.
	ErrUnknownTable = errors.New("unknown table")
)

// Store wraps the SQLite connection of one snapshot file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the snapshot at path without touching its schema. Use
// MigrateUp to create the tables in a new file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the file the store was opened from.
func (s *Store) Path() string { return s.path }

// Close closes the connection.
func (s *Store) Close() error { return s.db.Close() }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func knownTable(name string) error {
	if !slices.Contains(Tables, name) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return nil
}

// Columns returns the column names of table in declaration order.
func (s *Store) Columns(table string) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingTable, table)
	}
	return cols, nil
}

// requireColumns checks that table has every column in want and returns
// the full column list.
func (s *Store) requireColumns(table string, want ...string) ([]string, error) {
	cols, err := s.Columns(table)
	if err != nil {
		return nil, err
	}
	for _, w := range want {
		if !containsFold(cols, w) {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingColumn, table, w)
		}
	}
	return cols, nil
}

// SQLite identifiers are case-insensitive.
func containsFold(cols []string, name string) bool {
	return slices.ContainsFunc(cols, func(c string) bool { return strings.EqualFold(c, name) })
}
