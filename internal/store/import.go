package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/shsdataset/internal/monitoring"
)

// ErrUnknownColumn is returned when an import header names a column an
// annotation table does not have.
var ErrUnknownColumn = errors.New("unknown column")

// featureTables accept new columns on import.
var featureTables = map[string]bool{
	TableSimilarities: true,
	TableMusicRatio:   true,
}

// ImportCSV appends the delimited rows read from r to table and returns
// the number of rows inserted. The first record is the header. Empty
// fields are stored as NULL. Unknown header columns are added to the
// feature tables and rejected for the annotation tables. The import runs
// in a single transaction.
func (s *Store) ImportCSV(ctx context.Context, table string, r io.Reader, comma rune) (int, error) {
	if err := knownTable(table); err != nil {
		return 0, err
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	header = append([]string{}, header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	existing, err := s.Columns(table)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, col := range header {
		if col == "" {
			return 0, fmt.Errorf("%w: empty header field in %s", ErrUnknownColumn, table)
		}
		if containsFold(existing, col) {
			continue
		}
		if !featureTables[table] {
			return 0, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, col)
		}
		if _, err := tx.ExecContext(ctx, `ALTER TABLE `+quoteIdent(table)+` ADD COLUMN `+quoteIdent(col)); err != nil {
			return 0, fmt.Errorf("add column %s.%s: %w", table, col, err)
		}
		existing = append(existing, col)
		monitoring.Logf("import: added feature column %s.%s", table, col)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+quoteIdent(table)+` (`+selectList(header)+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	n := 0
	args := make([]any, len(header))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row %d: %w", n+1, err)
		}
		for i, v := range rec {
			if v == "" {
				args[i] = nil
				continue
			}
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d into %s: %w", n+1, table, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}
