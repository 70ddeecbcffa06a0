package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/banshee-data/shsdataset/internal/annotation"
)

// FeatureTable is a table of per-track feature columns. The set of feature
// columns is whatever the snapshot holds besides the key columns.
type FeatureTable struct {
	Columns []string
	Rows    []FeatureRow
}

// FeatureRow is one row of a FeatureTable. SetID and VerID are empty for
// tables keyed by track only. Values align with FeatureTable.Columns.
type FeatureRow struct {
	SetID   string
	VerID   string
	TrackID string
	Values  []sql.NullString
}

func selectList(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = quoteIdent(c)
	}
	return strings.Join(q, ", ")
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

// WorkerAssignments loads annotations/mturk in insertion order, which is
// the order the assignment counters follow.
func (s *Store) WorkerAssignments(ctx context.Context) ([]annotation.WorkerAssignment, error) {
	cols := append(append([]string{}, pairKeyColumns...), "AssignmentId", "label_worker", "nlabel_worker")
	if _, err := s.requireColumns(TableMTurk, cols...); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+selectList(cols)+` FROM `+quoteIdent(TableMTurk)+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableMTurk, err)
	}
	defer rows.Close()

	var out []annotation.WorkerAssignment
	for rows.Next() {
		var (
			a      annotation.WorkerAssignment
			label  sql.NullString
			nlabel sql.NullInt64
		)
		if err := rows.Scan(
			&a.Pair.SetID, &a.Pair.VerID, &a.Pair.ReferenceID, &a.Pair.CandidateID, &a.Pair.SampleGroup,
			&a.AssignmentID, &label, &nlabel,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", TableMTurk, err)
		}
		a.Label = nullString(label)
		a.NLabel = nullInt(nlabel)
		out = append(out, a)
	}
	return out, rows.Err()
}

// StaffRecords loads annotations/staff.
func (s *Store) StaffRecords(ctx context.Context) ([]annotation.StaffRecord, error) {
	cols := append(append([]string{}, pairKeyColumns...), "label_staff1", "label_staff2", "nlabel_staff1")
	if _, err := s.requireColumns(TableStaff, cols...); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+selectList(cols)+` FROM `+quoteIdent(TableStaff)+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableStaff, err)
	}
	defer rows.Close()

	var out []annotation.StaffRecord
	for rows.Next() {
		var (
			r      annotation.StaffRecord
			l1, l2 sql.NullString
			n1     sql.NullInt64
		)
		if err := rows.Scan(
			&r.Pair.SetID, &r.Pair.VerID, &r.Pair.ReferenceID, &r.Pair.CandidateID, &r.Pair.SampleGroup,
			&l1, &l2, &n1,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", TableStaff, err)
		}
		r.LabelStaff1 = nullString(l1)
		r.LabelStaff2 = nullString(l2)
		r.NLabelStaff1 = nullInt(n1)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ExpertRecords loads annotations/expert.
func (s *Store) ExpertRecords(ctx context.Context) ([]annotation.ExpertRecord, error) {
	cols := append(append([]string{}, pairKeyColumns...), "label_expert", "nlabel_expert", "comment_expert", "category_expert")
	if _, err := s.requireColumns(TableExpert, cols...); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+selectList(cols)+` FROM `+quoteIdent(TableExpert)+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableExpert, err)
	}
	defer rows.Close()

	var out []annotation.ExpertRecord
	for rows.Next() {
		var (
			r                        annotation.ExpertRecord
			label, comment, category sql.NullString
			nlabel                   sql.NullInt64
		)
		if err := rows.Scan(
			&r.Pair.SetID, &r.Pair.VerID, &r.Pair.ReferenceID, &r.Pair.CandidateID, &r.Pair.SampleGroup,
			&label, &nlabel, &comment, &category,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", TableExpert, err)
		}
		r.Label = nullString(label)
		r.NLabel = nullInt(nlabel)
		r.Comment = nullString(comment)
		r.Category = nullString(category)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Snapshot loads the three annotation tables.
func (s *Store) Snapshot(ctx context.Context) (annotation.Snapshot, error) {
	var snap annotation.Snapshot
	var err error
	if snap.Assignments, err = s.WorkerAssignments(ctx); err != nil {
		return snap, err
	}
	if snap.Staff, err = s.StaffRecords(ctx); err != nil {
		return snap, err
	}
	if snap.Expert, err = s.ExpertRecords(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

// Similarities loads annotations/similarities keyed by (set_id, ver_id, yt_id).
func (s *Store) Similarities(ctx context.Context) (*FeatureTable, error) {
	return s.featureTable(ctx, TableSimilarities, "set_id", "ver_id", "yt_id")
}

// MusicRatios loads annotations/yoho_musicratio keyed by yt_id.
func (s *Store) MusicRatios(ctx context.Context) (*FeatureTable, error) {
	return s.featureTable(ctx, TableMusicRatio, "yt_id")
}

// featureTable reads table with keys first, then every other column as a
// feature. keys is either (set_id, ver_id, yt_id) or (yt_id).
func (s *Store) featureTable(ctx context.Context, table string, keys ...string) (*FeatureTable, error) {
	all, err := s.requireColumns(table, keys...)
	if err != nil {
		return nil, err
	}
	var features []string
	for _, c := range all {
		if !containsFold(keys, c) {
			features = append(features, c)
		}
	}

	cols := append(append([]string{}, keys...), features...)
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectList(cols)+` FROM `+quoteIdent(table)+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	ft := &FeatureTable{Columns: features}
	for rows.Next() {
		r := FeatureRow{Values: make([]sql.NullString, len(features))}
		dest := make([]any, 0, len(cols))
		if len(keys) == 3 {
			dest = append(dest, &r.SetID, &r.VerID, &r.TrackID)
		} else {
			dest = append(dest, &r.TrackID)
		}
		for i := range r.Values {
			dest = append(dest, &r.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		ft.Rows = append(ft.Rows, r)
	}
	return ft, rows.Err()
}
