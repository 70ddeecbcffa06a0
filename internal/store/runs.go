package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is the manifest of one dataset export.
type Run struct {
	RunID          string `json:"run_id"`
	Tertiary       bool   `json:"tertiary"`
	Lean           bool   `json:"lean"`
	PairCount      int    `json:"pair_count"`
	RowCount       int    `json:"row_count"`
	UnlabeledCount int    `json:"unlabeled_count"`
	OutputPath     string `json:"output_path"`
	CreatedAt      int64  `json:"created_at"`
}

// RecordRun persists a run manifest. If RunID is empty, a UUID is generated.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dataset_runs (
			run_id, tertiary, lean, pair_count, row_count, unlabeled_count, output_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Tertiary, run.Lean, run.PairCount, run.RowCount, run.UnlabeledCount,
		run.OutputPath, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the recorded runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, tertiary, lean, pair_count, row_count, unlabeled_count, output_path, created_at
		FROM dataset_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Tertiary, &r.Lean, &r.PairCount, &r.RowCount,
			&r.UnlabeledCount, &r.OutputPath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
