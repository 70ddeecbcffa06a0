package dataset

import (
	"context"
	"fmt"

	"github.com/banshee-data/shsdataset/internal/annotation"
	"github.com/banshee-data/shsdataset/internal/store"
)

// Source provides the snapshot tables a build reads. *store.Store
// implements it.
type Source interface {
	Snapshot(ctx context.Context) (annotation.Snapshot, error)
	Similarities(ctx context.Context) (*store.FeatureTable, error)
	MusicRatios(ctx context.Context) (*store.FeatureTable, error)
}

// Options are the two dataset toggles.
type Options struct {
	// Tertiary collapses Match into Version.
	Tertiary bool
	// Lean restricts the annotation columns to label, nlabel and origin.
	Lean bool
}

// Result is the outcome of Build.
type Result struct {
	Table       *Table
	Annotations []annotation.Consolidated
	Stats       Stats
}

// Build loads every table from src, consolidates the annotations and joins
// them with the feature tables. Any read or consolidation error aborts the
// build.
func Build(ctx context.Context, src Source, opts Options) (*Result, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	sims, err := src.Similarities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load similarities: %w", err)
	}
	ratios, err := src.MusicRatios(ctx)
	if err != nil {
		return nil, fmt.Errorf("load music ratios: %w", err)
	}

	annotations, err := annotation.Annotate(snap, opts.Tertiary)
	if err != nil {
		return nil, fmt.Errorf("consolidate annotations: %w", err)
	}
	table, stats := Assemble(annotations, sims, ratios, opts.Lean)
	return &Result{Table: table, Annotations: annotations, Stats: stats}, nil
}
