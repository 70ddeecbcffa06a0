// Package dataset joins the consolidated annotations with the per-track
// feature tables and writes the flat dataset file.
package dataset

import (
	"database/sql"
	"strconv"

	"github.com/banshee-data/shsdataset/internal/annotation"
	"github.com/banshee-data/shsdataset/internal/monitoring"
	"github.com/banshee-data/shsdataset/internal/store"
)

// Key columns kept in the output. ver_id and the track join key are not.
var keyHeader = []string{"set_id", "reference_yt_id", "candidate_yt_id", "sample_group"}

var (
	leanHeader = []string{"label", "nlabel", "origin"}
	fullHeader = []string{"label", "nlabel", "origin",
		"nlabel_staff", "label_worker_mean", "nlabel_expert", "comment_expert", "category_expert"}
)

// Table is the assembled dataset. A Row value is invalid when the field is
// null.
type Table struct {
	Header []string
	Rows   [][]sql.NullString
}

// Stats counts what happened to the consolidated pairs during assembly.
type Stats struct {
	Pairs               int
	Unlabeled           int
	DroppedNoSimilarity int
	MissingMetadata     int
	Rows                int
}

type setTrack struct {
	setID   string
	trackID string
}

// Assemble inner-joins rows with sims on (set_id, candidate = yt_id), then
// left-joins ratios on the candidate track. A pair matching several
// similarity rows yields one output row per match, in similarity table
// order.
func Assemble(rows []annotation.Consolidated, sims, ratios *store.FeatureTable, lean bool) (*Table, Stats) {
	annHeader := fullHeader
	if lean {
		annHeader = leanHeader
	}

	header := make([]string, 0, len(keyHeader)+len(annHeader)+len(sims.Columns)+len(ratios.Columns))
	header = append(header, keyHeader...)
	header = append(header, annHeader...)
	header = append(header, sims.Columns...)
	header = append(header, ratios.Columns...)

	simIdx := make(map[setTrack][]int, len(sims.Rows))
	for i, r := range sims.Rows {
		k := setTrack{r.SetID, r.TrackID}
		simIdx[k] = append(simIdx[k], i)
	}
	ratioIdx := make(map[string][]int, len(ratios.Rows))
	for i, r := range ratios.Rows {
		ratioIdx[r.TrackID] = append(ratioIdx[r.TrackID], i)
	}

	t := &Table{Header: header}
	stats := Stats{Pairs: len(rows)}
	for _, c := range rows {
		if !c.Labeled() {
			stats.Unlabeled++
		}
		matches := simIdx[setTrack{c.Pair.SetID, c.Pair.CandidateID}]
		if len(matches) == 0 {
			stats.DroppedNoSimilarity++
			continue
		}

		prefix := annotationFields(c, lean)
		ratioRows := ratioIdx[c.Pair.CandidateID]
		if len(ratioRows) == 0 {
			stats.MissingMetadata++
		}
		for _, si := range matches {
			base := make([]sql.NullString, 0, len(header))
			base = append(base, prefix...)
			base = append(base, sims.Rows[si].Values...)
			if len(ratioRows) == 0 {
				t.Rows = append(t.Rows, append(base, make([]sql.NullString, len(ratios.Columns))...))
				continue
			}
			for _, ri := range ratioRows {
				row := append(append(make([]sql.NullString, 0, len(header)), base...), ratios.Rows[ri].Values...)
				t.Rows = append(t.Rows, row)
			}
		}
	}
	stats.Rows = len(t.Rows)

	if stats.DroppedNoSimilarity > 0 {
		monitoring.Logf("assemble: dropped %d of %d pairs without similarity features", stats.DroppedNoSimilarity, stats.Pairs)
	}
	if stats.MissingMetadata > 0 {
		monitoring.Logf("assemble: %d pairs have no music ratio metadata", stats.MissingMetadata)
	}
	return t, stats
}

func annotationFields(c annotation.Consolidated, lean bool) []sql.NullString {
	out := []sql.NullString{
		str(&c.Pair.SetID),
		str(&c.Pair.ReferenceID),
		str(&c.Pair.CandidateID),
		str(&c.Pair.SampleGroup),
		str(c.Label),
		integer(c.NLabel),
		origin(c.Origin),
	}
	if lean {
		return out
	}
	return append(out,
		integer(c.NLabelStaff),
		float(c.LabelWorkerMean),
		integer(c.NLabelExpert),
		str(c.CommentExpert),
		str(c.CategoryExpert),
	)
}

func str(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func integer(v *int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strconv.Itoa(*v), Valid: true}
}

func float(v *float64) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strconv.FormatFloat(*v, 'f', -1, 64), Valid: true}
}

func origin(p annotation.Provenance) sql.NullString {
	if p == annotation.ProvenanceNone {
		return sql.NullString{}
	}
	return sql.NullString{String: string(p), Valid: true}
}
