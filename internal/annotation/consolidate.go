package annotation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/banshee-data/shsdataset/internal/monitoring"
)

// ErrDuplicatePair is returned when a per-pair source lists the same pair
// twice.
var ErrDuplicatePair = errors.New("duplicate pair in annotation source")

// StaffLabel is a staff annotation both staff raters agreed on.
type StaffLabel struct {
	Pair   PairKey
	Label  string
	NLabel *int
}

// AgreeingStaff keeps the staff records whose two labels are present and
// identical. Disagreement is not an error; the pair simply has no staff
// label.
func AgreeingStaff(records []StaffRecord) []StaffLabel {
	out := make([]StaffLabel, 0, len(records))
	for _, r := range records {
		if r.LabelStaff1 == nil || r.LabelStaff2 == nil || *r.LabelStaff1 != *r.LabelStaff2 {
			continue
		}
		out = append(out, StaffLabel{Pair: r.Pair, Label: *r.LabelStaff1, NLabel: r.NLabelStaff1})
	}
	return out
}

// LabelSource is one entry in the consolidation priority list.
type LabelSource struct {
	Origin Provenance
	Lookup func(PairKey) *string
}

// Resolve walks sources in order and returns the first non-nil label.
// If none has one, it returns nil and ProvenanceNone.
func Resolve(pair PairKey, sources []LabelSource) (*string, Provenance) {
	for _, s := range sources {
		if label := s.Lookup(pair); label != nil {
			return label, s.Origin
		}
	}
	return nil, ProvenanceNone
}

// Sources bundles the per-pair inputs of Consolidate.
type Sources struct {
	Staff    []StaffLabel
	Expert   []ExpertRecord
	Majority []Majority
	Means    []MeanScore
}

// Consolidate merges the sources over the union of their pairs. Labels are
// taken from the expert, staff and worker majority in that order. With
// tertiary set, "Match" in the final label becomes "Version". Rows are
// returned sorted by pair key.
func Consolidate(src Sources, tertiary bool) ([]Consolidated, error) {
	staff, err := indexPairs(src.Staff, func(s StaffLabel) PairKey { return s.Pair })
	if err != nil {
		return nil, fmt.Errorf("staff: %w", err)
	}
	expert, err := indexPairs(src.Expert, func(e ExpertRecord) PairKey { return e.Pair })
	if err != nil {
		return nil, fmt.Errorf("expert: %w", err)
	}
	majority, err := indexPairs(src.Majority, func(m Majority) PairKey { return m.Pair })
	if err != nil {
		return nil, fmt.Errorf("worker majority: %w", err)
	}
	means, err := indexPairs(src.Means, func(m MeanScore) PairKey { return m.Pair })
	if err != nil {
		return nil, fmt.Errorf("worker mean: %w", err)
	}

	priority := []LabelSource{
		{Origin: ProvenanceExpert, Lookup: func(p PairKey) *string {
			if e, ok := expert[p]; ok {
				return e.Label
			}
			return nil
		}},
		{Origin: ProvenanceStaff, Lookup: func(p PairKey) *string {
			if s, ok := staff[p]; ok {
				return &s.Label
			}
			return nil
		}},
		{Origin: ProvenanceWorker, Lookup: func(p PairKey) *string {
			if m, ok := majority[p]; ok {
				return m.Label
			}
			return nil
		}},
	}

	pairs := unionPairs(staff, expert, majority, means)
	out := make([]Consolidated, 0, len(pairs))
	unlabeled := 0
	for _, p := range pairs {
		c := Consolidated{Pair: p}
		label, origin := Resolve(p, priority)
		if label != nil {
			l := *label
			if tertiary {
				l = CollapseLabel(l)
			}
			c.Label = &l
		} else {
			unlabeled++
		}
		c.Origin = origin
		c.NLabel = OrdinalOf(c.Label)

		if s, ok := staff[p]; ok {
			c.NLabelStaff = s.NLabel
		}
		if m, ok := means[p]; ok {
			c.LabelWorkerMean = m.Mean
		}
		if e, ok := expert[p]; ok {
			c.NLabelExpert = e.NLabel
			c.CommentExpert = e.Comment
			c.CategoryExpert = e.Category
		}
		out = append(out, c)
	}
	if unlabeled > 0 {
		monitoring.Logf("consolidate: %d of %d pairs have no label from any source", unlabeled, len(out))
	}
	return out, nil
}

func indexPairs[T any](rows []T, key func(T) PairKey) (map[PairKey]T, error) {
	idx := make(map[PairKey]T, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, dup := idx[k]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePair, k)
		}
		idx[k] = r
	}
	return idx, nil
}

func unionPairs[A, B, C, D any](a map[PairKey]A, b map[PairKey]B, c map[PairKey]C, d map[PairKey]D) []PairKey {
	seen := make(map[PairKey]struct{}, len(a)+len(b)+len(c)+len(d))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	for k := range c {
		seen[k] = struct{}{}
	}
	for k := range d {
		seen[k] = struct{}{}
	}
	out := make([]PairKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.SortFunc(out, ComparePairKeys)
	return out
}

// Snapshot is the raw annotation input of one run.
type Snapshot struct {
	Assignments []WorkerAssignment
	Staff       []StaffRecord
	Expert      []ExpertRecord
}

// Annotate runs the full consolidation: worker votes are reshaped and
// resolved, staff records filtered for agreement, and everything merged by
// priority.
func Annotate(s Snapshot, tertiary bool) ([]Consolidated, error) {
	labels, err := LabelVotes(s.Assignments)
	if err != nil {
		return nil, fmt.Errorf("reshape worker labels: %w", err)
	}
	ordinals, err := OrdinalVotes(s.Assignments)
	if err != nil {
		return nil, fmt.Errorf("reshape worker ordinals: %w", err)
	}
	return Consolidate(Sources{
		Staff:    AgreeingStaff(s.Staff),
		Expert:   s.Expert,
		Majority: MajorityVotes(labels, tertiary),
		Means:    MeanScores(ordinals),
	}, tertiary)
}
