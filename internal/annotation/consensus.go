package annotation

import (
	"gonum.org/v1/gonum/stat"
)

// Majority is the worker majority vote for a pair.
type Majority struct {
	Pair    PairKey
	Label   *string // label_worker_mv
	Support int     // mv_mode: votes agreeing with Label
}

// MeanScore is the mean worker ordinal for a pair.
type MeanScore struct {
	Pair  PairKey
	Mean  *float64 // label_worker_mean
	Count int      // mean_count
}

// MajorityVotes computes the most frequent non-nil label of every row.
// With tertiary set, "Match" votes count as "Version".
//
// Ties go to the label that comes first in Labels; labels outside the
// enumeration follow, ordered lexically. A row without votes has a nil
// label and zero support.
func MajorityVotes(t *VoteTable[string], tertiary bool) []Majority {
	out := make([]Majority, 0, len(t.Rows))
	for _, row := range t.Rows {
		votes := row.Values()
		if tertiary {
			for i, v := range votes {
				votes[i] = CollapseVote(v)
			}
		}
		label, support := mode(votes)
		m := Majority{Pair: row.Pair, Support: support}
		if support > 0 {
			m.Label = ptr(label)
		}
		out = append(out, m)
	}
	return out
}

func mode(votes []string) (string, int) {
	counts := make(map[string]int, len(votes))
	for _, v := range votes {
		counts[v]++
	}
	var best string
	bestCount := 0
	for label, n := range counts {
		if n > bestCount || (n == bestCount && tieBreakBefore(label, best)) {
			best, bestCount = label, n
		}
	}
	return best, bestCount
}

// tieBreakBefore reports whether a wins a tie against b.
func tieBreakBefore(a, b string) bool {
	ra, rb := labelRank(a), labelRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// MeanScores averages the non-nil ordinal votes of every row. A row
// without votes has a nil mean and zero count.
func MeanScores(t *VoteTable[int]) []MeanScore {
	out := make([]MeanScore, 0, len(t.Rows))
	for _, row := range t.Rows {
		votes := row.Values()
		s := MeanScore{Pair: row.Pair, Count: len(votes)}
		if len(votes) > 0 {
			xs := make([]float64, len(votes))
			for i, v := range votes {
				xs[i] = float64(v)
			}
			s.Mean = ptr(stat.Mean(xs, nil))
		}
		out = append(out, s)
	}
	return out
}
