package annotation

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/banshee-data/shsdataset/internal/monitoring"
)

// MaxWorkerVotes caps the vote columns kept per pair. One task type in the
// crowd data collected more assignments than requested; the excess votes
// are dropped rather than widening the table.
const MaxWorkerVotes = 5

// VoteColumnPrefix prefixes the wide vote column names (worker_ind0, ...).
const VoteColumnPrefix = "worker_ind"

// ErrDuplicateAssignment is returned when one assignment carries more than
// one row for the same pair, which leaves the vote cell ambiguous.
var ErrDuplicateAssignment = errors.New("duplicate worker assignment for pair")

// VoteTable is the wide form of the worker assignments: one row per pair,
// one column per assignment counter.
type VoteTable[T any] struct {
	Columns []string
	Rows    []VoteRow[T]
}

// VoteRow holds the votes of one pair, aligned with VoteTable.Columns.
// Nil entries are unused or missing votes.
type VoteRow[T any] struct {
	Pair  PairKey
	Votes []*T
}

// Values returns the non-nil votes of the row in column order.
func (r VoteRow[T]) Values() []T {
	out := make([]T, 0, len(r.Votes))
	for _, v := range r.Votes {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// LabelVotes pivots the categorical worker labels.
func LabelVotes(assignments []WorkerAssignment) (*VoteTable[string], error) {
	return ReshapeVotes(assignments, func(a WorkerAssignment) *string { return a.Label })
}

// OrdinalVotes pivots the numeric worker labels.
func OrdinalVotes(assignments []WorkerAssignment) (*VoteTable[int], error) {
	return ReshapeVotes(assignments, func(a WorkerAssignment) *int { return a.NLabel })
}

type assignmentKey struct {
	pair         PairKey
	assignmentID string
}

// ReshapeVotes turns the long assignment table into a VoteTable holding the
// value selected by value.
//
// Each assignment gets a 0-based counter per pair in order of first
// appearance. Rows from control sample groups are discarded after
// counting. Counters become columns, and only the first MaxWorkerVotes
// columns are kept. Rows are sorted by pair key.
func ReshapeVotes[T any](assignments []WorkerAssignment, value func(WorkerAssignment) *T) (*VoteTable[T], error) {
	counters := make(map[assignmentKey]int, len(assignments))
	next := make(map[PairKey]int)
	for _, a := range assignments {
		k := assignmentKey{pair: a.Pair, assignmentID: a.AssignmentID}
		if _, ok := counters[k]; ok {
			continue
		}
		counters[k] = next[a.Pair]
		next[a.Pair]++
	}

	cells := make(map[PairKey]map[int]*T)
	var present []int
	for _, a := range assignments {
		if a.Pair.IsControl() {
			continue
		}
		counter := counters[assignmentKey{pair: a.Pair, assignmentID: a.AssignmentID}]
		row, ok := cells[a.Pair]
		if !ok {
			row = make(map[int]*T)
			cells[a.Pair] = row
		}
		if _, dup := row[counter]; dup {
			return nil, fmt.Errorf("%w: pair %s assignment %q", ErrDuplicateAssignment, a.Pair, a.AssignmentID)
		}
		row[counter] = value(a)
		if !slices.Contains(present, counter) {
			present = append(present, counter)
		}
	}

	slices.Sort(present)
	if len(present) > MaxWorkerVotes {
		monitoring.Logf("worker votes: keeping %d of %d vote columns", MaxWorkerVotes, len(present))
		present = present[:MaxWorkerVotes]
	}

	table := &VoteTable[T]{Columns: make([]string, len(present))}
	for i, c := range present {
		table.Columns[i] = VoteColumnPrefix + strconv.Itoa(c)
	}

	pairs := make([]PairKey, 0, len(cells))
	for p := range cells {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, ComparePairKeys)

	table.Rows = make([]VoteRow[T], len(pairs))
	for i, p := range pairs {
		votes := make([]*T, len(present))
		for j, c := range present {
			votes[j] = cells[p][c]
		}
		table.Rows[i] = VoteRow[T]{Pair: p, Votes: votes}
	}
	return table, nil
}
