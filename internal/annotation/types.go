package annotation

import (
	"cmp"
	"fmt"
	"strings"
)

// ControlGroupMarker tags calibration samples in the sample group column.
// Rows whose group contains it never take part in worker consensus.
const ControlGroupMarker = "match"

// PairKey identifies one judgment target: a candidate track compared with a
// reference track inside a set/version, tagged with its sample group.
type PairKey struct {
	SetID       string
	VerID       string
	ReferenceID string
	CandidateID string
	SampleGroup string
}

func (k PairKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", k.SetID, k.VerID, k.ReferenceID, k.CandidateID, k.SampleGroup)
}

// IsControl reports whether the pair belongs to a calibration sample group.
func (k PairKey) IsControl() bool {
	return strings.Contains(k.SampleGroup, ControlGroupMarker)
}

// ComparePairKeys orders keys field by field, lexically.
func ComparePairKeys(a, b PairKey) int {
	if c := cmp.Compare(a.SetID, b.SetID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.VerID, b.VerID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ReferenceID, b.ReferenceID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.CandidateID, b.CandidateID); c != 0 {
		return c
	}
	return cmp.Compare(a.SampleGroup, b.SampleGroup)
}

// WorkerAssignment is one crowd worker's judgment of a pair.
type WorkerAssignment struct {
	Pair         PairKey
	AssignmentID string
	Label        *string // label_worker
	NLabel       *int    // nlabel_worker
}

// StaffRecord holds the two independent staff judgments of a pair.
type StaffRecord struct {
	Pair         PairKey
	LabelStaff1  *string
	LabelStaff2  *string
	NLabelStaff1 *int
}

// ExpertRecord is the expert verdict for a pair.
type ExpertRecord struct {
	Pair     PairKey
	Label    *string
	NLabel   *int
	Comment  *string
	Category *string
}

// Provenance names the source that supplied a consolidated label.
// The zero value means no source had a label for the pair.
type Provenance string

const (
	ProvenanceNone   Provenance = ""
	ProvenanceExpert Provenance = "expert"
	ProvenanceStaff  Provenance = "staff"
	ProvenanceWorker Provenance = "worker"
)

// Consolidated is the final per-pair annotation.
type Consolidated struct {
	Pair   PairKey
	Label  *string
	NLabel *int
	Origin Provenance

	// Diagnostics exposed in full (non-lean) output.
	NLabelStaff     *int
	LabelWorkerMean *float64
	NLabelExpert    *int
	CommentExpert   *string
	CategoryExpert  *string
}

// Labeled reports whether any source supplied a label.
func (c Consolidated) Labeled() bool {
	return c.Label != nil
}

func ptr[T any](v T) *T { return &v }
