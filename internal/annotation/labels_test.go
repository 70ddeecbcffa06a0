package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrdinal(t *testing.T) {
	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{LabelMatch, 3, true},
		{LabelVersion, 2, true},
		{LabelOther, 1, true},
		{LabelNoMusic, 0, true},
		{"match", 0, false},
		{"", 0, false},
		{"Cover", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Ordinal(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrdinalOf(t *testing.T) {
	assert.Nil(t, OrdinalOf(nil))
	assert.Nil(t, OrdinalOf(ptr("Unknown")))
	if got := OrdinalOf(ptr(LabelVersion)); assert.NotNil(t, got) {
		assert.Equal(t, 2, *got)
	}
	// Deterministic: same label, same ordinal.
	for _, l := range Labels {
		a, b := OrdinalOf(ptr(l)), OrdinalOf(ptr(l))
		assert.Equal(t, *a, *b)
	}
}

func TestCollapseIdempotent(t *testing.T) {
	inputs := []string{LabelMatch, LabelVersion, LabelOther, LabelNoMusic, "Match?", ""}
	for _, in := range inputs {
		once := CollapseLabel(in)
		assert.Equal(t, once, CollapseLabel(once), "CollapseLabel(%q)", in)

		onceVote := CollapseVote(in)
		assert.Equal(t, onceVote, CollapseVote(onceVote), "CollapseVote(%q)", in)
	}
	assert.Equal(t, LabelVersion, CollapseLabel(LabelMatch))
	assert.Equal(t, LabelVersion, CollapseVote(LabelMatch))
	assert.Equal(t, "Version?", CollapseLabel("Match?"))
	assert.Equal(t, "Match?", CollapseVote("Match?"))
}

func TestCollapseReducesToThreeOrdinals(t *testing.T) {
	seen := map[int]bool{}
	for _, l := range Labels {
		n, ok := Ordinal(CollapseLabel(l))
		assert.True(t, ok)
		seen[n] = true
	}
	assert.Equal(t, map[int]bool{2: true, 1: true, 0: true}, seen)
}

func TestPairKeyIsControl(t *testing.T) {
	assert.True(t, PairKey{SampleGroup: "match_control"}.IsControl())
	assert.True(t, PairKey{SampleGroup: "nomatch"}.IsControl())
	assert.False(t, PairKey{SampleGroup: "Match"}.IsControl())
	assert.False(t, PairKey{SampleGroup: "random"}.IsControl())
}

func TestComparePairKeys(t *testing.T) {
	a := PairKey{SetID: "1", VerID: "1", ReferenceID: "r", CandidateID: "a", SampleGroup: "g"}
	b := a
	b.CandidateID = "b"
	assert.Negative(t, ComparePairKeys(a, b))
	assert.Positive(t, ComparePairKeys(b, a))
	assert.Zero(t, ComparePairKeys(a, a))

	c := a
	c.SetID = "0"
	assert.Negative(t, ComparePairKeys(c, b))
}
