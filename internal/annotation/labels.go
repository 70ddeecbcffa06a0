package annotation

import "strings"

// Categorical relevance labels shared by every annotation source.
const (
	LabelMatch   = "Match"
	LabelVersion = "Version"
	LabelOther   = "Other"
	LabelNoMusic = "No Music"
)

// Labels lists the label enumeration in descending ordinal order. The order
// is also the majority-vote tie-break order.
var Labels = []string{LabelMatch, LabelVersion, LabelOther, LabelNoMusic}

var labelOrdinals = map[string]int{
	LabelMatch:   3,
	LabelVersion: 2,
	LabelOther:   1,
	LabelNoMusic: 0,
}

// Ordinal maps a label to its numeric relevance score. ok is false for
// labels outside the enumeration.
func Ordinal(label string) (n int, ok bool) {
	n, ok = labelOrdinals[label]
	return n, ok
}

// OrdinalOf is the nullable form of Ordinal: a nil or unrecognised label
// yields nil.
func OrdinalOf(label *string) *int {
	if label == nil {
		return nil
	}
	n, ok := Ordinal(*label)
	if !ok {
		return nil
	}
	return &n
}

// labelRank orders labels for tie-breaking. Known labels rank by their
// position in Labels; anything else ranks after them.
func labelRank(label string) int {
	for i, l := range Labels {
		if l == label {
			return i
		}
	}
	return len(Labels)
}

// CollapseVote maps a single worker vote onto the three-class scheme.
// Only an exact "Match" is rewritten.
func CollapseVote(label string) string {
	if label == LabelMatch {
		return LabelVersion
	}
	return label
}

// CollapseLabel rewrites every "Match" occurrence in a consolidated label
// to "Version". Applying it twice is the same as applying it once.
func CollapseLabel(label string) string {
	return strings.ReplaceAll(label, LabelMatch, LabelVersion)
}
