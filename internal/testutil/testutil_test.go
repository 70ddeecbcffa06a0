package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeededStore(t *testing.T) {
	s, path := NewSeededStore(t)
	assert.Equal(t, path, s.Path())

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Assignments, 5)
	assert.Len(t, snap.Staff, 2)
	assert.Len(t, snap.Expert, 1)

	sims, err := s.Similarities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"title_sim", "chroma_sim"}, sims.Columns)
	assert.Len(t, sims.Rows, 3)
}
