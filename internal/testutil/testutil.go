// Package testutil provides shared test fixtures: a small annotation
// snapshot and helpers that load it into a migrated store.
package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/shsdataset/internal/monitoring"
	"github.com/banshee-data/shsdataset/internal/store"
)

// Snapshot tables as ';'-delimited text, keyed by store table name.
//
// set 1 / ref has four candidates:
//   - c1: staff agree on Version
//   - c2: expert Match, staff disagree
//   - c3: worker majority Match (2 of 3), one control row that is ignored
//   - c4: worker labels only, no similarity row (dropped from the dataset)
var Snapshot = map[string]string{
	store.TableMTurk: `set_id;ver_id;reference_yt_id;candidate_yt_id;sample_group;AssignmentId;label_worker;nlabel_worker
1;0;ref;c3;random;A1;Match;3
1;0;ref;c3;random;A2;Match;3
1;0;ref;c3;random;A3;Other;1
1;0;ref;c3;match_ctrl;A1;No Music;0
1;0;ref;c4;random;A4;Version;2
`,
	store.TableStaff: `set_id;ver_id;reference_yt_id;candidate_yt_id;sample_group;label_staff1;label_staff2;nlabel_staff1
1;0;ref;c1;random;Version;Version;2
1;0;ref;c2;random;Version;Other;2
`,
	store.TableExpert: `set_id;ver_id;reference_yt_id;candidate_yt_id;sample_group;label_expert;nlabel_expert;comment_expert;category_expert
1;0;ref;c2;random;Match;3;"studio; remaster";official
`,
	store.TableSimilarities: `set_id;ver_id;yt_id;title_sim;chroma_sim
1;0;c1;0.5;0.8
1;0;c2;0.75;0.9
1;0;c3;0.25;
`,
	store.TableMusicRatio: `yt_id;music_ratio
c1;0.9
c2;0.95
`,
}

// Quiet routes monitoring output to t.Logf for the duration of the test.
func Quiet(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.Logf = prev })
}

// NewStore creates a migrated, empty store in a temp dir and returns it
// with its path.
func NewStore(t testing.TB) (*store.Store, string) {
	t.Helper()
	Quiet(t)
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.MigrateUp(); err != nil {
		t.Fatalf("migrate store: %v", err)
	}
	return s, path
}

// Seed imports tables into s.
func Seed(t testing.TB, s *store.Store, tables map[string]string) {
	t.Helper()
	for _, table := range store.Tables {
		data, ok := tables[table]
		if !ok {
			continue
		}
		if _, err := s.ImportCSV(context.Background(), table, strings.NewReader(data), ';'); err != nil {
			t.Fatalf("seed %s: %v", table, err)
		}
	}
}

// NewSeededStore returns a store holding Snapshot.
func NewSeededStore(t testing.TB) (*store.Store, string) {
	t.Helper()
	s, path := NewStore(t)
	Seed(t, s, Snapshot)
	return s, path
}
