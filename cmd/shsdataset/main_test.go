package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/shsdataset/internal/config"
	"github.com/banshee-data/shsdataset/internal/store"
	"github.com/banshee-data/shsdataset/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, "-version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "shsdataset "))
}

func TestHelpText(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &stderr)
	assert.True(t, errors.Is(err, errUsage))
	assert.Contains(t, stderr.String(), "Path to a JSON or YAML config file")
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "-db", "x.db", "frobnicate")
	assert.True(t, errors.Is(err, errUsage))

	_, err = runCLI(t, "-no-such-flag")
	assert.True(t, errors.Is(err, errUsage))
}

func TestExportAndRuns(t *testing.T) {
	_, dbPath := testutil.NewSeededStore(t)
	outPath := filepath.Join(t.TempDir(), "out", "shs1300.csv")

	out, err := runCLI(t, "-db", dbPath, "-out", outPath, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 rows (4 pairs, 0 unlabeled, 1 without similarity)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "set_id;reference_yt_id;candidate_yt_id;sample_group;label;nlabel;origin;title_sim;chroma_sim;music_ratio", lines[0])

	out, err = runCLI(t, "-db", dbPath, "runs")
	require.NoError(t, err)
	var runs []store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].RowCount)
	assert.Equal(t, outPath, runs[0].OutputPath)
	assert.True(t, runs[0].Lean)
}

func TestFlagsOverrideConfig(t *testing.T) {
	_, dbPath := testutil.NewSeededStore(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "full.csv")
	cfgPath := filepath.Join(dir, "config.json")
	cfg := `{"store_path": "` + dbPath + `", "output_path": "` + outPath + `", "tertiary": true, "lean": true}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err := runCLI(t, "-config", cfgPath, "-lean=false")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Contains(t, header, "comment_expert", "-lean=false beats the config file")
	assert.NotContains(t, string(data), ";Match;", "tertiary comes from the config file")
}

func TestConfigRejectsOutputOverStore(t *testing.T) {
	_, err := runCLI(t, "-db", "data/x.db", "-out", "data/x.db")
	assert.Error(t, err)
}

func TestOutputOverDefaultStoreRejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"out only", []string{"-out", config.DefaultStorePath}},
		{"out only, unclean", []string{"-out", "./data/../" + config.DefaultStorePath}},
		{"db only", []string{"-db", config.DefaultOutputPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "would overwrite the store")
		})
	}

	_, err := parseFlags([]string{"-out", "data/other.csv"}, io.Discard)
	assert.NoError(t, err)
}

func TestExportMissingStore(t *testing.T) {
	_, err := runCLI(t, "-db", filepath.Join(t.TempDir(), "missing.db"), "export")
	assert.Error(t, err)
}

func TestMigrateAndImport(t *testing.T) {
	testutil.Quiet(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "store.db")

	out, err := runCLI(t, "-db", dbPath, "migrate", "status")
	require.NoError(t, err)
	assert.Equal(t, "version 0 of 2\n", out)

	csvPath := filepath.Join(dir, "ratio.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("yt_id,music_ratio\nc1,0.5\nc2,0.7\n"), 0o644))
	out, err = runCLI(t, "-db", dbPath, "import", store.TableMusicRatio, csvPath)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 rows into annotations/yoho_musicratio\n", out)

	out, err = runCLI(t, "-db", dbPath, "migrate", "status")
	require.NoError(t, err)
	assert.Equal(t, "version 2 of 2\n", out)

	out, err = runCLI(t, "-db", dbPath, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "version 1 of 2\n", out)

	_, err = runCLI(t, "-db", dbPath, "migrate", "sideways")
	assert.True(t, errors.Is(err, errUsage))
	_, err = runCLI(t, "-db", dbPath, "import", store.TableMusicRatio)
	assert.True(t, errors.Is(err, errUsage))
}

func TestReport(t *testing.T) {
	_, dbPath := testutil.NewSeededStore(t)
	reportPath := filepath.Join(t.TempDir(), "report.html")

	out, err := runCLI(t, "-db", dbPath, "-report", reportPath, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote report for 4 pairs")

	_, err = os.Stat(reportPath)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(reportPath), "report_worker_mean.png"))
	assert.NoError(t, err)
}

func TestSniffComma(t *testing.T) {
	tests := []struct {
		data string
		want rune
	}{
		{"a;b\n1;2\n", ';'},
		{"a,b\n1;2\n", ','},
		{"a;b", ';'},
		{"", ','},
	}
	for _, tt := range tests {
		if got := sniffComma([]byte(tt.data)); got != tt.want {
			t.Errorf("sniffComma(%q) = %q, want %q", tt.data, got, tt.want)
		}
	}
}
