package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/shsdataset/internal/annotation"
	"github.com/banshee-data/shsdataset/internal/fsutil"
)

func row(label string, origin annotation.Provenance, mean float64) annotation.Consolidated {
	c := annotation.Consolidated{Origin: origin}
	if label != "" {
		c.Label = &label
	}
	if mean >= 0 {
		c.LabelWorkerMean = &mean
	}
	return c
}

func sample() []annotation.Consolidated {
	return []annotation.Consolidated{
		row("Version", annotation.ProvenanceStaff, -1),
		row("Version", annotation.ProvenanceWorker, 2.2),
		row("Match", annotation.ProvenanceExpert, 3),
		row("Cover", annotation.ProvenanceExpert, -1),
		row("", annotation.ProvenanceNone, 1.5),
		row("No Music", annotation.ProvenanceWorker, 0.4),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())

	assert.Equal(t, []string{"Match", "Version", "No Music", "Cover", Unlabeled}, s.Labels)
	assert.Equal(t, 1, s.Counts["Version"][annotation.ProvenanceStaff])
	assert.Equal(t, 1, s.Counts["Version"][annotation.ProvenanceWorker])
	assert.Equal(t, 1, s.Counts[Unlabeled][annotation.ProvenanceNone])
	assert.Equal(t, []float64{2.2, 3, 1.5, 0.4}, s.WorkerMeans)
	assert.Equal(t, 6, s.Pairs)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, Summarize(sample()), "Labels"))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "No Music")
	assert.Contains(t, html, "expert")
}

func TestWriteHistogram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, []float64{0, 1.5, 2, 2.5, 3}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.Error(t, WriteHistogram(&buf, nil))
}

func TestWrite(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, Write(mfs, "data/report.html", Summarize(sample())))

	assert.True(t, mfs.Exists("data/report.html"))
	assert.True(t, mfs.Exists("data/report_worker_mean.png"))

	// No worker means, no histogram.
	mfs = fsutil.NewMemoryFileSystem()
	require.NoError(t, Write(mfs, "out.html", Summarize(sample()[:1])))
	assert.True(t, mfs.Exists("out.html"))
	assert.False(t, mfs.Exists("out_worker_mean.png"))
}

func TestHistogramPath(t *testing.T) {
	assert.Equal(t, "data/shs1300_report_worker_mean.png", HistogramPath("data/shs1300_report.html"))
	assert.True(t, strings.HasSuffix(HistogramPath("report"), "_worker_mean.png"))
}
