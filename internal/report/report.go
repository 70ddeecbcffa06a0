// Package report summarises a consolidated annotation set: an HTML page of
// label counts per provenance and a PNG histogram of worker mean scores.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/shsdataset/internal/annotation"
	"github.com/banshee-data/shsdataset/internal/fsutil"
)

// Unlabeled is the category used for pairs no source labeled.
const Unlabeled = "(none)"

// HistogramBins is the bin count of the worker mean histogram.
const HistogramBins = 12

var origins = []annotation.Provenance{
	annotation.ProvenanceExpert,
	annotation.ProvenanceStaff,
	annotation.ProvenanceWorker,
	annotation.ProvenanceNone,
}

// Summary counts consolidated pairs by label and provenance.
type Summary struct {
	// Labels in display order: known labels, unknown labels sorted, then
	// Unlabeled if present.
	Labels []string
	Counts map[string]map[annotation.Provenance]int
	// WorkerMeans holds every non-null worker mean.
	WorkerMeans []float64
	Pairs       int
}

// Summarize builds a Summary over rows.
func Summarize(rows []annotation.Consolidated) *Summary {
	s := &Summary{Counts: make(map[string]map[annotation.Provenance]int), Pairs: len(rows)}
	for _, r := range rows {
		label := Unlabeled
		if r.Label != nil {
			label = *r.Label
		}
		if s.Counts[label] == nil {
			s.Counts[label] = make(map[annotation.Provenance]int)
		}
		s.Counts[label][r.Origin]++
		if r.LabelWorkerMean != nil {
			s.WorkerMeans = append(s.WorkerMeans, *r.LabelWorkerMean)
		}
	}

	var unknown []string
	for label := range s.Counts {
		if _, ok := annotation.Ordinal(label); !ok && label != Unlabeled {
			unknown = append(unknown, label)
		}
	}
	slices.Sort(unknown)
	for _, label := range annotation.Labels {
		if _, ok := s.Counts[label]; ok {
			s.Labels = append(s.Labels, label)
		}
	}
	s.Labels = append(s.Labels, unknown...)
	if _, ok := s.Counts[Unlabeled]; ok {
		s.Labels = append(s.Labels, Unlabeled)
	}
	return s
}

func originName(p annotation.Provenance) string {
	if p == annotation.ProvenanceNone {
		return "none"
	}
	return string(p)
}

// RenderHTML writes a stacked bar chart of s to w.
func RenderHTML(w io.Writer, s *Summary, title string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("pairs=%d", s.Pairs)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	bar.SetXAxis(s.Labels)
	for _, origin := range origins {
		data := make([]opts.BarData, len(s.Labels))
		total := 0
		for i, label := range s.Labels {
			n := s.Counts[label][origin]
			data[i] = opts.BarData{Value: n}
			total += n
		}
		if total == 0 {
			continue
		}
		bar.AddSeries(originName(origin), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "origin"}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "inside"}),
		)
	}

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteHistogram writes a PNG histogram of the worker mean scores.
func WriteHistogram(w io.Writer, means []float64) error {
	if len(means) == 0 {
		return fmt.Errorf("no worker mean scores to plot")
	}
	p := plot.New()
	p.Title.Text = "Worker mean score"
	p.X.Label.Text = "mean nlabel"
	p.Y.Label.Text = "pairs"

	h, err := plotter.NewHist(plotter.Values(means), HistogramBins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// HistogramPath returns the PNG path written alongside the HTML report.
func HistogramPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + "_worker_mean.png"
}

// Write renders the HTML report to htmlPath and, if any pair has a worker
// mean, the histogram to HistogramPath(htmlPath).
func Write(fsys fsutil.FileSystem, htmlPath string, s *Summary) error {
	title := "Annotation labels by origin"
	if err := fsutil.WriteAtomic(fsys, htmlPath, func(w io.Writer) error { return RenderHTML(w, s, title) }); err != nil {
		return fmt.Errorf("write %s: %w", htmlPath, err)
	}
	if len(s.WorkerMeans) == 0 {
		return nil
	}
	png := HistogramPath(htmlPath)
	if err := fsutil.WriteAtomic(fsys, png, func(w io.Writer) error { return WriteHistogram(w, s.WorkerMeans) }); err != nil {
		return fmt.Errorf("write %s: %w", png, err)
	}
	return nil
}
