// Command shsdataset consolidates the SHS-YouTube annotation snapshot and
// exports the flat dataset file.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/shsdataset/internal/annotation"
	"github.com/banshee-data/shsdataset/internal/config"
	"github.com/banshee-data/shsdataset/internal/dataset"
	"github.com/banshee-data/shsdataset/internal/fsutil"
	"github.com/banshee-data/shsdataset/internal/report"
	"github.com/banshee-data/shsdataset/internal/store"
	"github.com/banshee-data/shsdataset/internal/version"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatalf("shsdataset: %v", err)
	}
}

// options holds the parsed command line.
type options struct {
	cfg     *config.Config
	listen  string
	version bool
	args    []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("shsdataset", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: shsdataset [flags] [command]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  export                  build the dataset file (default)\n")
		fmt.Fprintf(stderr, "  import <table> <file>   load a delimited file into a store table\n")
		fmt.Fprintf(stderr, "  migrate up|down|status  manage the store schema\n")
		fmt.Fprintf(stderr, "  report                  write the label summary report\n")
		fmt.Fprintf(stderr, "  runs                    list recorded exports as JSON\n")
		fmt.Fprintf(stderr, "  inspect                 serve a SQL console over the store\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	var (
		configPath = fs.String("config", "", "Path to a JSON or YAML config file")
		dbPath     = fs.String("db", config.DefaultStorePath, "Path to the annotation store")
		outPath    = fs.String("out", config.DefaultOutputPath, "Path of the exported dataset")
		reportPath = fs.String("report", config.DefaultReportPath, "Path of the HTML report")
		tertiary   = fs.Bool("tertiary", false, "Collapse Match into Version (three classes)")
		lean       = fs.Bool("lean", true, "Only export label, nlabel and origin annotation columns")
		listen     = fs.String("listen", "localhost:8090", "Listen address for inspect")
		showVer    = fs.Bool("version", false, "Print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags given explicitly win over the config file.
	flagCfg := config.Empty()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			flagCfg.StorePath = config.String(*dbPath)
		case "out":
			flagCfg.OutputPath = config.String(*outPath)
		case "report":
			flagCfg.ReportPath = config.String(*reportPath)
		case "tertiary":
			flagCfg.Tertiary = config.Bool(*tertiary)
		case "lean":
			flagCfg.Lean = config.Bool(*lean)
		}
	})
	cfg = cfg.Override(flagCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &options{cfg: cfg, listen: *listen, version: *showVer, args: fs.Args()}, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	command, rest := "export", []string(nil)
	if len(opts.args) > 0 {
		command, rest = opts.args[0], opts.args[1:]
	}

	switch command {
	case "export":
		return runExport(ctx, opts.cfg, stdout)
	case "import":
		return runImport(ctx, opts.cfg, rest, stdout)
	case "migrate":
		return runMigrate(opts.cfg, rest, stdout)
	case "report":
		return runReport(ctx, opts.cfg, stdout)
	case "runs":
		return runRuns(ctx, opts.cfg, stdout)
	case "inspect":
		return runInspect(ctx, opts.cfg, opts.listen)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.GetStorePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("store %s: %w", path, err)
	}
	return store.Open(path)
}

func runExport(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := dataset.Options{Tertiary: cfg.GetTertiary(), Lean: cfg.GetLean()}
	log.Printf("Building dataset from %s (tertiary=%t lean=%t)", s.Path(), opts.Tertiary, opts.Lean)
	res, err := dataset.Build(ctx, s, opts)
	if err != nil {
		return err
	}

	out := cfg.GetOutputPath()
	if err := dataset.ExportFile(fsutil.OSFileSystem{}, out, res.Table); err != nil {
		return err
	}

	manifest := &store.Run{
		Tertiary:       opts.Tertiary,
		Lean:           opts.Lean,
		PairCount:      res.Stats.Pairs,
		RowCount:       res.Stats.Rows,
		UnlabeledCount: res.Stats.Unlabeled,
		OutputPath:     out,
	}
	if err := s.RecordRun(ctx, manifest); err != nil {
		log.Printf("Warning: failed to record run: %v", err)
	}

	fmt.Fprintf(stdout, "wrote %d rows (%d pairs, %d unlabeled, %d without similarity) to %s\n",
		res.Stats.Rows, res.Stats.Pairs, res.Stats.Unlabeled, res.Stats.DroppedNoSimilarity, out)
	return nil
}

// sniffComma picks ';' when the header line has one, ',' otherwise.
func sniffComma(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.IndexByte(header, ';') >= 0 {
		return ';'
	}
	return ','
}

func runImport(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: import <table> <file>", errUsage)
	}
	table, file := args[0], args[1]

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	// Importing creates the store if needed.
	s, err := store.Open(cfg.GetStorePath())
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.MigrateUp(); err != nil {
		return err
	}

	n, err := s.ImportCSV(ctx, table, bytes.NewReader(data), sniffComma(data))
	if err != nil {
		return fmt.Errorf("import %s into %s: %w", file, table, err)
	}
	fmt.Fprintf(stdout, "imported %d rows into %s\n", n, table)
	return nil
}

func runMigrate(cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: migrate up|down|status", errUsage)
	}

	s, err := store.Open(cfg.GetStorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	switch args[0] {
	case "up":
		log.Printf("Running migrations...")
		if err := s.MigrateUp(); err != nil {
			return err
		}
	case "down":
		log.Printf("Rolling back one migration...")
		if err := s.MigrateDown(); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("%w: unknown migrate action %q", errUsage, args[0])
	}

	current, dirty, err := s.MigrateVersion()
	if err != nil {
		return err
	}
	latest, err := store.LatestMigrationVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "version %d of %d", current, latest)
	if dirty {
		fmt.Fprint(stdout, " (dirty)")
	}
	fmt.Fprintln(stdout)
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	rows, err := annotation.Annotate(snap, cfg.GetTertiary())
	if err != nil {
		return err
	}

	path := cfg.GetReportPath()
	if err := report.Write(fsutil.OSFileSystem{}, path, report.Summarize(rows)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote report for %d pairs to %s\n", len(rows), path)
	return nil
}

func runRuns(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

func runInspect(ctx context.Context, cfg *config.Config, listen string) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	mux := http.NewServeMux()
	if err := s.AttachInspector(mux); err != nil {
		return err
	}
	mux.Handle("/", http.RedirectHandler("/debug/", http.StatusFound))

	srv := &http.Server{Addr: listen, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	log.Printf("Inspecting %s at http://%s/debug/", s.Path(), listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
