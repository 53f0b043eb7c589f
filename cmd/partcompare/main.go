// partcompare сравнивает два списка деталей из файлов (.csv, .xls, .xlsx)
// и выводит пары с похожими описаниями и разными номерами.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"partcompare-service/internal/compare/model"
	cmpSvc "partcompare-service/internal/compare/service"
	"partcompare-service/internal/config"
	"partcompare-service/internal/fileio"
)

type cliOptions struct {
	original, updated string
	out, format       string
	threshold         float64
	workers           int
	noPrefilter       bool
	mapA, mapB        model.Mapping
	logLevel          string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("partcompare", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o cliOptions
	o.mapA, o.mapB = model.DefaultMapping(), model.DefaultMapping()
	fs.StringVar(&o.original, "original", "", "Original parts list (.csv, .xls, .xlsx)")
	fs.StringVar(&o.updated, "new", "", "New parts list (.csv, .xls, .xlsx)")
	fs.Float64Var(&o.threshold, "threshold", model.DefaultThreshold, "Minimum description similarity, 0..1")
	fs.StringVar(&o.format, "format", "", "Output format: csv, xlsx or json (default: from -out extension, else csv)")
	fs.StringVar(&o.out, "out", "", "Output file (default: stdout)")
	fs.IntVar(&o.workers, "workers", runtime.NumCPU(), "Parallel workers over the original list")
	fs.BoolVar(&o.noPrefilter, "no-prefilter", false, "Score every pair without upper-bound pruning")
	fs.StringVar(&o.mapA.IDKey, "a-id", o.mapA.IDKey, "Part number column of the original list ('|' separates aliases)")
	fs.StringVar(&o.mapA.DescKey, "a-desc", o.mapA.DescKey, "Description column of the original list")
	fs.IntVar(&o.mapA.HeaderRow, "a-header-row", 1, "Header row of the original list (1-based)")
	fs.StringVar(&o.mapB.IDKey, "b-id", o.mapB.IDKey, "Part number column of the new list")
	fs.StringVar(&o.mapB.DescKey, "b-desc", o.mapB.DescKey, "Description column of the new list")
	fs.IntVar(&o.mapB.HeaderRow, "b-header-row", 1, "Header row of the new list (1-based)")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if o.original == "" || o.updated == "" {
		fmt.Fprintln(stderr, "both -original and -new are required")
		fs.Usage()
		return 2
	}
	if o.format == "" {
		o.format = formatFromPath(o.out)
	}
	o.format = strings.ToLower(o.format)
	if o.format != "csv" && o.format != "xlsx" && o.format != "json" {
		fmt.Fprintf(stderr, "unsupported format %q\n", o.format)
		return 2
	}
	if math.IsNaN(o.threshold) || o.threshold < 0 || o.threshold > 1 {
		fmt.Fprintf(stderr, "threshold must be within [0, 1], got %v\n", o.threshold)
		return 2
	}

	logger := config.SetupCLILogger(o.logLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := compare(ctx, o, stdout, stderr, logger); err != nil {
		logger.Error().Err(err).Msg("compare")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func compare(ctx context.Context, o cliOptions, stdout, stderr io.Writer, logger zerolog.Logger) error {
	a, err := readList(o.original, o.mapA)
	if err != nil {
		return fmt.Errorf("original list: %w", err)
	}
	b, err := readList(o.updated, o.mapB)
	if err != nil {
		return fmt.Errorf("new list: %w", err)
	}

	rep, err := cmpSvc.Run(ctx, a, b, model.Options{
		Threshold: o.threshold,
		Workers:   o.workers,
		Prefilter: !o.noPrefilter,
	})
	if err != nil {
		return err
	}
	rep.MapA, rep.MapB = o.mapA, o.mapB
	logger.Info().
		Int("rowsA", rep.Stats.OriginalRows).
		Int("rowsB", rep.Stats.ComparisonRows).
		Int("droppedA", rep.Stats.OriginalDropped).
		Int("droppedB", rep.Stats.ComparisonDropped).
		Int("compared", rep.Stats.Compared).
		Int("pruned", rep.Stats.Pruned).
		Msg("compare done")

	w := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := write(w, o.format, rep); err != nil {
		return fmt.Errorf("write %s: %w", o.format, err)
	}
	fmt.Fprintf(stderr, "%d differences found with similarity threshold of %v\n", len(rep.Results), o.threshold)
	return nil
}

func readList(path string, m model.Mapping) (model.PartDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := fileio.ReadAny(f, path, m.HeaderRow)
	if err != nil {
		return nil, err
	}
	return fileio.Records(t, m)
}

func write(w io.Writer, format string, rep model.Report) error {
	switch format {
	case "xlsx":
		return fileio.WriteXLSX(w, rep.Results)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return fileio.WriteCSV(w, rep.Results)
	}
}

func formatFromPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".xlsx":
		return "xlsx"
	case ".json":
		return "json"
	default:
		return "csv"
	}
}
