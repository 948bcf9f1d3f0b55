// Package main renders a stored run or grid analysis as Markdown.
// With --verify it instead replays stored runs and reports whether they reproduce.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Psymen/fundsimulation-sub000/internal/config"
	"github.com/Psymen/fundsimulation-sub000/internal/logging"
	"github.com/Psymen/fundsimulation-sub000/internal/reporting"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/setup"
	"github.com/Psymen/fundsimulation-sub000/internal/verification"
)

// errDiverged is returned when a verified run did not reproduce.
var errDiverged = errors.New("stored runs diverged on replay")

// options holds the parsed command line.
type options struct {
	configPath string
	runID      string
	gridID     string
	list       int
	output     string
	verify     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&opts.runID, "run-id", "", "ID of a stored run")
	flag.StringVar(&opts.gridID, "grid-id", "", "ID of a stored grid analysis")
	flag.IntVar(&opts.list, "list", 0, "List the N most recent runs and grid analyses instead of rendering")
	flag.StringVar(&opts.output, "output", "", "Write the report to file instead of stdout")
	flag.BoolVar(&opts.verify, "verify", false, "Replay --run-id (or every stored run) and check it reproduces")
	flag.Parse()

	err := run(context.Background(), opts, os.Stdout)
	switch {
	case errors.Is(err, errDiverged):
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// validate checks flag combinations.
func (o options) validate() error {
	if o.verify && o.gridID != "" {
		return errors.New("--verify only applies to runs")
	}
	if !o.verify && o.list == 0 && (o.runID == "") == (o.gridID == "") {
		return errors.New("exactly one of --run-id or --grid-id is required (use --list N to see stored analyses)")
	}
	return nil
}

// run executes the command. Storage is closed before it returns.
func run(ctx context.Context, opts options, stdout io.Writer) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stores, err := setup.Open(ctx, cfg.Storage, logging.New(cfg.Log, "report"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer stores.Close()

	switch {
	case opts.list > 0:
		return listAnalyses(ctx, stdout, stores, opts.list)
	case opts.verify:
		return verifyRuns(ctx, stdout, stores, opts.runID, cfg.Simulation.Workers)
	}

	gen := reporting.NewGenerator(stores.Runs, stores.Grids, stores.Bands)

	var md string
	if opts.runID != "" {
		report, err := gen.RunReport(ctx, opts.runID)
		if err != nil {
			return fmt.Errorf("load run %s: %w", opts.runID, err)
		}
		md = reporting.RenderRunMarkdown(report)
	} else {
		report, err := gen.GridReport(ctx, opts.gridID)
		if err != nil {
			return fmt.Errorf("load grid analysis %s: %w", opts.gridID, err)
		}
		md = reporting.RenderGridMarkdown(report)
	}

	if opts.output == "" {
		_, err = io.WriteString(stdout, md)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stdout, "Report written to %s\n", opts.output)
	return nil
}

func listAnalyses(ctx context.Context, w io.Writer, stores *setup.Stores, limit int) error {
	runs, err := stores.Runs.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	fmt.Fprintln(w, "Runs:")
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s  median %.2fx  (%s)\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Summary.MedianMOIC, r.Fingerprint)
	}

	grids, err := stores.Grids.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list grid analyses: %w", err)
	}
	fmt.Fprintln(w, "Grid analyses:")
	for _, g := range grids {
		fmt.Fprintf(w, "  %s  %s  %d scenarios  (%s)\n",
			g.ID, g.Timestamp.Format("2006-01-02 15:04:05"), len(g.Scenarios), g.Fingerprint)
	}
	return nil
}

// verifyRuns replays one run, or all runs when runID is empty.
// Returns errDiverged when any run did not reproduce.
func verifyRuns(ctx context.Context, w io.Writer, stores *setup.Stores, runID string, workers int) error {
	v := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		RunStore: stores.Runs,
		Workers:  workers,
	})

	var results []verification.VerificationResult
	if runID != "" {
		res, err := v.VerifyRun(ctx, runID)
		if err != nil {
			return err
		}
		results = append(results, *res)
	} else {
		report, err := v.VerifyAll(ctx, 0)
		if err != nil {
			return err
		}
		results = report.Results
	}

	ok := true
	for _, r := range results {
		if r.Match {
			fmt.Fprintf(w, "  OK        %s  median %.4fx\n", r.RunID, r.StoredMedianMOIC)
			continue
		}
		ok = false
		fmt.Fprintf(w, "  DIVERGED  %s\n", r.RunID)
		for _, d := range r.Divergences {
			fmt.Fprintf(w, "            %s: stored %v, replayed %v\n", d.Field, d.Expected, d.Actual)
		}
	}
	fmt.Fprintf(w, "%d verified, ok=%t\n", len(results), ok)
	if !ok {
		return errDiverged
	}
	return nil
}
