// Package main runs a portfolio-construction grid analysis with progress on stderr.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/config"
	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/logging"
	"github.com/Psymen/fundsimulation-sub000/internal/orchestrator"
	"github.com/Psymen/fundsimulation-sub000/internal/reporting"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/setup"
)

// options holds the parsed command line.
type options struct {
	configPath   string
	paramsPath   string
	minCompanies int
	maxCompanies int
	seedPcts     string
	simulations  int
	seed         uint64
	format       string
	output       string
	quiet        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&opts.paramsPath, "params", "", "JSON file with grid parameters (defaults when empty)")
	flag.IntVar(&opts.minCompanies, "min", 0, "Smallest portfolio size (overrides params)")
	flag.IntVar(&opts.maxCompanies, "max", 0, "Largest portfolio size (overrides params)")
	flag.StringVar(&opts.seedPcts, "seed-pcts", "", "Comma-separated seed percentages, e.g. 0,50,100 (overrides params)")
	flag.IntVar(&opts.simulations, "simulations", 0, "Realizations per cell (overrides params)")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 uses config, then the clock)")
	flag.StringVar(&opts.format, "format", "markdown", "Output format: markdown, json or csv")
	flag.StringVar(&opts.output, "output", "", "Write output to file instead of stdout")
	flag.BoolVar(&opts.quiet, "quiet", false, "Suppress progress output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run evaluates one grid. Progress goes to progressOut unless quiet.
// Storage is closed before it returns.
func run(ctx context.Context, opts options, stdout, progressOut io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log, "grid")

	params, err := loadParams(opts.paramsPath)
	if err != nil {
		return fmt.Errorf("load parameters: %w", err)
	}
	if opts.minCompanies > 0 {
		params.InvestmentCountMin = opts.minCompanies
	}
	if opts.maxCompanies > 0 {
		params.InvestmentCountMax = opts.maxCompanies
	}
	if opts.simulations > 0 {
		params.NumSimulations = opts.simulations
	}
	if opts.seedPcts != "" {
		pcts, err := parsePercentages(opts.seedPcts)
		if err != nil {
			return fmt.Errorf("parse -seed-pcts: %w", err)
		}
		params.SeedPercentages = pcts
	}
	switch opts.format {
	case "markdown", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	stores, err := setup.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer stores.Close()

	orch := orchestrator.New(orchestrator.Options{
		RunStore:    stores.Runs,
		GridStore:   stores.Grids,
		BandStore:   stores.Bands,
		GridWorkers: cfg.Simulation.GridWorkers,
		Seed:        cfg.Simulation.Seed,
		MaxWorkload: cfg.Simulation.MaxWorkload,
		Logger:      logger,
	})

	progress := func(completed, total int) {
		if opts.quiet {
			return
		}
		fmt.Fprintf(progressOut, "\r[%d/%d] cells evaluated", completed, total)
		if completed == total {
			fmt.Fprintln(progressOut)
		}
	}

	gridSeed := orch.DefaultSeed()
	if opts.seed != 0 {
		gridSeed = opts.seed
	}
	rec, err := orch.RunGridSeeded(ctx, params, gridSeed, progress)
	if err != nil {
		return fmt.Errorf("run grid: %w", err)
	}

	var rendered []byte
	switch opts.format {
	case "markdown":
		rendered = []byte(reporting.RenderGridMarkdown(reporting.BuildGridReport(rec, time.Now().UTC())))
	case "csv":
		rendered = []byte(reporting.RenderGridCSV(rec.Scenarios))
	case "json":
		if rendered, err = json.MarshalIndent(rec, "", "  "); err != nil {
			return fmt.Errorf("render output: %w", err)
		}
	}

	if opts.output == "" {
		_, err = stdout.Write(rendered)
	} else {
		err = os.WriteFile(opts.output, rendered, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// loadParams reads grid parameters from a JSON file, or returns defaults.
func loadParams(path string) (domain.GridAnalysisParameters, error) {
	params := domain.DefaultGridAnalysisParameters()
	if path == "" {
		return params, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return params, err
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("decode %s: %w", path, err)
	}
	return params, nil
}

// parsePercentages parses "0,25,50" into floats.
func parsePercentages(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
