// Package main runs one portfolio analysis and prints its report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
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
	configPath  string
	paramsPath  string
	fundSize    float64
	companies   int
	seedPct     float64
	simulations int
	withFees    bool
	seed        uint64
	format      string
	output      string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&opts.paramsPath, "params", "", "JSON file with portfolio parameters (defaults when empty)")
	flag.Float64Var(&opts.fundSize, "fund-size", 0, "Fund size in dollars (overrides params)")
	flag.IntVar(&opts.companies, "companies", 0, "Number of portfolio companies (overrides params)")
	flag.Float64Var(&opts.seedPct, "seed-pct", -1, "Share of companies entered at seed, 0-100 (overrides params)")
	flag.IntVar(&opts.simulations, "simulations", 0, "Number of realizations (overrides params)")
	flag.BoolVar(&opts.withFees, "fees", false, "Apply default 2/20 fee terms when params carry none")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 uses config, then the clock)")
	flag.StringVar(&opts.format, "format", "markdown", "Output format: markdown or json")
	flag.StringVar(&opts.output, "output", "", "Write output to file instead of stdout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one analysis. Storage is closed before it returns.
func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log, "simulate")

	params, err := loadParams(opts.paramsPath)
	if err != nil {
		return fmt.Errorf("load parameters: %w", err)
	}
	if opts.fundSize > 0 {
		params.FundSize = opts.fundSize
	}
	if opts.companies > 0 {
		params.NumCompanies = opts.companies
	}
	if opts.seedPct >= 0 {
		params.SeedPercentage = opts.seedPct
	}
	if opts.simulations > 0 {
		params.NumSimulations = opts.simulations
	}
	if opts.withFees && params.FeeStructure == nil {
		fs := domain.DefaultFeeStructure()
		params.FeeStructure = &fs
	}
	if opts.format != "markdown" && opts.format != "json" {
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
		Workers:     cfg.Simulation.Workers,
		Seed:        cfg.Simulation.Seed,
		MaxWorkload: cfg.Simulation.MaxWorkload,
		Logger:      logger,
	})

	runSeed := orch.DefaultSeed()
	if opts.seed != 0 {
		runSeed = opts.seed
	}
	out, err := orch.RunSeeded(ctx, params, runSeed)
	if err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}
	for _, e := range out.Errors {
		logger.Warn().Str("error", e).Msg("run completed with errors")
	}

	var rendered []byte
	if opts.format == "json" {
		rendered, err = json.MarshalIndent(out.Record, "", "  ")
	} else {
		var report *reporting.RunReport
		report, err = reporting.BuildRunReport(out.Record, out.Bands, time.Now().UTC())
		if err == nil {
			rendered = []byte(reporting.RenderRunMarkdown(report))
		}
	}
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	if err := writeOutput(stdout, opts.output, rendered); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// loadParams reads portfolio parameters from a JSON file, or returns defaults.
func loadParams(path string) (domain.PortfolioParameters, error) {
	params := domain.DefaultPortfolioParameters()
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

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
