package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CPIReg/internal/di"
	"CPIReg/internal/domain/models"
	"CPIReg/internal/usecase"
	"CPIReg/pkg/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("regress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config/config.yaml", "config file path")
	live := fs.Bool("live", false, "fetch the index from the live provider (default: on when BLS_API_KEY is set)")
	perfPath := fs.String("performance", "", "performance CSV/XLSX path (default from config)")
	out := fs.String("out", "", "output PNG path (default from config)")
	start := fs.Int("start", 0, "first year for live data (default from config)")
	end := fs.Int("end", 0, "last year for live data (default from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	// stdout carries the summary.
	cfg.Logging.Output = "stderr"

	liveSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "live" {
			liveSet = true
		}
	})
	if !liveSet {
		*live = cfg.HasAPIKey()
	}
	r := models.DateRange{StartYear: cfg.Provider.StartYear, EndYear: cfg.Provider.EndYear}
	if *start != 0 {
		r.StartYear = *start
	}
	if *end != 0 {
		r.EndYear = *end
	}
	if *perfPath == "" {
		*perfPath = cfg.Performance.Path
	}
	if *out == "" {
		*out = cfg.Report.OutputPath
	}

	reg, err := di.InitializeRegressor(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer reg.Close()

	index := models.ResolveIndexSource(*live, cfg.Provider.APIKey, r)
	if *live && index.Kind != models.IndexSourceLive {
		fmt.Fprintln(stderr, "BLS_API_KEY not set; using sample CPI data")
	}
	perf := usecase.DefaultPerformanceSource(*perfPath, cfg.Performance.SyntheticFallback)
	if perf.Kind == models.PerformanceSourceSynthetic {
		fmt.Fprintf(stderr, "%s not found; using synthetic performance data\n", *perfPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := reg.Service.Run(ctx, usecase.Input{Index: index, Performance: perf})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*out, rep.Plot, 0o644); err != nil {
		fmt.Fprintf(stderr, "error: write plot: %v\n", err)
		return 1
	}

	fmt.Fprint(stdout, rep.Summary)
	fmt.Fprintf(stdout, "Plot saved to %s\n", *out)
	return 0
}
