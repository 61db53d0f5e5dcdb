// Command wishsim runs a wish plan from YAML and prints its statistics.
//
//	wishsim -file plan.yaml
//	wishsim -dir ./config -profile main -plan mavuika -trials 50000
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/xtding233/wishcalc/internal/api"
	"github.com/xtding233/wishcalc/internal/config"
	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/observability"
	"github.com/xtding233/wishcalc/internal/plan"
	"github.com/xtding233/wishcalc/internal/strategy"
)

// fileResolver resolves a single standalone plan file.
type fileResolver struct {
	path     string
	defaults plan.Defaults
}

func (f fileResolver) Resolve(_, _ string, o plan.Overrides) (plan.Resolved, error) {
	raw, err := plan.ReadFile(f.path)
	if err != nil {
		return plan.Resolved{}, err
	}
	return plan.Resolve(raw, o, f.defaults)
}

func main() {
	var (
		file     = flag.String("file", "", "standalone plan file")
		dir      = flag.String("dir", "", "plan directory with catalog.yaml and accounts/")
		profile  = flag.String("profile", "main", "account profile under -dir")
		name     = flag.String("plan", "", "plan name under the profile")
		mode     = flag.String("mode", "", "override the plan mode: playground or strategy")
		trials   = flag.Int("trials", 0, "number of trials (0 = plan or default)")
		seed     = flag.Uint64("seed", 0, "random seed (0 = plan or fresh)")
		workers  = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		top      = flag.Int("top", api.DefaultTopScenarios, "scenarios to print")
		asJSON   = flag.Bool("json", false, "print JSON instead of a report")
		logLevel = flag.String("log-level", "warn", "debug, info, warn or error")
	)
	flag.Parse()

	if (*file == "") == (*dir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -dir is required")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	defaults := plan.Defaults{
		Trials:    gacha.DefaultTrials,
		Mechanics: gacha.Mechanics{FatePointThreshold: gacha.DefaultFatePointThreshold},
		Rates:     currency.DefaultRates(),
	}
	var resolver plan.Resolver = fileResolver{path: *file, defaults: defaults}
	if *dir != "" {
		resolver = plan.NewLoader(*dir, defaults)
	}
	svc := api.NewService(api.Options{
		Optimizer: strategy.Options{Workers: *workers},
		Resolver:  resolver,
		Logger:    logger,
	})

	var o plan.Overrides
	if *mode != "" {
		m := plan.Mode(*mode)
		o.Mode = &m
	}
	if *trials > 0 {
		o.Trials = trials
	}
	if *seed != 0 {
		o.Seed = seed
	}
	if *workers > 0 {
		o.Workers = workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := svc.Run(ctx, *profile, *name, o)
	if err != nil && !(resp != nil && errors.Is(err, context.Canceled)) {
		logger.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "wishsim: %v\n", err)
		os.Exit(1)
	}
	if resp.Simulation != nil {
		resp.Simulation.Scenarios = resp.Simulation.TopScenarios(*top)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}
	printRun(os.Stdout, resp)
}
