// Command server serves the wish simulator over HTTP and gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/wishcalc/internal/api"
	"github.com/xtding233/wishcalc/internal/config"
	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/observability"
	"github.com/xtding233/wishcalc/internal/plan"
	"github.com/xtding233/wishcalc/internal/pricing"
	"github.com/xtding233/wishcalc/internal/rpc"
	"github.com/xtding233/wishcalc/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func loadPacks(path string) (pricing.Catalog, error) {
	if path == "" {
		return pricing.DefaultCatalog(), nil
	}
	return pricing.LoadCatalog(path)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	packs, err := loadPacks(cfg.Catalog.Packs)
	if err != nil {
		return err
	}
	mech := gacha.Mechanics{
		LegacyFiftyFifty:   !cfg.Mechanics.CapturingRadiance,
		FatePointThreshold: cfg.Mechanics.FatePointThreshold,
	}
	loader := plan.NewLoader(cfg.Catalog.Path, plan.Defaults{
		Trials:    cfg.Simulation.Count,
		Seed:      cfg.Simulation.Seed,
		Workers:   cfg.Simulation.Workers,
		Mechanics: mech,
		Rates:     currency.DefaultRates(),
	})
	svc := api.NewService(api.Options{
		Simulation: gacha.RunOptions{
			Trials:  cfg.Simulation.Count,
			Seed:    cfg.Simulation.Seed,
			Workers: cfg.Simulation.Workers,
		},
		Optimizer: strategy.Options{
			ProbeTrials: cfg.Optimizer.ProbeTrials,
			Step:        cfg.Optimizer.Step,
			MaxProbes:   cfg.Optimizer.MaxProbes,
			Seed:        cfg.Simulation.Seed,
			Workers:     cfg.Simulation.Workers,
		},
		Rates:    currency.DefaultRates(),
		Packs:    packs,
		Resolver: loader,
		Logger:   logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Catalog.WatchInterval > 0 {
		roots := []string{cfg.Catalog.Path}
		if cfg.Catalog.Packs != "" {
			roots = append(roots, cfg.Catalog.Packs)
		}
		w := plan.NewFileWatcher(roots, cfg.Catalog.WatchInterval, logger, func(path string) {
			if path == cfg.Catalog.Packs {
				cat, err := loadPacks(path)
				if err != nil {
					logger.Warn("pack catalog reload failed", zap.Error(err))
					return
				}
				svc.SetPacks(cat)
				return
			}
			loader.Invalidate()
		})
		g.Go(func() error {
			w.Run(ctx)
			return nil
		})
	}

	h := &handlers{svc: svc, log: logger}
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	lis, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPC.Addr(), err)
	}
	rpcSrv := rpc.NewServer(svc, logger)
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(rpcSrv.LoggingInterceptor))
	rpc.RegisterSimulatorServer(grpcSrv, rpcSrv)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	g.Go(func() error {
		logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		healthSrv.Shutdown()
		grpcSrv.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
