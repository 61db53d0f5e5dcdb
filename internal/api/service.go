// Package api is the transport-neutral service behind the HTTP and gRPC
// front ends.
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/plan"
	"github.com/xtding233/wishcalc/internal/pricing"
	"github.com/xtding233/wishcalc/internal/strategy"
)

// DefaultTopScenarios is how many scenarios a response carries when the
// request does not say.
const DefaultTopScenarios = 10

// ErrNoResolver is returned by Run when the service has no plan directory.
var ErrNoResolver = errors.New("api: no plan directory configured")

// Options configures a Service.
type Options struct {
	Simulation gacha.RunOptions // defaults for Trials, Seed and Workers
	Optimizer  strategy.Options
	Rates      currency.Rates
	Packs      pricing.Catalog
	Resolver   plan.Resolver // nil disables Run
	Logger     *zap.Logger
}

// Service runs simulations, optimizations and top-up plans.
type Service struct {
	opts Options
	log  *zap.Logger

	mu    sync.RWMutex
	packs pricing.Catalog
}

// NewService returns a Service. An empty pack list falls back to the default store.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Packs.Packs) == 0 {
		opts.Packs = pricing.DefaultCatalog()
	}
	if opts.Rates == (currency.Rates{}) {
		opts.Rates = currency.DefaultRates()
	}
	return &Service{opts: opts, log: opts.Logger, packs: opts.Packs}
}

// SetPacks swaps the pack catalog, e.g. after a reload.
func (s *Service) SetPacks(cat pricing.Catalog) {
	s.mu.Lock()
	s.packs = cat
	s.mu.Unlock()
}

func (s *Service) catalog() pricing.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.packs
}

// SimulateRequest is a full plan plus run options.
type SimulateRequest struct {
	gacha.Plan
	Trials       int    `json:"trials,omitempty"`
	Seed         uint64 `json:"seed,omitempty"`
	Workers      int    `json:"workers,omitempty"`
	TopScenarios int    `json:"topScenarios,omitempty"` // < 0 returns every scenario
}

// SimulateResponse wraps the aggregated result.
type SimulateResponse struct {
	*gacha.Result
	Wishes    int  `json:"wishes"`              // wishes the plan allocates
	Cancelled bool `json:"cancelled,omitempty"` // result covers only completed trials
}

// Simulate validates the plan and runs it.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	run := s.runOptions(req.Trials, req.Seed, req.Workers)
	res, err := gacha.Simulate(ctx, req.Plan, run)
	if res == nil {
		return nil, err
	}
	top := req.TopScenarios
	if top == 0 {
		top = DefaultTopScenarios
	}
	res.Scenarios = res.TopScenarios(top)
	return &SimulateResponse{Result: res, Wishes: req.Plan.Wishes(), Cancelled: err != nil}, err
}

func (s *Service) runOptions(trials int, seed uint64, workers int) gacha.RunOptions {
	run := s.opts.Simulation
	if trials > 0 {
		run.Trials = trials
	}
	if seed != 0 {
		run.Seed = seed
	}
	if workers > 0 {
		run.Workers = workers
	}
	run.Logger = s.log
	return run
}

// OptimizeRequest is the optimizer input plus search tuning.
type OptimizeRequest struct {
	strategy.Request
	ProbeTrials int    `json:"probeTrials,omitempty"`
	Step        int    `json:"step,omitempty"`
	MaxProbes   int    `json:"maxProbes,omitempty"`
	Seed        uint64 `json:"seed,omitempty"`
	Workers     int    `json:"workers,omitempty"`
}

// Optimize searches an allocation for the request's goals.
func (s *Service) Optimize(ctx context.Context, req OptimizeRequest) (*strategy.Recommendation, error) {
	opts := s.opts.Optimizer
	if req.ProbeTrials > 0 {
		opts.ProbeTrials = req.ProbeTrials
	}
	if req.Step > 0 {
		opts.Step = req.Step
	}
	if req.MaxProbes > 0 {
		opts.MaxProbes = req.MaxProbes
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}
	opts.Logger = s.log
	return strategy.Optimize(ctx, req.Request, opts)
}

// TopUpRequest asks what it costs to afford Wishes with the given wallet.
// With BudgetCents set, it also reports the most a budget can buy.
type TopUpRequest struct {
	Wallet      currency.Wallet        `json:"wallet"`
	Wishes      int                    `json:"wishes"`
	FirstTime   pricing.FirstTimeState `json:"firstTime,omitempty"`
	BudgetCents int                    `json:"budgetCents,omitempty"`
}

// TopUpResponse is the cheapest plan covering the shortfall.
type TopUpResponse struct {
	WishesOnHand int           `json:"wishesOnHand"`
	Shortfall    int           `json:"shortfallPrimogems"`
	Plan         pricing.Plan  `json:"plan"`
	Budget       *pricing.Plan `json:"budget,omitempty"`
}

// TopUp prices the Genesis Crystals needed to reach req.Wishes.
func (s *Service) TopUp(_ context.Context, req TopUpRequest) (*TopUpResponse, error) {
	if req.Wishes < 0 || req.BudgetCents < 0 {
		return nil, fmt.Errorf("%w: wishes and budgetCents must be >= 0", gacha.ErrInvalidConfiguration)
	}
	cat := s.catalog()
	resp := &TopUpResponse{
		WishesOnHand: s.opts.Rates.Wishes(req.Wallet),
		Shortfall:    s.opts.Rates.Shortfall(req.Wallet, req.Wishes),
	}
	// crystals convert 1:1 into primogems
	p, err := pricing.MinCostAtLeast(cat, resp.Shortfall, req.FirstTime)
	if err != nil {
		return nil, err
	}
	resp.Plan = p
	if req.BudgetCents > 0 {
		b, err := pricing.MaxCrystalsUnderBudget(cat, req.BudgetCents, req.FirstTime)
		if err != nil {
			return nil, err
		}
		resp.Budget = &b
	}
	return resp, nil
}

// RunResponse is the outcome of a stored plan.
type RunResponse struct {
	Mode           plan.Mode                `json:"mode"`
	Version        string                   `json:"version,omitempty"`
	Wishes         int                      `json:"wishes"`
	Simulation     *SimulateResponse        `json:"simulation,omitempty"`
	Recommendation *strategy.Recommendation `json:"recommendation,omitempty"`
	TopUp          *TopUpResponse           `json:"topUp,omitempty"` // when the plan needs more wishes than the account holds
}

// Run resolves profile/plan from the plan directory and executes it.
func (s *Service) Run(ctx context.Context, profile, name string, o plan.Overrides) (*RunResponse, error) {
	if s.opts.Resolver == nil {
		return nil, ErrNoResolver
	}
	r, err := s.opts.Resolver.Resolve(profile, name, o)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.String("profile", profile), zap.String("plan", name), zap.String("mode", string(r.Mode)))
	log.Info("running stored plan", zap.Int("wishes", r.Wishes))

	resp := &RunResponse{Mode: r.Mode, Version: r.Version, Wishes: r.Wishes}
	if r.Mode == plan.ModeStrategy {
		opts := s.opts.Optimizer
		opts.Seed = r.Run.Seed
		if r.Run.Workers > 0 {
			opts.Workers = r.Run.Workers
		}
		opts.Logger = s.log
		resp.Recommendation, err = strategy.Optimize(ctx, r.Request, opts)
		return resp, err
	}

	sim, err := s.Simulate(ctx, SimulateRequest{
		Plan:    r.Plan,
		Trials:  r.Run.Trials,
		Seed:    r.Run.Seed,
		Workers: r.Run.Workers,
	})
	resp.Simulation = sim
	if err != nil {
		return resp, err
	}
	if need := r.Plan.Wishes(); need > r.Wishes {
		wallet := r.Wallet
		if s.opts.Rates.Wishes(wallet) != r.Wishes {
			// the account states its wishes directly; price the gap alone
			wallet = currency.Wallet{IntertwinedFates: r.Wishes}
		}
		resp.TopUp, err = s.TopUp(ctx, TopUpRequest{Wallet: wallet, Wishes: need})
	}
	return resp, err
}
