package gacha

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTrials is the simulation count used when none is given.
const DefaultTrials = 10000

// RunOptions controls a Monte Carlo run.
type RunOptions struct {
	Trials  int    // <= 0 means DefaultTrials
	Seed    uint64 // 0 means a fresh seed from crypto/rand
	Workers int    // <= 0 means GOMAXPROCS
	Logger  *zap.Logger
}

func (o RunOptions) normalize() RunOptions {
	if o.Trials <= 0 {
		o.Trials = DefaultTrials
	}
	if o.Seed == 0 {
		o.Seed = NewSeed()
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Workers > o.Trials {
		o.Workers = o.Trials
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Run executes the trials across a pool of workers. Trial i always uses
// random stream i of the seed, so a run is reproducible for a given seed
// whatever the worker count.
//
// Cancelling ctx stops the workers between trials. The returned result then
// covers every completed trial and the error is the context's error.
func (s *Simulator) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	opts = opts.normalize()
	log := opts.Logger.With(zap.Uint64("seed", opts.Seed))
	start := time.Now()
	log.Info("simulation started",
		zap.Int("trials", opts.Trials),
		zap.Int("workers", opts.Workers),
		zap.Int("targets", len(s.targets)),
	)

	tallies := make([]*Tally, opts.Workers)
	chunk := (opts.Trials + opts.Workers - 1) / opts.Workers
	var g errgroup.Group
	for w := 0; w < opts.Workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, opts.Trials)
		g.Go(func() error {
			tallies[w] = s.runRange(ctx, opts.Seed, lo, hi)
			log.Debug("worker finished",
				zap.Int("worker", w),
				zap.Int("trials", tallies[w].Trials()),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation workers: %w", err)
	}

	total := NewTally(len(s.targets))
	for _, t := range tallies {
		total.Merge(t)
	}
	res := total.Result(s.targets)
	res.Seed = opts.Seed

	err := ctx.Err()
	log.Info("simulation finished",
		zap.Int("completed", res.Trials),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("cancelled", err != nil),
	)
	return res, err
}

// runRange runs trials [lo, hi) and stops early once ctx is done.
func (s *Simulator) runRange(ctx context.Context, seed uint64, lo, hi int) *Tally {
	t := NewTally(len(s.targets))
	rng := NewStreamRNG(seed)
	for i := lo; i < hi; i++ {
		select {
		case <-ctx.Done():
			return t
		default:
		}
		rng.Stream(uint64(i))
		t.Add(i, s.Trial(rng))
	}
	return t
}

// Simulate validates the plan and runs it in one call.
func Simulate(ctx context.Context, p Plan, opts RunOptions) (*Result, error) {
	s, err := NewSimulator(p)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, opts)
}
