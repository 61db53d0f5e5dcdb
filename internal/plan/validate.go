package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/wishcalc/internal/strategy"
)

// ErrInvalidPlan wraps every plan file validation failure.
var ErrInvalidPlan = errors.New("invalid plan")

// MaxTrials caps simulation.count.
const MaxTrials = 1_000_000

// ValidateRaw checks the file-level constraints of a merged RawConfig. Game
// rules (targets featured on their banner, pity bounds) are checked again by
// gacha when the plan is resolved.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	switch cfg.Mode {
	case "", ModePlayground, ModeStrategy:
	default:
		errs = append(errs, fmt.Sprintf("mode must be one of: playground, strategy (got %q)", cfg.Mode))
	}
	if len(cfg.Banners) == 0 {
		errs = append(errs, "banners must not be empty")
	}
	ids := make(map[string]bool, len(cfg.Banners))
	for _, b := range cfg.Banners {
		ids[b.ID] = true
	}

	if s := cfg.Simulation; s != nil {
		if s.Count != nil && (*s.Count < 1 || *s.Count > MaxTrials) {
			errs = append(errs, fmt.Sprintf("simulation.count must be in [1,%d]", MaxTrials))
		}
		if s.Workers != nil && *s.Workers < 0 {
			errs = append(errs, "simulation.workers must be >= 0")
		}
	}
	if m := cfg.Mechanics; m != nil && m.FatePointThreshold != nil && *m.FatePointThreshold < 1 {
		errs = append(errs, "mechanics.fate_point_threshold must be >= 1")
	}

	if a := cfg.Account; a != nil {
		if a.Wishes != nil && *a.Wishes < 0 {
			errs = append(errs, "account.wishes must be >= 0")
		}
		if w := a.Wallet; w != nil {
			if w.Primogems < 0 || w.GenesisCrystals < 0 || w.IntertwinedFates < 0 || w.Starglitter < 0 {
				errs = append(errs, "account.wallet amounts must be >= 0")
			}
		}
	}

	for id, n := range cfg.Income {
		if !ids[id] {
			errs = append(errs, fmt.Sprintf("income.%s: unknown banner", id))
		}
		if n < 0 {
			errs = append(errs, fmt.Sprintf("income.%s must be >= 0", id))
		}
	}

	switch cfg.Mode {
	case ModeStrategy:
		if len(cfg.Goals) == 0 {
			errs = append(errs, "goals must not be empty in strategy mode")
		}
	default:
		if len(cfg.Allocations) == 0 {
			errs = append(errs, "allocations must not be empty in playground mode")
		}
	}
	for i, g := range cfg.Goals {
		if _, err := strategy.ParsePriority(g.Priority); err != nil {
			errs = append(errs, fmt.Sprintf("goals[%d]: %v", i, err))
		}
		if g.Wishes < 0 {
			errs = append(errs, fmt.Sprintf("goals[%d].wishes must be >= 0", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(errs, "; "))
	}
	return nil
}
