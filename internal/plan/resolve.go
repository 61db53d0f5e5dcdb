package plan

import (
	"fmt"

	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/strategy"
)

// Defaults fill what plan files leave unset; usually from the service config.
type Defaults struct {
	Trials    int
	Seed      uint64
	Workers   int
	Mechanics gacha.Mechanics
	Rates     currency.Rates
}

// Overrides carries per-request tweaks such as query parameters.
type Overrides struct {
	Mode               *Mode
	Trials             *int
	Seed               *uint64
	Workers            *int
	Wishes             *int
	CapturingRadiance  *bool
	FatePointThreshold *int
}

// Resolved is a plan ready to run.
type Resolved struct {
	Mode    Mode
	Version string
	Plan    gacha.Plan       // playground input
	Request strategy.Request // strategy input
	Run     gacha.RunOptions
	Wallet  currency.Wallet
	Wishes  int // wishes available before the first banner
}

type Resolver interface {
	// Resolve loads, merges and validates a profile's plan.
	Resolve(profile, plan string, o Overrides) (Resolved, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve implements Resolver.
func (l *Loader) Resolve(profile, plan string, o Overrides) (Resolved, error) {
	raw, err := l.LoadMerged(profile, plan)
	if err != nil {
		return Resolved{}, err
	}
	return Resolve(raw, o, l.defaults)
}

// Resolve turns a merged RawConfig into engine input, applying d for unset
// fields and o on top of everything.
func Resolve(raw RawConfig, o Overrides, d Defaults) (Resolved, error) {
	if o.Mode != nil {
		raw.Mode = *o.Mode
	}
	if err := ValidateRaw(raw); err != nil {
		return Resolved{}, err
	}

	res := Resolved{Mode: raw.Mode, Version: raw.Version}
	if res.Mode == "" {
		res.Mode = ModePlayground
	}

	res.Run = gacha.RunOptions{Trials: d.Trials, Seed: d.Seed, Workers: d.Workers}
	if s := raw.Simulation; s != nil {
		setIf(&res.Run.Trials, s.Count)
		setIf(&res.Run.Seed, s.Seed)
		setIf(&res.Run.Workers, s.Workers)
	}
	setIf(&res.Run.Trials, o.Trials)
	setIf(&res.Run.Seed, o.Seed)
	setIf(&res.Run.Workers, o.Workers)

	mech := d.Mechanics
	if m := raw.Mechanics; m != nil {
		if m.CapturingRadiance != nil {
			mech.LegacyFiftyFifty = !*m.CapturingRadiance
		}
		setIf(&mech.FatePointThreshold, m.FatePointThreshold)
	}
	if o.CapturingRadiance != nil {
		mech.LegacyFiftyFifty = !*o.CapturingRadiance
	}
	setIf(&mech.FatePointThreshold, o.FatePointThreshold)

	var char gacha.CharacterPity
	var weap gacha.WeaponPity
	if a := raw.Account; a != nil {
		if a.Wallet != nil {
			res.Wallet = *a.Wallet
		}
		setIf(&char, a.CharacterPity)
		setIf(&weap, a.WeaponPity)
	}
	res.Wishes = d.Rates.Wishes(res.Wallet)
	if raw.Account != nil {
		setIf(&res.Wishes, raw.Account.Wishes)
	}
	setIf(&res.Wishes, o.Wishes)

	res.Plan = gacha.Plan{
		Banners:       raw.Banners,
		Allocations:   raw.Allocations,
		CharacterPity: char,
		WeaponPity:    weap,
		Mechanics:     mech,
	}

	if res.Mode == ModeStrategy {
		goals := make([]strategy.Goal, len(raw.Goals))
		for i, g := range raw.Goals {
			prio, _ := strategy.ParsePriority(g.Priority) // checked by ValidateRaw
			goals[i] = strategy.Goal{
				BannerID:         g.Banner,
				Target:           g.Target,
				Priority:         prio,
				MaxConstellation: g.MaxConstellation,
				MaxRefinement:    g.MaxRefinement,
				Strategy:         g.Strategy,
				EpitomizedPath:   g.EpitomizedPath,
				Wishes:           g.Wishes,
			}
		}
		res.Request = strategy.Request{
			Banners:       raw.Banners,
			CharacterPity: char,
			WeaponPity:    weap,
			Mechanics:     mech,
			Goals:         goals,
			Budget:        strategy.Budget{Initial: res.Wishes, Income: raw.Income},
		}
		return res, nil
	}

	if err := res.Plan.Validate(); err != nil {
		return Resolved{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return res, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
