package plan_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/plan"
	"github.com/xtding233/wishcalc/internal/strategy"
)

var defaults = plan.Defaults{
	Trials:  10000,
	Seed:    1,
	Workers: 2,
	Rates:   currency.DefaultRates(),
}

func TestResolve_Playground(t *testing.T) {
	dir, _ := newTree(t)
	l := plan.NewLoader(dir, defaults)

	res, err := l.Resolve("main", "mavuika", plan.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, plan.ModePlayground, res.Mode)
	assert.Equal(t, 300, res.Run.Trials)
	assert.Equal(t, uint64(7), res.Run.Seed)
	assert.Equal(t, 2, res.Run.Workers)
	// 16000/160 + 20 + 12/5
	assert.Equal(t, 122, res.Wishes)
	assert.Equal(t, 120, res.Plan.Wishes())
	assert.Equal(t, 40, res.Plan.CharacterPity.FiveStar)
	assert.True(t, res.Plan.CharacterPity.Guaranteed)
	assert.Equal(t, 2, res.Plan.Mechanics.FatePointThreshold)
	assert.False(t, res.Plan.Mechanics.LegacyFiftyFifty)
}

func TestResolve_Overrides(t *testing.T) {
	dir, _ := newTree(t)
	l := plan.NewLoader(dir, defaults)

	trials, wishes, off := 50, 999, false
	var seed uint64 = 42
	res, err := l.Resolve("main", "mavuika", plan.Overrides{
		Trials:            &trials,
		Seed:              &seed,
		Wishes:            &wishes,
		CapturingRadiance: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Run.Trials)
	assert.Equal(t, uint64(42), res.Run.Seed)
	assert.Equal(t, 999, res.Wishes)
	assert.True(t, res.Plan.Mechanics.LegacyFiftyFifty)
}

func TestResolve_Strategy(t *testing.T) {
	raw := plan.RawConfig{
		Mode: plan.ModeStrategy,
		Banners: []gacha.Banner{
			{ID: "a", Characters: []string{"Mavuika"}, Weapons: []string{"A Thousand Blazing Suns", "Starcaller's Watch"}},
		},
		Account: &plan.AccountConfig{Wallet: &currency.Wallet{IntertwinedFates: 70}},
		Income:  map[string]int{"a": 10},
		Goals: []plan.GoalConfig{
			{Banner: "a", Target: "Mavuika", Priority: "must-have"},
			{Banner: "a", Target: "A Thousand Blazing Suns", Priority: "3", EpitomizedPath: true},
		},
	}
	res, err := plan.Resolve(raw, plan.Overrides{}, defaults)
	require.NoError(t, err)

	assert.Equal(t, plan.ModeStrategy, res.Mode)
	assert.Equal(t, strategy.Budget{Initial: 70, Income: map[string]int{"a": 10}}, res.Request.Budget)
	require.Len(t, res.Request.Goals, 2)
	assert.Equal(t, strategy.MustHave, res.Request.Goals[0].Priority)
	assert.Equal(t, strategy.NiceToHave, res.Request.Goals[1].Priority)
	assert.True(t, res.Request.Goals[1].EpitomizedPath)
}

func TestResolve_ModeOverride(t *testing.T) {
	dir, _ := newTree(t)
	mode := plan.ModeStrategy
	_, err := plan.NewLoader(dir, defaults).Resolve("main", "mavuika", plan.Overrides{Mode: &mode})
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))
	assert.Contains(t, err.Error(), "goals must not be empty")
}

func TestResolve_GameRuleViolation(t *testing.T) {
	raw := plan.RawConfig{
		Banners:     []gacha.Banner{{ID: "a", Characters: []string{"Mavuika"}, Weapons: []string{"x", "y"}}},
		Allocations: []gacha.Allocation{{BannerID: "a", Target: "Furina", Wishes: 10}},
	}
	_, err := plan.Resolve(raw, plan.Overrides{}, defaults)
	require.Error(t, err)
	assert.ErrorIs(t, err, plan.ErrInvalidPlan)
	assert.ErrorIs(t, err, gacha.ErrInvalidConfiguration)
}

func TestValidateRaw_CollectsAll(t *testing.T) {
	count, workers, fate := 0, -1, 0
	raw := plan.RawConfig{
		Mode:       "arcade",
		Simulation: &plan.SimulationConfig{Count: &count, Workers: &workers},
		Mechanics:  &plan.MechanicsConfig{FatePointThreshold: &fate},
		Account:    &plan.AccountConfig{Wallet: &currency.Wallet{Primogems: -1}},
		Income:     map[string]int{"ghost": 5},
		Goals:      []plan.GoalConfig{{Banner: "a", Target: "b", Priority: "urgent"}},
	}
	err := plan.ValidateRaw(raw)
	require.Error(t, err)
	require.ErrorIs(t, err, plan.ErrInvalidPlan)
	for _, want := range []string{
		"mode must be one of",
		"banners must not be empty",
		"simulation.count",
		"simulation.workers",
		"fate_point_threshold",
		"wallet amounts",
		"income.ghost: unknown banner",
		"goals[0]: unknown priority",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
