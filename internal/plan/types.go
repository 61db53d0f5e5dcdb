// Package plan loads wish plans from YAML files and resolves them into
// simulation and optimizer input.
package plan

import (
	"github.com/xtding233/wishcalc/internal/currency"
	"github.com/xtding233/wishcalc/internal/gacha"
)

// Mode selects what a plan file asks for.
type Mode string

const (
	// ModePlayground simulates the allocations as written.
	ModePlayground Mode = "playground"
	// ModeStrategy asks the optimizer to allocate wishes to goals.
	ModeStrategy Mode = "strategy"
)

// RawConfig is one YAML file as written. Pointer fields distinguish "unset"
// from zero so that later files can override earlier ones.
type RawConfig struct {
	Version     string             `yaml:"version"`
	Notes       string             `yaml:"notes,omitempty"`
	Mode        Mode               `yaml:"mode,omitempty"`
	Banners     []gacha.Banner     `yaml:"banners,omitempty"`
	Account     *AccountConfig     `yaml:"account,omitempty"`
	Mechanics   *MechanicsConfig   `yaml:"mechanics,omitempty"`
	Simulation  *SimulationConfig  `yaml:"simulation,omitempty"`
	Allocations []gacha.Allocation `yaml:"allocations,omitempty"`
	Goals       []GoalConfig       `yaml:"goals,omitempty"`
	Income      map[string]int     `yaml:"income,omitempty"` // wishes gained before banner id
}

type AccountConfig struct {
	Wallet        *currency.Wallet     `yaml:"wallet,omitempty"`
	Wishes        *int                 `yaml:"wishes,omitempty"` // overrides the wallet conversion
	CharacterPity *gacha.CharacterPity `yaml:"character_pity,omitempty"`
	WeaponPity    *gacha.WeaponPity    `yaml:"weapon_pity,omitempty"`
}

type MechanicsConfig struct {
	CapturingRadiance  *bool `yaml:"capturing_radiance,omitempty"`
	FatePointThreshold *int  `yaml:"fate_point_threshold,omitempty"`
}

type SimulationConfig struct {
	Count   *int    `yaml:"count,omitempty"`
	Seed    *uint64 `yaml:"seed,omitempty"`
	Workers *int    `yaml:"workers,omitempty"`
}

// GoalConfig is a strategy-mode goal. Priority is a tier name or number.
type GoalConfig struct {
	Banner           string               `yaml:"banner"`
	Target           string               `yaml:"target"`
	Priority         string               `yaml:"priority"`
	MaxConstellation int                  `yaml:"max_constellation,omitempty"`
	MaxRefinement    int                  `yaml:"max_refinement,omitempty"`
	Strategy         gacha.WeaponStrategy `yaml:"strategy,omitempty"`
	EpitomizedPath   bool                 `yaml:"epitomized_path,omitempty"`
	Wishes           int                  `yaml:"wishes,omitempty"`
}
