package plan

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths locates the catalog, account and plan files under BaseDir.
type Paths struct {
	BaseDir string // e.g. /etc/wishcalc
}

func (p Paths) CatalogPath() string {
	return filepath.Join(p.BaseDir, "catalog.yaml")
}
func (p Paths) AccountPath(profile string) string {
	return filepath.Join(p.BaseDir, "accounts", profile+".yaml")
}
func (p Paths) PlanPath(profile, plan string) string {
	return filepath.Join(p.BaseDir, "accounts", profile, "plans", plan+".yaml")
}

// Loader reads YAML files and merges catalog <- account <- plan.
type Loader struct {
	paths    Paths
	defaults Defaults

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "profile" or "profile/plan"
}

// NewLoader creates a loader rooted at baseDir. d fills whatever the files
// leave unset.
func NewLoader(baseDir string, d Defaults) *Loader {
	return &Loader{
		paths:    Paths{BaseDir: baseDir},
		defaults: d,
		cache:    make(map[string]RawConfig),
	}
}

// Paths returns the file layout the loader reads.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges the catalog, the account and the plan
// (plan optional). The catalog and a named plan must exist; the account
// file may not.
func (l *Loader) LoadMerged(profile, plan string) (RawConfig, error) {
	key := profile
	if plan != "" {
		key += "/" + plan
	}
	l.mu.RLock()
	cfg, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	catalog, err := readYAML(l.paths.CatalogPath(), true)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read catalog: %w", err)
	}
	account, err := readYAML(l.paths.AccountPath(profile), false)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read account %s: %w", profile, err)
	}
	var planCfg RawConfig
	if plan != "" {
		if planCfg, err = readYAML(l.paths.PlanPath(profile, plan), true); err != nil {
			return RawConfig{}, fmt.Errorf("read plan %s/%s: %w", profile, plan, err)
		}
	}

	merged := mergeRaw(mergeRaw(catalog, account), planCfg)

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the cache. Call it after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// ReadFile parses a single standalone plan file.
func ReadFile(path string) (RawConfig, error) {
	return readYAML(path, true)
}

func readYAML(path string, required bool) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: set scalars and pointers in b win, non-empty
// lists in b replace a's, income maps merge key by key.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Mode != "" {
		out.Mode = b.Mode
	}
	if len(b.Banners) > 0 {
		out.Banners = append(out.Banners[:0:0], b.Banners...)
	}
	if len(b.Allocations) > 0 {
		out.Allocations = append(out.Allocations[:0:0], b.Allocations...)
	}
	if len(b.Goals) > 0 {
		out.Goals = append(out.Goals[:0:0], b.Goals...)
	}
	if len(b.Income) > 0 {
		income := maps.Clone(a.Income)
		if income == nil {
			income = make(map[string]int, len(b.Income))
		}
		maps.Copy(income, b.Income)
		out.Income = income
	}

	// account
	switch {
	case out.Account == nil && b.Account != nil:
		c := *b.Account
		out.Account = &c
	case out.Account != nil && b.Account != nil:
		c := *out.Account
		if b.Account.Wallet != nil {
			c.Wallet = b.Account.Wallet
		}
		if b.Account.Wishes != nil {
			c.Wishes = b.Account.Wishes
		}
		if b.Account.CharacterPity != nil {
			c.CharacterPity = b.Account.CharacterPity
		}
		if b.Account.WeaponPity != nil {
			c.WeaponPity = b.Account.WeaponPity
		}
		out.Account = &c
	}

	// mechanics
	switch {
	case out.Mechanics == nil && b.Mechanics != nil:
		c := *b.Mechanics
		out.Mechanics = &c
	case out.Mechanics != nil && b.Mechanics != nil:
		c := *out.Mechanics
		if b.Mechanics.CapturingRadiance != nil {
			c.CapturingRadiance = b.Mechanics.CapturingRadiance
		}
		if b.Mechanics.FatePointThreshold != nil {
			c.FatePointThreshold = b.Mechanics.FatePointThreshold
		}
		out.Mechanics = &c
	}

	// simulation
	switch {
	case out.Simulation == nil && b.Simulation != nil:
		c := *b.Simulation
		out.Simulation = &c
	case out.Simulation != nil && b.Simulation != nil:
		c := *out.Simulation
		if b.Simulation.Count != nil {
			c.Count = b.Simulation.Count
		}
		if b.Simulation.Seed != nil {
			c.Seed = b.Simulation.Seed
		}
		if b.Simulation.Workers != nil {
			c.Workers = b.Simulation.Workers
		}
		out.Simulation = &c
	}

	return out
}
