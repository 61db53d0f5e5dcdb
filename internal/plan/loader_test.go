package plan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/wishcalc/internal/plan"
)

const catalogYAML = `version: "5.3"
banners:
  - id: 5.3-phase1
    characters: [Mavuika, Citlali]
    weapons: [A Thousand Blazing Suns, Starcaller's Watch]
  - id: 5.3-phase2
    characters: [Arlecchino, Clorinde]
    weapons: [Crimson Moon's Semblance, Absolution]
simulation:
  count: 500
  seed: 7
`

const accountYAML = `account:
  wallet:
    primogems: 16000
    intertwined_fates: 20
    starglitter: 12
  character_pity:
    five_star: 40
    guaranteed: true
mechanics:
  fate_point_threshold: 2
`

const planYAML = `notes: mavuika first
mode: playground
allocations:
  - banner: 5.3-phase1
    target: Mavuika
    wishes: 80
  - banner: 5.3-phase2
    target: Crimson Moon's Semblance
    wishes: 40
    epitomized_path: true
    strategy: continue
simulation:
  count: 300
income:
  5.3-phase2: 25
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTree(t *testing.T) (string, plan.Paths) {
	t.Helper()
	dir := t.TempDir()
	p := plan.Paths{BaseDir: dir}
	writeFile(t, p.CatalogPath(), catalogYAML)
	writeFile(t, p.AccountPath("main"), accountYAML)
	writeFile(t, p.PlanPath("main", "mavuika"), planYAML)
	return dir, p
}

func TestLoadMerged_Layers(t *testing.T) {
	dir, _ := newTree(t)
	l := plan.NewLoader(dir, plan.Defaults{})

	raw, err := l.LoadMerged("main", "mavuika")
	require.NoError(t, err)

	assert.Equal(t, "5.3", raw.Version)
	assert.Equal(t, "mavuika first", raw.Notes)
	assert.Equal(t, plan.ModePlayground, raw.Mode)
	require.Len(t, raw.Banners, 2)
	require.Len(t, raw.Allocations, 2)
	assert.True(t, raw.Allocations[1].EpitomizedPath)

	require.NotNil(t, raw.Simulation)
	assert.Equal(t, 300, *raw.Simulation.Count, "plan overrides catalog")
	assert.Equal(t, uint64(7), *raw.Simulation.Seed, "catalog value survives")

	require.NotNil(t, raw.Account)
	assert.Equal(t, 16000, raw.Account.Wallet.Primogems)
	assert.Equal(t, 40, raw.Account.CharacterPity.FiveStar)
	assert.Equal(t, 25, raw.Income["5.3-phase2"])
}

func TestLoadMerged_OptionalFiles(t *testing.T) {
	dir, _ := newTree(t)
	l := plan.NewLoader(dir, plan.Defaults{})

	raw, err := l.LoadMerged("nobody", "")
	require.NoError(t, err)
	assert.Nil(t, raw.Account)
	assert.Len(t, raw.Banners, 2)

	_, err = l.LoadMerged("main", "nope")
	assert.ErrorIs(t, err, os.ErrNotExist, "named plan is required")

	_, err = plan.NewLoader(t.TempDir(), plan.Defaults{}).LoadMerged("main", "")
	assert.ErrorIs(t, err, os.ErrNotExist, "catalog is required")
}

func TestLoadMerged_CacheAndInvalidate(t *testing.T) {
	dir, p := newTree(t)
	l := plan.NewLoader(dir, plan.Defaults{})

	_, err := l.LoadMerged("main", "mavuika")
	require.NoError(t, err)

	writeFile(t, p.PlanPath("main", "mavuika"), "notes: changed\nallocations:\n  - banner: 5.3-phase1\n    target: Citlali\n    wishes: 10\n")
	raw, err := l.LoadMerged("main", "mavuika")
	require.NoError(t, err)
	assert.Equal(t, "mavuika first", raw.Notes, "served from cache")

	l.Invalidate()
	raw, err = l.LoadMerged("main", "mavuika")
	require.NoError(t, err)
	assert.Equal(t, "changed", raw.Notes)
	require.Len(t, raw.Allocations, 1)
	assert.Equal(t, "Citlali", raw.Allocations[0].Target)
}

func TestLoadMerged_BadYAML(t *testing.T) {
	dir, p := newTree(t)
	writeFile(t, p.PlanPath("main", "broken"), "allocations: [oops\n")
	_, err := plan.NewLoader(dir, plan.Defaults{}).LoadMerged("main", "broken")
	assert.Error(t, err)
}
