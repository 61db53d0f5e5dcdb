package pricing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func allFirst(cat Catalog) FirstTimeState {
	st := FirstTimeState{}
	for _, p := range cat.Packs {
		st[p.ID] = true
	}
	return st
}

func TestMinCostAtLeast_UsesFirstTimeDouble(t *testing.T) {
	cat := DefaultCatalog()
	plan, err := MinCostAtLeast(cat, 100, allFirst(cat))
	require.NoError(t, err)
	assert.Equal(t, 99, plan.TotalCents)
	assert.Equal(t, 120, plan.TotalCrystals)
	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "60#x2", plan.Purchases[0].PackID)
}

func TestMinCostAtLeast_RegularOnly(t *testing.T) {
	plan, err := MinCostAtLeast(DefaultCatalog(), 100, nil)
	require.NoError(t, err)
	assert.Equal(t, 198, plan.TotalCents)
	assert.Equal(t, 120, plan.TotalCrystals)
}

func TestMinCostAtLeast_FirstTimeBoughtOnce(t *testing.T) {
	cat := Catalog{Currency: "USD", Packs: []Pack{
		{ID: "60", Name: "60", Crystals: 60, FirstTimeX2: true, PriceCents: 99},
	}}
	plan, err := MinCostAtLeast(cat, 300, allFirst(cat))
	require.NoError(t, err)
	qty := map[string]int{}
	for _, p := range plan.Purchases {
		qty[p.PackID] = p.Qty
	}
	assert.Equal(t, 1, qty["60#x2"])
	assert.Equal(t, 3, qty["60"])
	assert.Equal(t, 300, plan.TotalCrystals)
	assert.Equal(t, 4*99, plan.TotalCents)
}

func TestMinCostAtLeast_ZeroTarget(t *testing.T) {
	plan, err := MinCostAtLeast(DefaultCatalog(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Purchases)
	assert.Equal(t, "USD", plan.Currency)
}

func TestMinCostAtLeast_Covers(t *testing.T) {
	cat := DefaultCatalog()
	rapid.Check(t, func(t *rapid.T) {
		target := rapid.IntRange(1, 20000).Draw(t, "target")
		first := FirstTimeState{}
		for _, p := range cat.Packs {
			first[p.ID] = rapid.Bool().Draw(t, "first_"+p.ID)
		}
		plan, err := MinCostAtLeast(cat, target, first)
		require.NoError(t, err)
		require.GreaterOrEqual(t, plan.TotalCrystals, target)

		sum, crystals := 0, 0
		for _, p := range plan.Purchases {
			sum += p.Subtotal
			crystals += p.UnitYield * p.Qty
			if strings.HasSuffix(p.PackID, "#x2") {
				require.Equal(t, 1, p.Qty, p.PackID)
				require.True(t, first[strings.TrimSuffix(p.PackID, "#x2")])
			}
		}
		require.Equal(t, plan.SubCents, sum)
		require.Equal(t, plan.TotalCrystals, crystals)
	})
}

func TestMaxCrystalsUnderBudget(t *testing.T) {
	cat := DefaultCatalog()

	plan, err := MaxCrystalsUnderBudget(cat, 998, nil)
	require.NoError(t, err)
	assert.Equal(t, 660, plan.TotalCrystals)
	assert.LessOrEqual(t, plan.TotalCents, 998)

	plan, err = MaxCrystalsUnderBudget(cat, 998, allFirst(cat))
	require.NoError(t, err)
	assert.Equal(t, 960, plan.TotalCrystals)
	assert.LessOrEqual(t, plan.TotalCents, 998)
}

func TestMaxCrystalsUnderBudget_Tax(t *testing.T) {
	cat := DefaultCatalog()
	cat.TaxRate = 0.1

	plan, err := MaxCrystalsUnderBudget(cat, 109, nil)
	require.NoError(t, err)
	assert.Equal(t, 60, plan.TotalCrystals)
	assert.Equal(t, 10, plan.TaxCents)
	assert.Equal(t, 109, plan.TotalCents)

	plan, err = MaxCrystalsUnderBudget(cat, 50, nil)
	require.NoError(t, err)
	assert.Zero(t, plan.TotalCrystals)
}

func TestEmptyCatalog(t *testing.T) {
	_, err := MinCostAtLeast(Catalog{}, 10, nil)
	assert.True(t, errors.Is(err, ErrNoPacks))
	_, err = MaxCrystalsUnderBudget(Catalog{}, 10, nil)
	assert.True(t, errors.Is(err, ErrNoPacks))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "packs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`currency: CAD
tax_rate: 0.13
packs:
  - id: "60"
    name: 60 Genesis Crystals
    crystals: 60
    first_time_x2: true
    price_cents: 139
`), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "CAD", cat.Currency)
	assert.InDelta(t, 0.13, cat.TaxRate, 1e-9)
	require.Len(t, cat.Packs, 1)
	assert.True(t, cat.Packs[0].FirstTimeX2)
	assert.Equal(t, 139, cat.Packs[0].PriceCents)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("currency: CAD\n"), 0o644))
	_, err = LoadCatalog(empty)
	assert.ErrorIs(t, err, ErrNoPacks)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
