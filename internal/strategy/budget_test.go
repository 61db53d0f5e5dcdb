package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/xtding233/wishcalc/internal/strategy"
)

func TestScaleToBudget_Proportional(t *testing.T) {
	out, changed := strategy.ScaleToBudget([]int{100, 300}, []int{0, 0}, []int{200})
	assert.True(t, changed)
	assert.Equal(t, []int{50, 150}, out)
}

func TestScaleToBudget_WithinBudgetUntouched(t *testing.T) {
	in := []int{40, 60, 80}
	out, changed := strategy.ScaleToBudget(in, []int{0, 1, 1}, []int{50, 200})
	assert.False(t, changed)
	assert.Equal(t, in, out)
}

// TestScaleToBudget_NeverOverdraws checks that no prefix of the banner
// sequence spends more than it has.
func TestScaleToBudget_NeverOverdraws(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		nb := rapid.IntRange(1, 5).Draw(rt, "banners")
		caps := make([]int, nb)
		run := 0
		for i := range caps {
			run += rapid.IntRange(0, 200).Draw(rt, "income")
			caps[i] = run
		}
		n := rapid.IntRange(0, 8).Draw(rt, "targets")
		wishes := make([]int, n)
		banner := make([]int, n)
		for k := range wishes {
			wishes[k] = rapid.IntRange(0, 400).Draw(rt, "wishes")
			banner[k] = rapid.IntRange(0, nb-1).Draw(rt, "banner")
		}

		out, _ := strategy.ScaleToBudget(wishes, banner, caps)
		cum := 0
		for i := range caps {
			for k, b := range banner {
				if b == i {
					cum += out[k]
				}
			}
			assert.LessOrEqual(rt, cum, caps[i])
		}
		for k := range out {
			assert.GreaterOrEqual(rt, out[k], 0)
			assert.LessOrEqual(rt, out[k], wishes[k])
		}
	})
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 0.99, strategy.MustHave.Threshold())
	assert.Equal(t, 0.90, strategy.Want.Threshold())
	assert.Equal(t, 0.70, strategy.NiceToHave.Threshold())
	assert.Equal(t, 0.0, strategy.Skip.Threshold())

	p, err := strategy.ParsePriority("must-have")
	assert.NoError(t, err)
	assert.Equal(t, strategy.MustHave, p)
	p, err = strategy.ParsePriority("3")
	assert.NoError(t, err)
	assert.Equal(t, strategy.NiceToHave, p)
	_, err = strategy.ParsePriority("whenever")
	assert.Error(t, err)
}

func TestBudget_Total(t *testing.T) {
	b := strategy.Budget{Initial: 20, Income: map[string]int{"a": 40, "b": 15}}
	assert.Equal(t, 75, b.Total())
}
