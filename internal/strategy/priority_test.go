package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/wishcalc/internal/strategy"
)

func TestPriorityThresholds(t *testing.T) {
	assert.Equal(t, 0.99, strategy.MustHave.Threshold())
	assert.Equal(t, 0.90, strategy.Want.Threshold())
	assert.Equal(t, 0.70, strategy.NiceToHave.Threshold())
	assert.Zero(t, strategy.Skip.Threshold())
	assert.Panics(t, func() { strategy.Priority(9).Threshold() })
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]strategy.Priority{
		"1":            strategy.MustHave,
		"Must-Have":    strategy.MustHave,
		" want ":       strategy.Want,
		"nice_to_have": strategy.NiceToHave,
		"4":            strategy.Skip,
	} {
		got, err := strategy.ParsePriority(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.NotEmpty(t, got.String())
	}
	_, err := strategy.ParsePriority("urgent")
	assert.Error(t, err)
	assert.Equal(t, "Priority(7)", strategy.Priority(7).String())
}
