package gacha_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/xtding233/wishcalc/internal/gacha"
)

func TestRates_HardPity(t *testing.T) {
	assert.Equal(t, 1.0, gacha.CharacterFiveStarRate(89))
	assert.Equal(t, 1.0, gacha.WeaponFiveStarRate(77))
	assert.Equal(t, 1.0, gacha.CharacterFourStarRate(10))
	assert.Equal(t, 1.0, gacha.WeaponFourStarRate(10))
}

func TestRates_KnownValues(t *testing.T) {
	assert.Equal(t, 0.006, gacha.CharacterFiveStarRate(0))
	assert.Equal(t, 0.006, gacha.CharacterFiveStarRate(72))
	assert.InDelta(t, 0.066, gacha.CharacterFiveStarRate(73), 1e-12)
	assert.InDelta(t, 0.006+16*0.06, gacha.CharacterFiveStarRate(88), 1e-12)

	assert.Equal(t, 0.007, gacha.WeaponFiveStarRate(62))
	assert.InDelta(t, 0.077, gacha.WeaponFiveStarRate(63), 1e-12)

	assert.Equal(t, 0.051, gacha.CharacterFourStarRate(9))
}

func TestRates_NegativePityPanics(t *testing.T) {
	assert.Panics(t, func() { gacha.CharacterFiveStarRate(-1) })
}

func TestRates_BoundedAndMonotone(t *testing.T) {
	curves := map[string]func(int) float64{
		"character5": gacha.CharacterFiveStarRate,
		"character4": gacha.CharacterFourStarRate,
		"weapon5":    gacha.WeaponFiveStarRate,
		"weapon4":    gacha.WeaponFourStarRate,
	}
	for name, rate := range curves {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				pity := rapid.IntRange(0, 200).Draw(rt, "pity")
				p, next := rate(pity), rate(pity+1)
				assert.GreaterOrEqual(rt, p, 0.0)
				assert.LessOrEqual(rt, p, 1.0)
				assert.GreaterOrEqual(rt, next, p, "rate must not decrease with pity")
			})
		})
	}
}
