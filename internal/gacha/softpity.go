package gacha

// SoftPity describes one rarity's rate curve as a function of pity, the
// number of pulls since that rarity was last obtained.
// Example: Base=0.006, SoftStart=73, Step=0.06, Hard=89 gives 0.6% up to pity
// 72, 6.6% at 73, +6% per pull after that and a guaranteed hit at pity 89.
type SoftPity struct {
	Base      float64 // rate before the ramp
	SoftStart int     // first pity value on the ramp; 0 disables the ramp
	Step      float64 // rate added per pull on the ramp
	Hard      int     // pity value at which the hit is guaranteed
}

// Rate returns the hit probability for the next pull at the given pity.
// The result is clamped to [0,1]. A negative pity is a caller bug and panics.
func (s SoftPity) Rate(pity int) float64 {
	if pity < 0 {
		panic("gacha: negative pity")
	}
	if pity >= s.Hard {
		return 1
	}
	p := s.Base
	if s.SoftStart > 0 && pity >= s.SoftStart {
		p = s.Base + float64(pity-s.SoftStart+1)*s.Step
	}
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
