package gacha

// Item is what a single pull produced, from the point of view of the target
// being pulled for.
type Item uint8

const (
	ItemThreeStar Item = iota
	ItemFourStarCharacter
	ItemFourStarWeapon
	ItemStandardFiveStar      // lost the 50/50 (or 75/25) to the standard pool
	ItemFeaturedFiveStar      // the target itself
	ItemOtherFeaturedFiveStar // weapon banner: the featured weapon that is not the target
)

// FiveStar reports whether the item is of 5★ rarity.
func (i Item) FiveStar() bool {
	switch i {
	case ItemStandardFiveStar, ItemFeaturedFiveStar, ItemOtherFeaturedFiveStar:
		return true
	case ItemThreeStar, ItemFourStarCharacter, ItemFourStarWeapon:
		return false
	}
	panic("gacha: unknown item")
}

// PullResult reports one pull.
type PullResult struct {
	Item     Item
	Radiance bool // featured character forced by Capturing Radiance
	Fated    bool // charted weapon forced by fate points
}

// Mechanics holds the rule switches that changed between game versions.
type Mechanics struct {
	// LegacyFiftyFifty disables Capturing Radiance.
	LegacyFiftyFifty bool `json:"legacyFiftyFifty,omitempty" yaml:"legacy_fifty_fifty,omitempty"`
	// FatePointThreshold is the fate points needed to force the charted
	// weapon; <= 0 means DefaultFatePointThreshold.
	FatePointThreshold int `json:"fatePointThreshold,omitempty" yaml:"fate_point_threshold,omitempty"`
}

func (m Mechanics) fateThreshold() int {
	if m.FatePointThreshold <= 0 {
		return DefaultFatePointThreshold
	}
	return m.FatePointThreshold
}

// CharacterPity is the character event wish state. Character banners share it.
//
// Invariant: FiveStar resets to 0 exactly when a 5★ is drawn, FourStar exactly
// when a 4★ is drawn.
//
// LossStreak only moves on 50/50 outcomes: a loss increments it, a 50/50 or
// radiance win resets it. A guaranteed win after a loss keeps it.
type CharacterPity struct {
	FiveStar   int  `json:"fiveStar" yaml:"five_star"`
	FourStar   int  `json:"fourStar" yaml:"four_star"`
	Guaranteed bool `json:"guaranteed" yaml:"guaranteed"`
	LossStreak int  `json:"lossStreak" yaml:"loss_streak"` // consecutive lost 50/50s
}

// WeaponPity is the weapon event wish state. Losing to the standard pool or to
// the other featured weapon sets the guarantee, which makes the next 5★ the
// weapon being pulled for. The guarantee carries across banners; fate points
// and the charted path expire with each banner.
type WeaponPity struct {
	FiveStar   int    `json:"fiveStar" yaml:"five_star"`
	FourStar   int    `json:"fourStar" yaml:"four_star"`
	Guaranteed bool   `json:"guaranteed" yaml:"guaranteed"`
	FatePoints int    `json:"fatePoints" yaml:"fate_points"`
	PathTarget string `json:"pathTarget,omitempty" yaml:"path_target,omitempty"`
}

// rollRarity advances one rarity counter: it hits with probability
// curve.Rate(*pity), resetting the counter, or increments it.
func rollRarity(pity *int, curve SoftPity, rng RandomSource) bool {
	if mustDraw(curve.Rate(*pity), rng) {
		*pity = 0
		return true
	}
	*pity++
	return false
}

// rollFourStar resolves the 4★ layer of a pull that did not produce a 5★.
func rollFourStar(pity *int, curve SoftPity, characterShare float64, rng RandomSource) Item {
	if !rollRarity(pity, curve, rng) {
		return ItemThreeStar
	}
	if mustDraw(characterShare, rng) {
		return ItemFourStarCharacter
	}
	return ItemFourStarWeapon
}

// Pull performs one character event wish for the featured character.
func (s *CharacterPity) Pull(rng RandomSource, m Mechanics) PullResult {
	if s.FiveStar < 0 || s.FourStar < 0 || s.LossStreak < 0 {
		panic("gacha: negative character pity")
	}
	if !rollRarity(&s.FiveStar, CharacterFiveStar, rng) {
		return PullResult{Item: rollFourStar(&s.FourStar, CharacterFourStar, CharacterBannerFourStarCharacterShare, rng)}
	}
	// a 5★ defers the 4★ to a later pull
	s.FourStar++

	if s.Guaranteed {
		s.Guaranteed = false
		return PullResult{Item: ItemFeaturedFiveStar}
	}
	if !m.LegacyFiftyFifty && s.LossStreak >= RadianceStreak {
		s.LossStreak = 0
		return PullResult{Item: ItemFeaturedFiveStar, Radiance: true}
	}
	if mustDraw(FiftyFifty, rng) {
		s.LossStreak = 0
		return PullResult{Item: ItemFeaturedFiveStar}
	}
	s.Guaranteed = true
	s.LossStreak++
	return PullResult{Item: ItemStandardFiveStar}
}

// Chart sets the epitomized path. Changing the charted weapon forfeits the
// fate points collected so far; an empty target clears the path.
func (s *WeaponPity) Chart(target string) {
	if s.PathTarget != target {
		s.FatePoints = 0
	}
	s.PathTarget = target
}

// Expire ends the weapon banner: fate points and the path are lost, pity and
// the guarantee carry over.
func (s *WeaponPity) Expire() {
	s.FatePoints = 0
	s.PathTarget = ""
}

// Pull performs one weapon event wish for the weapon being pulled for. Fate
// points only accrue when that weapon is the charted one.
func (s *WeaponPity) Pull(rng RandomSource, m Mechanics) PullResult {
	if s.FiveStar < 0 || s.FourStar < 0 || s.FatePoints < 0 {
		panic("gacha: negative weapon pity")
	}
	if !rollRarity(&s.FiveStar, WeaponFiveStar, rng) {
		return PullResult{Item: rollFourStar(&s.FourStar, WeaponFourStar, WeaponBannerFourStarCharacterShare, rng)}
	}
	s.FourStar++

	charted := s.PathTarget != ""
	if charted && s.FatePoints >= m.fateThreshold() {
		s.FatePoints = 0
		s.Guaranteed = false
		return PullResult{Item: ItemFeaturedFiveStar, Fated: true}
	}

	if s.Guaranteed {
		s.Guaranteed = false
		s.FatePoints = 0
		return PullResult{Item: ItemFeaturedFiveStar}
	}
	if !mustDraw(WeaponFeaturedShare, rng) {
		s.Guaranteed = true
		if charted {
			s.FatePoints++
		}
		return PullResult{Item: ItemStandardFiveStar}
	}
	if mustDraw(WeaponTargetShare, rng) {
		s.FatePoints = 0
		return PullResult{Item: ItemFeaturedFiveStar}
	}
	// the other featured weapon also counts as a loss
	s.Guaranteed = true
	if charted {
		s.FatePoints++
	}
	return PullResult{Item: ItemOtherFeaturedFiveStar}
}
