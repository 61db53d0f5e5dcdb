package gacha

// Rate curves for the character event wish and the weapon event wish.
var (
	CharacterFiveStar = SoftPity{Base: 0.006, SoftStart: 73, Step: 0.06, Hard: 89}
	CharacterFourStar = SoftPity{Base: 0.051, Hard: 10}
	WeaponFiveStar    = SoftPity{Base: 0.007, SoftStart: 63, Step: 0.07, Hard: 77}
	WeaponFourStar    = SoftPity{Base: 0.060, Hard: 10}
)

// Split constants applied once the rarity of a pull is known.
const (
	FiftyFifty          = 0.5  // featured character vs. standard character
	WeaponFeaturedShare = 0.75 // featured weapon set vs. standard weapon
	WeaponTargetShare   = 0.5  // which of the two featured weapons

	CharacterBannerFourStarCharacterShare = 0.7167
	WeaponBannerFourStarCharacterShare    = 0.185

	// RadianceStreak is the number of consecutive lost 50/50s after which
	// Capturing Radiance forces the featured character.
	RadianceStreak = 2
	// DefaultFatePointThreshold is the number of fate points that forces the
	// charted weapon.
	DefaultFatePointThreshold = 1
)

// CharacterFiveStarRate is the 5★ rate on a character banner at the given pity.
func CharacterFiveStarRate(pity int) float64 { return CharacterFiveStar.Rate(pity) }

// CharacterFourStarRate is the 4★ rate on a character banner at the given pity.
func CharacterFourStarRate(pity int) float64 { return CharacterFourStar.Rate(pity) }

// WeaponFiveStarRate is the 5★ rate on a weapon banner at the given pity.
func WeaponFiveStarRate(pity int) float64 { return WeaponFiveStar.Rate(pity) }

// WeaponFourStarRate is the 4★ rate on a weapon banner at the given pity.
func WeaponFourStarRate(pity int) float64 { return WeaponFourStar.Rate(pity) }
