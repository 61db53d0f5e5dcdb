package gacha

import "time"

// TargetKind tells which event wish a target is pulled on.
type TargetKind uint8

const (
	KindCharacter TargetKind = iota
	KindWeapon
)

func (k TargetKind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindWeapon:
		return "weapon"
	}
	panic("gacha: unknown target kind")
}

func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// WeaponStrategy decides what happens when the other featured weapon drops.
type WeaponStrategy string

const (
	// StrategyStop stops pulling as soon as any featured 5★ weapon drops.
	StrategyStop WeaponStrategy = "stop"
	// StrategyContinue keeps pulling until the target meets its stop condition.
	StrategyContinue WeaponStrategy = "continue"
)

// Banner is one phase of the wish schedule. Order in Plan.Banners is the
// order the phases run in; pity carries forward between them.
type Banner struct {
	ID         string    `json:"id" yaml:"id"`
	Characters []string  `json:"characters" yaml:"characters"` // one or two featured 5★ characters
	Weapons    []string  `json:"weapons" yaml:"weapons"`       // two featured 5★ weapons
	Start      time.Time `json:"start,omitzero" yaml:"start,omitempty"`
	End        time.Time `json:"end,omitzero" yaml:"end,omitempty"`
}

// Features reports whether id is featured on the banner and as what.
func (b Banner) Features(id string) (TargetKind, bool) {
	for _, c := range b.Characters {
		if c == id {
			return KindCharacter, true
		}
	}
	for _, w := range b.Weapons {
		if w == id {
			return KindWeapon, true
		}
	}
	return 0, false
}

// Allocation funds one target on one banner.
type Allocation struct {
	BannerID string `json:"bannerId" yaml:"banner"`
	Target   string `json:"target" yaml:"target"`
	Wishes   int    `json:"wishes" yaml:"wishes"`
	// MaxConstellation stops character pulls once this constellation is
	// reached (0 = C0, one copy).
	MaxConstellation int `json:"maxConstellation,omitempty" yaml:"max_constellation,omitempty"`
	// MaxRefinement stops weapon pulls once this refinement is reached
	// (0 or 1 = R1, one copy).
	MaxRefinement  int            `json:"maxRefinement,omitempty" yaml:"max_refinement,omitempty"`
	Strategy       WeaponStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	EpitomizedPath bool           `json:"epitomizedPath,omitempty" yaml:"epitomized_path,omitempty"`
}

// copiesWanted is the copy count that ends pulling for the target.
func (a Allocation) copiesWanted(kind TargetKind) int {
	if kind == KindCharacter {
		return a.MaxConstellation + 1
	}
	if a.MaxRefinement <= 0 {
		return 1
	}
	return a.MaxRefinement
}

// Plan is the full read-only input of a simulation.
type Plan struct {
	Banners       []Banner      `json:"banners" yaml:"banners"`
	Allocations   []Allocation  `json:"allocations" yaml:"allocations"`
	CharacterPity CharacterPity `json:"characterPity" yaml:"character_pity"`
	WeaponPity    WeaponPity    `json:"weaponPity" yaml:"weapon_pity"`
	Mechanics     Mechanics     `json:"mechanics" yaml:"mechanics"`
}

// Wishes returns the total number of wishes the plan allocates.
func (p Plan) Wishes() int {
	n := 0
	for _, a := range p.Allocations {
		n += a.Wishes
	}
	return n
}
