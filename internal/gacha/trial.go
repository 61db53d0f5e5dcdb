package gacha

import "strings"

// Outcome is the closed set of per-target results of one trial.
type Outcome uint8

const (
	OutcomeSkipped  Outcome = iota // no wishes allocated
	OutcomeObtained                // at least one copy of the target
	OutcomeStandard                // no copy, but a 50/50 (or 75/25) was lost on the way
	OutcomeMissed                  // no copy and no 5★ loss: the wishes ran out
)

// Symbol is the one-letter code used in scenario patterns.
func (o Outcome) Symbol() byte {
	switch o {
	case OutcomeSkipped:
		return '-'
	case OutcomeObtained:
		return 'O'
	case OutcomeStandard:
		return 'S'
	case OutcomeMissed:
		return 'M'
	}
	panic("gacha: unknown outcome")
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeObtained:
		return "obtained"
	case OutcomeStandard:
		return "standard"
	case OutcomeMissed:
		return "missed"
	}
	panic("gacha: unknown outcome")
}

// TargetOutcome is one target's result within one trial.
type TargetOutcome struct {
	Result         Outcome
	WishesUsed     int
	Copies         int
	LostFiftyFifty bool // a standard (or other featured) 5★ dropped while pulling
	Radiance       bool // Capturing Radiance or fate points delivered a copy
}

// Constellation is the constellation reached, -1 when not obtained.
func (t TargetOutcome) Constellation() int { return t.Copies - 1 }

// Refinement is the refinement rank reached, 0 when not obtained.
func (t TargetOutcome) Refinement() int { return t.Copies }

// BannerOutcome is one banner's results plus the pity carried out of it.
type BannerOutcome struct {
	Targets       []TargetOutcome // in the order of the banner's allocations
	CharacterPity CharacterPity
	WeaponPity    WeaponPity
}

// TrialOutcome is the complete record of one trial.
type TrialOutcome struct {
	Banners            []BannerOutcome
	LeftoverWishes     int
	FourStarCharacters int
	FourStarWeapons    int
}

// Pattern encodes the trial as one symbol per funded target, banners
// separated by '|'. A banner without allocations is encoded as '-'.
func (t TrialOutcome) Pattern() string {
	var b strings.Builder
	for i, bo := range t.Banners {
		if i > 0 {
			b.WriteByte('|')
		}
		if len(bo.Targets) == 0 {
			b.WriteByte(OutcomeSkipped.Symbol())
			continue
		}
		for _, to := range bo.Targets {
			b.WriteByte(to.Result.Symbol())
		}
	}
	return b.String()
}

// TargetInfo identifies a funded target. Simulator.Targets lists them in
// trial order, which is also the index order of aggregated statistics.
type TargetInfo struct {
	BannerID string     `json:"bannerId"`
	Banner   int        `json:"-"`
	Target   string     `json:"target"`
	Kind     TargetKind `json:"kind"`
	Wishes   int        `json:"wishes"`
}

type phase struct {
	banner Banner
	allocs []Allocation
	kinds  []TargetKind
}

// Simulator runs trials of a validated plan. It is immutable after
// construction and safe for concurrent use.
type Simulator struct {
	plan    Plan
	phases  []phase
	targets []TargetInfo
}

// NewSimulator validates p and prepares it for simulation.
func NewSimulator(p Plan) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{plan: p, phases: make([]phase, len(p.Banners))}
	pos := make(map[string]int, len(p.Banners))
	for i, b := range p.Banners {
		s.phases[i].banner = b
		pos[b.ID] = i
	}
	for _, a := range p.Allocations {
		ph := &s.phases[pos[a.BannerID]]
		kind, _ := ph.banner.Features(a.Target)
		ph.allocs = append(ph.allocs, a)
		ph.kinds = append(ph.kinds, kind)
	}
	for i, ph := range s.phases {
		for j, a := range ph.allocs {
			s.targets = append(s.targets, TargetInfo{
				BannerID: ph.banner.ID,
				Banner:   i,
				Target:   a.Target,
				Kind:     ph.kinds[j],
				Wishes:   a.Wishes,
			})
		}
	}
	return s, nil
}

// Plan returns the plan the simulator was built from.
func (s *Simulator) Plan() Plan { return s.plan }

// Targets lists the funded targets in trial order.
func (s *Simulator) Targets() []TargetInfo { return append([]TargetInfo(nil), s.targets...) }

// Trial runs one complete trial. The pity state is created from the plan's
// starting state, threaded through the banners in order and discarded.
// Given the same random stream the outcome is identical.
func (s *Simulator) Trial(rng RandomSource) TrialOutcome {
	char := s.plan.CharacterPity
	weap := s.plan.WeaponPity
	m := s.plan.Mechanics

	out := TrialOutcome{Banners: make([]BannerOutcome, len(s.phases))}
	for i, ph := range s.phases {
		bo := BannerOutcome{Targets: make([]TargetOutcome, len(ph.allocs))}
		for j, a := range ph.allocs {
			var to TargetOutcome
			if ph.kinds[j] == KindCharacter {
				to = pullCharacter(&char, a, rng, m, &out)
			} else {
				to = pullWeapon(&weap, a, rng, m, &out)
			}
			out.LeftoverWishes += a.Wishes - to.WishesUsed
			bo.Targets[j] = to
		}
		weap.Expire()
		bo.CharacterPity = char
		bo.WeaponPity = weap
		out.Banners[i] = bo
	}
	return out
}

func countFourStar(item Item, out *TrialOutcome) {
	switch item {
	case ItemFourStarCharacter:
		out.FourStarCharacters++
	case ItemFourStarWeapon:
		out.FourStarWeapons++
	}
}

func pullCharacter(st *CharacterPity, a Allocation, rng RandomSource, m Mechanics, out *TrialOutcome) TargetOutcome {
	var to TargetOutcome
	want := a.copiesWanted(KindCharacter)
	for to.WishesUsed < a.Wishes && to.Copies < want {
		r := st.Pull(rng, m)
		to.WishesUsed++
		switch r.Item {
		case ItemFeaturedFiveStar:
			to.Copies++
			to.Radiance = to.Radiance || r.Radiance
		case ItemStandardFiveStar:
			to.LostFiftyFifty = true
		case ItemOtherFeaturedFiveStar:
			panic("gacha: character banner produced a featured weapon")
		default:
			countFourStar(r.Item, out)
		}
	}
	to.Result = classify(a, to)
	return to
}

func pullWeapon(st *WeaponPity, a Allocation, rng RandomSource, m Mechanics, out *TrialOutcome) TargetOutcome {
	var to TargetOutcome
	if a.EpitomizedPath {
		st.Chart(a.Target)
	} else {
		st.Chart("")
	}
	want := a.copiesWanted(KindWeapon)
	for to.WishesUsed < a.Wishes && to.Copies < want {
		r := st.Pull(rng, m)
		to.WishesUsed++
		switch r.Item {
		case ItemFeaturedFiveStar:
			to.Copies++
			to.Radiance = to.Radiance || r.Fated
		case ItemOtherFeaturedFiveStar:
			to.LostFiftyFifty = true
			if a.Strategy == StrategyStop {
				to.Result = classify(a, to)
				return to
			}
		case ItemStandardFiveStar:
			to.LostFiftyFifty = true
		default:
			countFourStar(r.Item, out)
		}
	}
	to.Result = classify(a, to)
	return to
}

func classify(a Allocation, to TargetOutcome) Outcome {
	switch {
	case a.Wishes == 0:
		return OutcomeSkipped
	case to.Copies > 0:
		return OutcomeObtained
	case to.LostFiftyFifty:
		return OutcomeStandard
	default:
		return OutcomeMissed
	}
}
