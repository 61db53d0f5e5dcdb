package gacha

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

// ErrInvalidConfiguration is returned before any simulation runs when the
// banners, allocations, or starting state cannot be simulated.
var ErrInvalidConfiguration = errors.New("invalid configuration")

func configError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(errs, "; "))
}

// ValidateBanners checks the banner catalog on its own.
func ValidateBanners(banners []Banner) error {
	return configError(bannerErrors(banners))
}

func bannerErrors(banners []Banner) []string {
	var errs []string
	if len(banners) == 0 {
		return append(errs, "banners must not be empty")
	}
	seen := make(map[string]bool, len(banners))
	for i, b := range banners {
		if b.ID == "" {
			errs = append(errs, fmt.Sprintf("banners[%d].id must not be empty", i))
		} else if seen[b.ID] {
			errs = append(errs, fmt.Sprintf("banners[%d].id %q is duplicated", i, b.ID))
		}
		seen[b.ID] = true
		if n := len(b.Characters); n < 1 || n > 2 {
			errs = append(errs, fmt.Sprintf("banner %q must feature one or two characters, got %d", b.ID, n))
		}
		if n := len(b.Weapons); n != 0 && n != 2 {
			errs = append(errs, fmt.Sprintf("banner %q must feature two weapons, got %d", b.ID, n))
		}
		if !b.Start.IsZero() && !b.End.IsZero() && b.End.Before(b.Start) {
			errs = append(errs, fmt.Sprintf("banner %q ends before it starts", b.ID))
		}
	}
	return errs
}

// Validate checks every constraint of the plan and reports all violations
// at once.
func (p Plan) Validate() error {
	errs := bannerErrors(p.Banners)
	index := make(map[string]Banner, len(p.Banners))
	for _, b := range p.Banners {
		index[b.ID] = b
	}

	type key struct{ banner, target string }
	funded := make(map[key]bool, len(p.Allocations))
	for i, a := range p.Allocations {
		where := fmt.Sprintf("allocations[%d]", i)
		b, ok := index[a.BannerID]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown banner %q", where, a.BannerID))
			continue
		}
		kind, ok := b.Features(a.Target)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: %q is not featured on banner %q", where, a.Target, a.BannerID))
			continue
		}
		if funded[key{a.BannerID, a.Target}] {
			errs = append(errs, fmt.Sprintf("%s: %q is allocated twice on banner %q", where, a.Target, a.BannerID))
		}
		funded[key{a.BannerID, a.Target}] = true
		if a.Wishes < 0 {
			errs = append(errs, fmt.Sprintf("%s: wishes must be >= 0, got %d", where, a.Wishes))
		}
		switch kind {
		case KindCharacter:
			if a.MaxConstellation < 0 || a.MaxConstellation > 6 {
				errs = append(errs, fmt.Sprintf("%s: max constellation must be 0-6, got %d", where, a.MaxConstellation))
			}
			if a.MaxRefinement != 0 || a.Strategy != "" || a.EpitomizedPath {
				errs = append(errs, fmt.Sprintf("%s: refinement, strategy and epitomized path apply to weapons only", where))
			}
		case KindWeapon:
			if a.MaxRefinement < 0 || a.MaxRefinement > 5 {
				errs = append(errs, fmt.Sprintf("%s: max refinement must be 0-5, got %d", where, a.MaxRefinement))
			}
			if a.MaxConstellation != 0 {
				errs = append(errs, fmt.Sprintf("%s: constellation applies to characters only", where))
			}
			switch a.Strategy {
			case "", StrategyStop, StrategyContinue:
			default:
				errs = append(errs, fmt.Sprintf("%s: strategy must be one of [stop, continue], got %q", where, a.Strategy))
			}
		}
	}

	c := p.CharacterPity
	if c.FiveStar < 0 || c.FourStar < 0 || c.LossStreak < 0 {
		errs = append(errs, "character pity counters must be >= 0")
	}
	if c.FiveStar > CharacterFiveStar.Hard || c.FourStar > CharacterFourStar.Hard {
		errs = append(errs, "character pity exceeds hard pity")
	}
	w := p.WeaponPity
	if w.FiveStar < 0 || w.FourStar < 0 || w.FatePoints < 0 {
		errs = append(errs, "weapon pity counters must be >= 0")
	}
	if w.FiveStar > WeaponFiveStar.Hard || w.FourStar > WeaponFourStar.Hard {
		errs = append(errs, "weapon pity exceeds hard pity")
	}
	if p.Mechanics.FatePointThreshold < 0 {
		errs = append(errs, "mechanics.fate_point_threshold must be >= 0")
	}
	return configError(errs)
}
