// Package currency converts account currency into wishes.
package currency

// Wallet is the currency an account holds.
type Wallet struct {
	Primogems        int `json:"primogems" yaml:"primogems"`
	GenesisCrystals  int `json:"genesisCrystals" yaml:"genesis_crystals"` // convert 1:1 to primogems
	IntertwinedFates int `json:"intertwinedFates" yaml:"intertwined_fates"`
	Starglitter      int `json:"starglitter" yaml:"starglitter"`
}

// Rates defines how many units are required per wish.
type Rates struct {
	PrimogemsPerWish   int `json:"primogemsPerWish" yaml:"primogems_per_wish"`     // e.g. 160
	StarglitterPerWish int `json:"starglitterPerWish" yaml:"starglitter_per_wish"` // e.g. 5; 0 disables the exchange
}

// DefaultRates are the in-game exchange rates.
func DefaultRates() Rates {
	return Rates{PrimogemsPerWish: 160, StarglitterPerWish: 5}
}

func (r Rates) normalize() Rates {
	if r.PrimogemsPerWish <= 0 {
		r.PrimogemsPerWish = DefaultRates().PrimogemsPerWish
	}
	return r
}

// Wishes returns how many wishes the wallet can buy. Leftover primogems and
// starglitter that do not add up to a whole wish are not counted.
func (r Rates) Wishes(w Wallet) int {
	r = r.normalize()
	n := max(w.IntertwinedFates, 0)
	n += max(w.Primogems+w.GenesisCrystals, 0) / r.PrimogemsPerWish
	if r.StarglitterPerWish > 0 {
		n += max(w.Starglitter, 0) / r.StarglitterPerWish
	}
	return n
}

// PrimogemsForWishes returns the primogems required for n wishes.
func (r Rates) PrimogemsForWishes(n int) int {
	if n <= 0 {
		return 0
	}
	return n * r.normalize().PrimogemsPerWish
}

// Shortfall returns the primogems still needed for the wallet to cover
// wishes, 0 when it already does. Partial primogems count toward the gap.
func (r Rates) Shortfall(w Wallet, wishes int) int {
	r = r.normalize()
	have := max(w.IntertwinedFates, 0)
	if r.StarglitterPerWish > 0 {
		have += max(w.Starglitter, 0) / r.StarglitterPerWish
	}
	missing := wishes - have
	if missing <= 0 {
		return 0
	}
	return max(r.PrimogemsForWishes(missing)-max(w.Primogems+w.GenesisCrystals, 0), 0)
}
