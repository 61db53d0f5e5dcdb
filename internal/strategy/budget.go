package strategy

import "math"

// Budget is the wish income laid out along the banner sequence.
type Budget struct {
	Initial int            `json:"initial"`          // wishes on hand before the first banner
	Income  map[string]int `json:"income,omitempty"` // wishes gained before banner id
}

// Total is every wish available across the schedule.
func (b Budget) Total() int {
	n := b.Initial
	for _, w := range b.Income {
		n += w
	}
	return n
}

// capacity returns, for each banner, the wishes available up to and
// including it.
func (b Budget) capacity(bannerIDs []string) []int {
	caps := make([]int, len(bannerIDs))
	run := b.Initial
	for i, id := range bannerIDs {
		run += b.Income[id]
		caps[i] = run
	}
	return caps
}

// ledger tracks wishes spent per banner against the cumulative capacity.
type ledger struct {
	caps  []int
	spent []int
}

func newLedger(caps []int) *ledger {
	return &ledger{caps: caps, spent: make([]int, len(caps))}
}

// room is how many more wishes banner i can take without overdrawing the
// budget at i or any later banner.
func (l *ledger) room(i int) int {
	cum := 0
	for j := 0; j < i; j++ {
		cum += l.spent[j]
	}
	room := math.MaxInt
	for j := i; j < len(l.caps); j++ {
		cum += l.spent[j]
		room = min(room, l.caps[j]-cum)
	}
	return max(room, 0)
}

func (l *ledger) spend(i, n int) { l.spent[i] += n }

func (l *ledger) total() int {
	n := 0
	for _, s := range l.spent {
		n += s
	}
	return n
}

// ScaleToBudget shrinks wishes proportionally until no prefix of the banner
// sequence spends more than its cumulative capacity. banner[k] is the banner
// index of wishes[k]. It returns a new slice and whether anything changed.
func ScaleToBudget(wishes, banner, caps []int) ([]int, bool) {
	out := append([]int(nil), wishes...)
	changed := false
	cum := 0
	for i := range caps {
		spent := 0
		for k, b := range banner {
			if b == i {
				spent += out[k]
			}
		}
		allowed := max(caps[i]-cum, 0)
		if spent > allowed {
			changed = true
			scale := float64(allowed) / float64(spent)
			spent = 0
			for k, b := range banner {
				if b == i {
					out[k] = int(math.Floor(float64(out[k]) * scale))
					spent += out[k]
				}
			}
		}
		cum += spent
	}
	return out, changed
}
