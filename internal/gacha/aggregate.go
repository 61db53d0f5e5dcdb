package gacha

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Confidence is the level of the interval reported around success rates.
const Confidence = 0.95

type targetTally struct {
	obtained, standard, missed, skipped int
	radiance                            int
	copies                              int64
	wishesOnSuccess                     []int
}

type patternTally struct {
	count int
	first int // lowest trial index that produced the pattern
}

// Tally accumulates trial outcomes. Tallies built from disjoint sets of
// trials can be merged in any order; the merged tally only depends on which
// trials were added, not on how they were split.
type Tally struct {
	targets  []targetTally
	patterns map[string]*patternTally
	trials   int

	leftover           int64
	fourStarCharacters int64
	fourStarWeapons    int64
	endCharacterPity   int64
	endWeaponPity      int64
}

// NewTally returns an empty tally for the given number of funded targets.
func NewTally(targets int) *Tally {
	return &Tally{
		targets:  make([]targetTally, targets),
		patterns: make(map[string]*patternTally),
	}
}

// Trials is the number of trials added so far.
func (t *Tally) Trials() int { return t.trials }

// Add folds the outcome of the trial with index trial into the tally.
func (t *Tally) Add(trial int, out TrialOutcome) {
	t.trials++
	k := 0
	for _, bo := range out.Banners {
		for _, to := range bo.Targets {
			tt := &t.targets[k]
			k++
			switch to.Result {
			case OutcomeObtained:
				tt.obtained++
				tt.wishesOnSuccess = append(tt.wishesOnSuccess, to.WishesUsed)
			case OutcomeStandard:
				tt.standard++
			case OutcomeMissed:
				tt.missed++
			case OutcomeSkipped:
				tt.skipped++
			default:
				panic("gacha: unknown outcome")
			}
			if to.Radiance {
				tt.radiance++
			}
			tt.copies += int64(to.Copies)
		}
	}
	if k != len(t.targets) {
		panic("gacha: trial outcome does not match tally shape")
	}

	p := out.Pattern()
	if pt, ok := t.patterns[p]; ok {
		pt.count++
		if trial < pt.first {
			pt.first = trial
		}
	} else {
		t.patterns[p] = &patternTally{count: 1, first: trial}
	}

	t.leftover += int64(out.LeftoverWishes)
	t.fourStarCharacters += int64(out.FourStarCharacters)
	t.fourStarWeapons += int64(out.FourStarWeapons)
	if n := len(out.Banners); n > 0 {
		last := out.Banners[n-1]
		t.endCharacterPity += int64(last.CharacterPity.FiveStar)
		t.endWeaponPity += int64(last.WeaponPity.FiveStar)
	}
}

// Merge folds o into t. o must not be used afterwards.
func (t *Tally) Merge(o *Tally) {
	if len(o.targets) != len(t.targets) {
		panic("gacha: merging tallies of different shape")
	}
	t.trials += o.trials
	for i := range t.targets {
		a, b := &t.targets[i], &o.targets[i]
		a.obtained += b.obtained
		a.standard += b.standard
		a.missed += b.missed
		a.skipped += b.skipped
		a.radiance += b.radiance
		a.copies += b.copies
		a.wishesOnSuccess = append(a.wishesOnSuccess, b.wishesOnSuccess...)
	}
	for p, pt := range o.patterns {
		if cur, ok := t.patterns[p]; ok {
			cur.count += pt.count
			if pt.first < cur.first {
				cur.first = pt.first
			}
		} else {
			t.patterns[p] = pt
		}
	}
	t.leftover += o.leftover
	t.fourStarCharacters += o.fourStarCharacters
	t.fourStarWeapons += o.fourStarWeapons
	t.endCharacterPity += o.endCharacterPity
	t.endWeaponPity += o.endWeaponPity
}

// Patterns returns the raw pattern -> count map.
func (t *Tally) Patterns() map[string]int {
	m := make(map[string]int, len(t.patterns))
	for p, pt := range t.patterns {
		m[p] = pt.count
	}
	return m
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// TargetStats summarizes one funded target over all trials.
type TargetStats struct {
	TargetInfo
	SuccessRate        float64  `json:"successRate"`
	SuccessCI          Interval `json:"successCI"`
	StandardRate       float64  `json:"standardRate"`
	MissedRate         float64  `json:"missedRate"`
	RadianceRate       float64  `json:"radianceRate"`
	AvgCopies          float64  `json:"avgCopies"`
	AvgWishesOnSuccess float64  `json:"avgWishesOnSuccess"`
	P50WishesOnSuccess float64  `json:"p50WishesOnSuccess"`
	P90WishesOnSuccess float64  `json:"p90WishesOnSuccess"`
}

// Scenario is one distinct outcome pattern across the banner sequence.
// Pattern has one symbol per funded target, not per banner: 'O' obtained,
// 'S' lost to a standard or other featured 5★, 'M' missed and '-' skipped.
// Banners are separated by '|' and a banner with no allocations is a single
// '-', so "OS|-" is two targets on the first banner and nothing on the second.
type Scenario struct {
	Pattern    string  `json:"pattern"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // 0..100
}

// Result is the aggregated statistics of a run.
type Result struct {
	Trials                int           `json:"trials"` // completed trials
	Seed                  uint64        `json:"seed"`
	Targets               []TargetStats `json:"targets"`
	Scenarios             []Scenario    `json:"scenarios"`
	AvgLeftoverWishes     float64       `json:"avgLeftoverWishes"`
	AvgFourStarCharacters float64       `json:"avgFourStarCharacters"`
	AvgFourStarWeapons    float64       `json:"avgFourStarWeapons"`
	AvgEndCharacterPity   float64       `json:"avgEndCharacterPity"`
	AvgEndWeaponPity      float64       `json:"avgEndWeaponPity"`
}

// TopScenarios returns at most k scenarios, most frequent first.
func (r *Result) TopScenarios(k int) []Scenario {
	if k < 0 || k >= len(r.Scenarios) {
		return r.Scenarios
	}
	return r.Scenarios[:k]
}

// Target returns the statistics of target on banner, if funded.
func (r *Result) Target(bannerID, target string) (TargetStats, bool) {
	for _, ts := range r.Targets {
		if ts.BannerID == bannerID && ts.Target == target {
			return ts, true
		}
	}
	return TargetStats{}, false
}

// Result reduces the tally. infos must be the Targets of the simulator the
// trials came from.
func (t *Tally) Result(infos []TargetInfo) *Result {
	if len(infos) != len(t.targets) {
		panic("gacha: target info does not match tally shape")
	}
	r := &Result{Trials: t.trials, Targets: make([]TargetStats, len(infos))}
	n := float64(t.trials)
	for i, info := range infos {
		tt := t.targets[i]
		ts := TargetStats{TargetInfo: info}
		if t.trials > 0 {
			ts.SuccessRate = float64(tt.obtained) / n
			ts.SuccessCI = clopperPearson(tt.obtained, t.trials, Confidence)
			ts.StandardRate = float64(tt.standard) / n
			ts.MissedRate = float64(tt.missed) / n
			ts.RadianceRate = float64(tt.radiance) / n
			ts.AvgCopies = float64(tt.copies) / n
		}
		if len(tt.wishesOnSuccess) > 0 {
			xs := make([]float64, len(tt.wishesOnSuccess))
			for j, w := range tt.wishesOnSuccess {
				xs[j] = float64(w)
			}
			sort.Float64s(xs)
			ts.AvgWishesOnSuccess = stat.Mean(xs, nil)
			ts.P50WishesOnSuccess = stat.Quantile(0.5, stat.Empirical, xs, nil)
			ts.P90WishesOnSuccess = stat.Quantile(0.9, stat.Empirical, xs, nil)
		}
		r.Targets[i] = ts
	}

	type entry struct {
		pattern string
		patternTally
	}
	entries := make([]entry, 0, len(t.patterns))
	for p, pt := range t.patterns {
		entries = append(entries, entry{p, *pt})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})
	r.Scenarios = make([]Scenario, len(entries))
	for i, e := range entries {
		r.Scenarios[i] = Scenario{Pattern: e.pattern, Count: e.count, Percentage: 100 * float64(e.count) / n}
	}

	if t.trials > 0 {
		r.AvgLeftoverWishes = float64(t.leftover) / n
		r.AvgFourStarCharacters = float64(t.fourStarCharacters) / n
		r.AvgFourStarWeapons = float64(t.fourStarWeapons) / n
		r.AvgEndCharacterPity = float64(t.endCharacterPity) / n
		r.AvgEndWeaponPity = float64(t.endWeaponPity) / n
	}
	return r
}

// clopperPearson is the exact binomial interval for k successes in n trials.
func clopperPearson(k, n int, confidence float64) Interval {
	if n == 0 {
		return Interval{0, 1}
	}
	alpha := 1 - confidence
	ci := Interval{Lo: 0, Hi: 1}
	if k > 0 {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k < n {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return ci
}
