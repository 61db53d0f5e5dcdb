package strategy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xtding233/wishcalc/internal/gacha"
)

// Defaults for Options fields left at zero.
const (
	DefaultProbeTrials = 2000
	DefaultStep        = 10
	DefaultMaxProbes   = 400
)

// Goal is one target the player wants, with its priority tier.
type Goal struct {
	BannerID         string               `json:"bannerId"`
	Target           string               `json:"target"`
	Priority         Priority             `json:"priority"`
	MaxConstellation int                  `json:"maxConstellation,omitempty"`
	MaxRefinement    int                  `json:"maxRefinement,omitempty"`
	Strategy         gacha.WeaponStrategy `json:"strategy,omitempty"`
	EpitomizedPath   bool                 `json:"epitomizedPath,omitempty"`
	// Wishes is a starting allocation, e.g. one the player already chose.
	// It is scaled down if the budget cannot cover it.
	Wishes int `json:"wishes,omitempty"`
}

func (g Goal) allocation(wishes int) gacha.Allocation {
	return gacha.Allocation{
		BannerID:         g.BannerID,
		Target:           g.Target,
		Wishes:           wishes,
		MaxConstellation: g.MaxConstellation,
		MaxRefinement:    g.MaxRefinement,
		Strategy:         g.Strategy,
		EpitomizedPath:   g.EpitomizedPath,
	}
}

// Request is the optimizer input.
type Request struct {
	Banners       []gacha.Banner      `json:"banners"`
	CharacterPity gacha.CharacterPity `json:"characterPity"`
	WeaponPity    gacha.WeaponPity    `json:"weaponPity"`
	Mechanics     gacha.Mechanics     `json:"mechanics"`
	Goals         []Goal              `json:"goals"`
	Budget        Budget              `json:"budget"`
}

// Options tunes the search.
type Options struct {
	ProbeTrials int    // trials per probe
	Step        int    // wishes added per step
	MaxProbes   int    // upper bound on probes
	Seed        uint64 // shared by every probe; 0 picks one
	Workers     int    // workers inside each probe
	Logger      *zap.Logger
}

func (o Options) normalize() Options {
	if o.ProbeTrials <= 0 {
		o.ProbeTrials = DefaultProbeTrials
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.MaxProbes <= 0 {
		o.MaxProbes = DefaultMaxProbes
	}
	if o.Seed == 0 {
		o.Seed = gacha.NewSeed()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// GoalResult is the optimizer's verdict for one goal.
type GoalResult struct {
	Goal
	Wishes      int     `json:"wishes"`
	SuccessRate float64 `json:"successRate"`
	Threshold   float64 `json:"threshold"`
	Met         bool    `json:"met"`
}

// Recommendation is the optimizer output.
type Recommendation struct {
	Goals       []GoalResult       `json:"goals"`
	Allocations []gacha.Allocation `json:"allocations"`
	Result      *gacha.Result      `json:"result,omitempty"` // last probe; nil when nothing was probed
	Budget      int                `json:"budget"`
	Spent       int                `json:"spent"`
	Probes      int                `json:"probes"`
	Scaled      bool               `json:"scaled"` // starting wishes exceeded the budget
	AllMet      bool               `json:"allMet"`
}

// Plan returns the recommended allocation as a simulation plan.
func (r *Recommendation) Plan(req Request) gacha.Plan {
	return gacha.Plan{
		Banners:       req.Banners,
		Allocations:   r.Allocations,
		CharacterPity: req.CharacterPity,
		WeaponPity:    req.WeaponPity,
		Mechanics:     req.Mechanics,
	}
}

// Optimize greedily funds goals: it probes the current allocation, gives one
// step of wishes to the highest-priority goal below its threshold, and repeats
// until every threshold is met, the budget runs dry, or MaxProbes is reached.
// Goals that cannot take more wishes are left at their best effort.
// Probes run one after another, each using the same seed.
func Optimize(ctx context.Context, req Request, opts Options) (*Recommendation, error) {
	opts = opts.normalize()
	log := opts.Logger.With(zap.Uint64("seed", opts.Seed))

	goals, bannerOf, kinds, err := prepare(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(req.Banners))
	for i, b := range req.Banners {
		ids[i] = b.ID
	}
	caps := req.Budget.capacity(ids)

	start := make([]int, len(goals))
	for k, g := range goals {
		if g.Priority != Skip {
			start[k] = g.Wishes
		}
	}
	wishes, scaled := ScaleToBudget(start, bannerOf, caps)
	if scaled {
		log.Info("starting allocation exceeds budget, scaled down",
			zap.Int("budget", req.Budget.Total()),
		)
	}
	led := newLedger(caps)
	for k, w := range wishes {
		led.spend(bannerOf[k], w)
	}

	rec := &Recommendation{Budget: req.Budget.Total(), Scaled: scaled}
	plan := func() gacha.Plan {
		p := gacha.Plan{
			Banners:       req.Banners,
			Allocations:   make([]gacha.Allocation, len(goals)),
			CharacterPity: req.CharacterPity,
			WeaponPity:    req.WeaponPity,
			Mechanics:     req.Mechanics,
		}
		for k, g := range goals {
			p.Allocations[k] = g.allocation(wishes[k])
		}
		return p
	}

	var rates []float64
	if caps[len(caps)-1] > 0 && len(goals) > 0 {
		probe := func() (*gacha.Result, error) {
			rec.Probes++
			return gacha.Simulate(ctx, plan(), gacha.RunOptions{
				Trials:  opts.ProbeTrials,
				Seed:    opts.Seed,
				Workers: opts.Workers,
			})
		}
		res, err := probe()
		if err != nil {
			return nil, fmt.Errorf("probe %d: %w", rec.Probes, err)
		}
		exhausted := make([]bool, len(goals))
		for rec.Probes < opts.MaxProbes {
			k := pick(goals, res, exhausted)
			if k < 0 {
				break
			}
			add := min(opts.Step, led.room(bannerOf[k]), ceiling(goals[k], kinds[k])-wishes[k])
			if add <= 0 {
				exhausted[k] = true
				log.Debug("goal cannot take more wishes",
					zap.String("target", goals[k].Target),
					zap.Float64("rate", res.Targets[k].SuccessRate),
				)
				continue
			}
			wishes[k] += add
			led.spend(bannerOf[k], add)
			log.Debug("step",
				zap.String("target", goals[k].Target),
				zap.Stringer("priority", goals[k].Priority),
				zap.Int("wishes", wishes[k]),
				zap.Float64("rate", res.Targets[k].SuccessRate),
			)
			if res, err = probe(); err != nil {
				return nil, fmt.Errorf("probe %d: %w", rec.Probes, err)
			}
		}
		rec.Result = res
		rates = make([]float64, len(goals))
		for k := range goals {
			rates[k] = res.Targets[k].SuccessRate
		}
	}

	final := plan()
	rec.Allocations = final.Allocations
	rec.Spent = led.total()
	rec.AllMet = true
	rec.Goals = make([]GoalResult, len(goals))
	for k, g := range goals {
		gr := GoalResult{Goal: g, Wishes: wishes[k], Threshold: g.Priority.Threshold()}
		if rates != nil {
			gr.SuccessRate = rates[k]
		}
		gr.Met = gr.SuccessRate >= gr.Threshold
		rec.AllMet = rec.AllMet && gr.Met
		rec.Goals[k] = gr
	}
	log.Info("optimization finished",
		zap.Int("probes", rec.Probes),
		zap.Int("spent", rec.Spent),
		zap.Int("budget", rec.Budget),
		zap.Bool("allMet", rec.AllMet),
	)
	return rec, nil
}

// prepare validates the request and orders goals by banner, keeping the
// given order within a banner. It returns the banner index and target kind
// of each goal.
func prepare(req Request) ([]Goal, []int, []gacha.TargetKind, error) {
	var errs []string
	pos := make(map[string]int, len(req.Banners))
	for i, b := range req.Banners {
		pos[b.ID] = i
	}
	for i, g := range req.Goals {
		if !g.Priority.valid() {
			errs = append(errs, fmt.Sprintf("goals[%d]: priority must be 1-4, got %d", i, int(g.Priority)))
		}
	}
	if req.Budget.Initial < 0 {
		errs = append(errs, "budget.initial must be >= 0")
	}
	for id, w := range req.Budget.Income {
		if _, ok := pos[id]; !ok {
			errs = append(errs, fmt.Sprintf("budget.income: unknown banner %q", id))
		}
		if w < 0 {
			errs = append(errs, fmt.Sprintf("budget.income[%s] must be >= 0", id))
		}
	}

	goals := append([]Goal(nil), req.Goals...)
	sort.SliceStable(goals, func(i, j int) bool { return pos[goals[i].BannerID] < pos[goals[j].BannerID] })

	p := gacha.Plan{
		Banners:       req.Banners,
		Allocations:   make([]gacha.Allocation, len(goals)),
		CharacterPity: req.CharacterPity,
		WeaponPity:    req.WeaponPity,
		Mechanics:     req.Mechanics,
	}
	for k, g := range goals {
		p.Allocations[k] = g.allocation(g.Wishes)
	}
	if err := p.Validate(); err != nil {
		errs = append(errs, strings.TrimPrefix(err.Error(), gacha.ErrInvalidConfiguration.Error()+": "))
	}
	if len(errs) > 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s", gacha.ErrInvalidConfiguration, strings.Join(errs, "; "))
	}

	bannerOf := make([]int, len(goals))
	kinds := make([]gacha.TargetKind, len(goals))
	for k, g := range goals {
		bannerOf[k] = pos[g.BannerID]
		kinds[k], _ = req.Banners[bannerOf[k]].Features(g.Target)
	}
	return goals, bannerOf, kinds, nil
}

// pick returns the highest-priority goal still below its threshold, or -1.
// Ties go to the earlier banner.
func pick(goals []Goal, res *gacha.Result, exhausted []bool) int {
	best := -1
	for k, g := range goals {
		if exhausted[k] || g.Priority == Skip {
			continue
		}
		if res.Targets[k].SuccessRate >= g.Priority.Threshold() {
			continue
		}
		if best < 0 || g.Priority < goals[best].Priority {
			best = k
		}
	}
	return best
}

// ceiling is the allocation beyond which more wishes cannot help a goal.
func ceiling(g Goal, kind gacha.TargetKind) int {
	// a loss guarantees the next 5★, path or not
	if kind == gacha.KindCharacter {
		return (g.MaxConstellation + 1) * 2 * (gacha.CharacterFiveStar.Hard + 1)
	}
	return max(g.MaxRefinement, 1) * 2 * (gacha.WeaponFiveStar.Hard + 1)
}
