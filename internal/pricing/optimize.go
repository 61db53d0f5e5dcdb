package pricing

import "math"

const inf = math.MaxInt

// subsets enumerates every combination of the first-time variants, which can
// each be bought once. The catalog is small, so this stays at 2^6 at most.
func subsets(vs []variant) (once []int, regular []int, masks int) {
	for i, v := range vs {
		if v.once {
			once = append(once, i)
		} else {
			regular = append(regular, i)
		}
	}
	return once, regular, 1 << len(once)
}

// MinCostAtLeast finds the cheapest combination yielding at least target
// crystals. Regular packs can be bought any number of times; a first-time
// double at most once.
func MinCostAtLeast(cat Catalog, target int, first FirstTimeState) (Plan, error) {
	if len(cat.Packs) == 0 {
		return Plan{}, ErrNoPacks
	}
	if target <= 0 {
		return Plan{Currency: cat.Currency}, nil
	}
	vs := variants(cat, first)
	once, regular, masks := subsets(vs)

	maxYield := 0
	for _, i := range regular {
		maxYield = max(maxYield, vs[i].yield)
	}
	// dp[t]: min cost to collect exactly t crystals from regular packs,
	// t capped at limit so overshoot collapses into the last cell.
	limit := target + maxYield
	dp := make([]int, limit+1)
	choice := make([]int, limit+1)
	prev := make([]int, limit+1)
	for t := range dp {
		dp[t], choice[t], prev[t] = inf, -1, -1
	}
	dp[0] = 0
	for t := 0; t <= limit; t++ {
		if dp[t] == inf {
			continue
		}
		for _, i := range regular {
			nt := min(t+vs[i].yield, limit)
			if vs[i].yield <= 0 {
				continue
			}
			if c := dp[t] + vs[i].price; c < dp[nt] {
				dp[nt], choice[nt], prev[nt] = c, i, t
			}
		}
	}
	// best[r]: cheapest cell reaching at least r
	best := make([]int, limit+2)
	best[limit+1] = -1
	for t := limit; t >= 0; t-- {
		best[t] = best[t+1]
		if dp[t] != inf && (best[t] < 0 || dp[t] <= dp[best[t]]) {
			best[t] = t
		}
	}

	bestCost, bestMask, bestCell := inf, -1, -1
	for mask := 0; mask < masks; mask++ {
		yield, cost := 0, 0
		for b, i := range once {
			if mask&(1<<b) != 0 {
				yield += vs[i].yield
				cost += vs[i].price
			}
		}
		rem := max(target-yield, 0)
		cell := best[rem]
		if cell < 0 {
			continue
		}
		if total := cost + dp[cell]; total < bestCost {
			bestCost, bestMask, bestCell = total, mask, cell
		}
	}
	if bestMask < 0 {
		return Plan{}, ErrNoPacks
	}

	qty := make([]int, len(vs))
	for b, i := range once {
		if bestMask&(1<<b) != 0 {
			qty[i] = 1
		}
	}
	for t := bestCell; t > 0 && choice[t] >= 0; t = prev[t] {
		qty[choice[t]]++
	}
	return buildPlan(cat, vs, qty), nil
}

// MaxCrystalsUnderBudget computes the most crystals purchasable with
// budgetCents, tax included.
func MaxCrystalsUnderBudget(cat Catalog, budgetCents int, first FirstTimeState) (Plan, error) {
	if len(cat.Packs) == 0 {
		return Plan{}, ErrNoPacks
	}
	if budgetCents <= 0 {
		return Plan{Currency: cat.Currency}, nil
	}
	// prices are pre-tax; reduce the budget so the taxed total still fits
	effBudget := budgetCents
	if cat.TaxRate > 0 {
		effBudget = int(math.Floor(float64(budgetCents) / (1 + cat.TaxRate)))
	}
	vs := variants(cat, first)
	once, regular, masks := subsets(vs)

	// dp[c]: max crystals from regular packs costing at most c
	dp := make([]int, effBudget+1)
	choice := make([]int, effBudget+1)
	for c := range choice {
		choice[c] = -1
	}
	for c := 1; c <= effBudget; c++ {
		dp[c] = dp[c-1]
		for _, i := range regular {
			p := vs[i].price
			if p <= 0 || p > c {
				continue
			}
			if y := dp[c-p] + vs[i].yield; y > dp[c] {
				dp[c], choice[c] = y, i
			}
		}
	}

	bestYield, bestMask, bestRest := -1, 0, 0
	for mask := 0; mask < masks; mask++ {
		yield, cost := 0, 0
		for b, i := range once {
			if mask&(1<<b) != 0 {
				yield += vs[i].yield
				cost += vs[i].price
			}
		}
		if cost > effBudget {
			continue
		}
		rest := effBudget - cost
		if total := yield + dp[rest]; total > bestYield {
			bestYield, bestMask, bestRest = total, mask, rest
		}
	}

	qty := make([]int, len(vs))
	for b, i := range once {
		if bestMask&(1<<b) != 0 {
			qty[i] = 1
		}
	}
	for c := bestRest; c > 0; {
		if choice[c] < 0 {
			c--
			continue
		}
		i := choice[c]
		qty[i]++
		c -= vs[i].price
	}
	return buildPlan(cat, vs, qty), nil
}
