package main

import (
	"fmt"
	"io"

	"github.com/xtding233/wishcalc/internal/api"
	"github.com/xtding233/wishcalc/internal/gacha"
	"github.com/xtding233/wishcalc/internal/strategy"
)

func printRun(w io.Writer, resp *api.RunResponse) {
	fmt.Fprintf(w, "=== %s | wishes on hand=%d ===\n", resp.Mode, resp.Wishes)
	if resp.Recommendation != nil {
		printRecommendation(w, resp.Recommendation)
	}
	if resp.Simulation != nil {
		if resp.Simulation.Cancelled {
			fmt.Fprintln(w, "(interrupted: statistics cover completed trials only)")
		}
		printResult(w, resp.Simulation.Result)
	}
	if t := resp.TopUp; t != nil && len(t.Plan.Purchases) > 0 {
		fmt.Fprintf(w, "\nTop-up for %d missing primogems\n", t.Shortfall)
		for _, p := range t.Plan.Purchases {
			fmt.Fprintf(w, "  %-28s x%-3d %8.2f\n", p.Name, p.Qty, float64(p.Subtotal)/100)
		}
		fmt.Fprintf(w, "  %-28s      %8.2f %s\n", "total (tax incl.)", float64(t.Plan.TotalCents)/100, t.Plan.Currency)
	}
}

func printResult(w io.Writer, r *gacha.Result) {
	fmt.Fprintf(w, "trials=%d seed=%d\n\n", r.Trials, r.Seed)
	for _, ts := range r.Targets {
		fmt.Fprintf(w, "[%s] %s (%s, %d wishes)\n", ts.BannerID, ts.Target, ts.Kind, ts.Wishes)
		fmt.Fprintf(w, "  success rate            : %6.2f%% (95%% CI %.2f%%-%.2f%%)\n",
			ts.SuccessRate*100, ts.SuccessCI.Lo*100, ts.SuccessCI.Hi*100)
		fmt.Fprintf(w, "  lost to standard        : %6.2f%%\n", ts.StandardRate*100)
		fmt.Fprintf(w, "  missed                  : %6.2f%%\n", ts.MissedRate*100)
		if ts.Kind == gacha.KindCharacter {
			fmt.Fprintf(w, "  capturing radiance      : %6.2f%%\n", ts.RadianceRate*100)
		}
		fmt.Fprintf(w, "  avg copies              : %6.2f\n", ts.AvgCopies)
		if ts.SuccessRate > 0 {
			fmt.Fprintf(w, "  wishes on success       : avg %.1f | p50 %.0f | p90 %.0f\n",
				ts.AvgWishesOnSuccess, ts.P50WishesOnSuccess, ts.P90WishesOnSuccess)
		}
	}
	fmt.Fprintf(w, "\navg leftover wishes       : %.1f\n", r.AvgLeftoverWishes)
	fmt.Fprintf(w, "avg 4★ characters/weapons : %.1f / %.1f\n", r.AvgFourStarCharacters, r.AvgFourStarWeapons)
	fmt.Fprintf(w, "avg end pity (char/weap)  : %.1f / %.1f\n", r.AvgEndCharacterPity, r.AvgEndWeaponPity)

	if len(r.Scenarios) > 0 {
		fmt.Fprintf(w, "\nScenarios (O obtained, S standard, M missed, - skipped)\n")
		for _, s := range r.Scenarios {
			fmt.Fprintf(w, "  %-20s %6.2f%%  (%d)\n", s.Pattern, s.Percentage, s.Count)
		}
	}
}

func printRecommendation(w io.Writer, rec *strategy.Recommendation) {
	fmt.Fprintf(w, "budget=%d spent=%d probes=%d all met=%t\n", rec.Budget, rec.Spent, rec.Probes, rec.AllMet)
	if rec.Scaled {
		fmt.Fprintln(w, "(starting allocation exceeded the budget and was scaled down)")
	}
	for _, g := range rec.Goals {
		mark := "✗"
		if g.Met {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s [%s] %-28s %-12s %4d wishes  %6.2f%% (need %.0f%%)\n",
			mark, g.BannerID, g.Target, g.Priority, g.Wishes, g.SuccessRate*100, g.Threshold*100)
	}
	if rec.Result != nil {
		fmt.Fprintln(w)
		printResult(w, rec.Result)
	}
}
