// Package report renders simulation results as plain-text tables for the
// command line.
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/MJE43/sicbo-sim/internal/bankroll"
	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
	"github.com/MJE43/sicbo-sim/internal/stats"
)

// DefaultBet is the nominal stake used to express expected values.
const DefaultBet = 100

// Options controls the batch report.
type Options struct {
	Bet float64
}

// printer keeps the first write error so sections can print unconditionally.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) section(title string) {
	p.printf("\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// Roll writes a walkthrough of a single classified roll.
func Roll(w io.Writer, o games.Outcome) error {
	p := &printer{w: w}
	p.printf("Dice: %d, %d, %d\n", o.Dice[0], o.Dice[1], o.Dice[2])
	p.printf("Total: %d\n", o.Total)
	p.printf("HI: %t  LO: %t  11: %t  Triple: %t\n", o.IsHi, o.IsLo, o.IsHiLo11, o.IsTriple)
	p.printf("Low combo (1,2,3): %s\n", o.LowCombo)
	p.printf("High combo (4,5,6): %s\n", o.HighCombo)

	p.printf("Face counts:")
	for f := 1; f <= engine.Faces; f++ {
		p.printf(" %d=%d", f, o.Counts[f])
	}
	p.printf("\n")
	p.printf("X_LO: %s\n", faceList(o.XLo))
	p.printf("X_HI: %s\n", faceList(o.XHi))
	return p.err
}

func faceList(flags [engine.Faces + 1]bool) string {
	var faces []string
	for f := 1; f <= engine.Faces; f++ {
		if flags[f] {
			faces = append(faces, fmt.Sprint(f))
		}
	}
	if len(faces) == 0 {
		return "none"
	}
	return strings.Join(faces, ", ")
}

// Batch writes the probability snapshot followed by the EV table. Wagers
// left out of the EV table are listed with their raw multiplier tables.
func Batch(w io.Writer, snap *stats.Snapshot, ev *stats.EVTable, cat *catalog.Catalog, opts Options) error {
	bet := opts.Bet
	if bet <= 0 {
		bet = DefaultBet
	}
	p := &printer{w: w}

	p.printf("Trials: %s\n", humanize.Comma(int64(snap.Trials)))

	p.section("Basic probabilities")
	p.printf("  HI      %.4f\n", snap.Hi)
	p.printf("  LO      %.4f\n", snap.Lo)
	p.printf("  11      %.4f\n", snap.Eleven)
	p.printf("  Triple  %.4f\n", snap.Triple)

	p.section("Total distribution")
	for total := games.MinTotal; total <= games.MaxTotal; total++ {
		p.printf("  %2d  %.4f\n", total, snap.TotalDistribution[total])
	}

	p.section("Face counts")
	for face := 1; face <= engine.Faces; face++ {
		p.printf("  face %d:", face)
		counts := snap.FaceCounts[face]
		for _, k := range slices.Sorted(maps.Keys(counts)) {
			p.printf("  %dx %.4f", k, counts[k])
		}
		p.printf("\n")
	}

	p.section("Combos")
	for _, g := range []games.ComboGroup{games.LowGroup, games.HighGroup} {
		tiers := snap.Combo(g)
		f := g.Faces()
		p.printf("  %s (%d,%d,%d)  two of three %.4f  all three %.4f\n",
			g, f[0], f[1], f[2], tiers.TwoOfThree, tiers.AllThree)
	}

	p.section("X_LO / X_HI")
	for face := 1; face <= engine.Faces; face++ {
		p.printf("  %d  lo %.4f  hi %.4f\n", face, snap.XLo[face], snap.XHi[face])
	}

	p.section("Pairs")
	for _, pair := range games.AllPairs() {
		p.printf("  %s  %.4f\n", pair, snap.PairProbability(pair.A, pair.B))
	}

	if ev != nil {
		p.section(fmt.Sprintf("Expected value (bet %s)", humanize.CommafWithDigits(bet, 2)))
		p.printf("  %-20s %-8s %11s %10s %10s %12s\n", "wager", "select", "probability", "multiplier", "ev", "return")
		for _, e := range ev.Entries {
			p.printf("  %-20s %-8s %11.4f %10.2f %10.4f %12s\n",
				e.WagerID, selectionLabel(e), e.Probability, e.Multiplier, e.EV,
				humanize.CommafWithDigits(e.EV*bet, 2))
		}

		p.section("House edge")
		for _, id := range []string{"hi", "lo", "eleven"} {
			if e, ok := ev.Lookup(id, "", 0); ok {
				p.printf("  %-8s %7.2f%%\n", id, (1-e.EV)*100)
			}
		}

		if len(ev.Excluded) > 0 && cat != nil {
			p.section("Randomized payouts (display only)")
			for _, id := range ev.Excluded {
				wager, ok := cat.Get(id)
				if !ok {
					continue
				}
				p.printf("  %-20s %s\n", id, tableLabel(wager.Payout))
			}
		}
	}
	return p.err
}

func selectionLabel(e stats.EVEntry) string {
	switch {
	case e.Selection == "" && e.Count == 0:
		return "-"
	case e.Count == 0:
		return e.Selection
	default:
		return fmt.Sprintf("%s x%d", e.Selection, e.Count)
	}
}

func tableLabel(p catalog.Payout) string {
	if p.Kind == catalog.PayoutRandomizedSchedule {
		parts := make([]string, 0, catalog.MaxMatches)
		for k := 1; k <= catalog.MaxMatches; k++ {
			parts = append(parts, fmt.Sprintf("x%d %v", k, p.ScheduleTable[k]))
		}
		return strings.Join(parts, "  ")
	}
	return fmt.Sprint(p.Table)
}

// Cohort writes a cohort summary and one line per session.
func Cohort(w io.Writer, c *bankroll.Cohort) error {
	p := &printer{w: w}
	p.printf("Wager: %s  Sessions: %s  Games: %s  Seed: %d\n",
		c.WagerType, humanize.Comma(int64(c.NumSessions)), humanize.Comma(int64(c.NumGames)), c.Seed)
	p.printf("Bet: %s  Initial capital: %s\n", money(c.BetAmount), money(c.InitialCapital))
	p.printf("Total staked: %s  Total won: %s\n", money(c.TotalStaked), money(c.TotalWon))
	p.printf("Overall RTP: %.2f%%  Bankrupt: %d/%d\n", c.OverallRTP*100, c.BankruptSessions, c.NumSessions)

	if len(c.Results) == 0 {
		return p.err
	}
	p.section("Sessions")
	for i, s := range c.Results {
		p.printf("  %4d  final %14s  games %6s  rtp %7.2f%%  %s\n",
			i+1, money(s.FinalCapital), humanize.Comma(int64(s.GamesPlayed)), s.RTP*100, s.Terminal)
	}
	return p.err
}

func money(d decimal.Decimal) string {
	return humanize.CommafWithDigits(d.Round(2).InexactFloat64(), 2)
}
