package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Garsondee/Tank-Arena/internal/game"
	"github.com/Garsondee/Tank-Arena/internal/logging"
	"github.com/Garsondee/Tank-Arena/internal/match"
)

type runStats struct {
	runIndex int
	res      match.Result
	err      error
}

func main() {
	fs := pflag.NewFlagSet("headless-match", pflag.ExitOnError)
	runs := fs.Int("runs", 5, "number of headless duels")
	ticks := fs.Int("ticks", 3600, "tick cap per duel")
	seedBase := fs.Int64("seed-base", 42, "base RNG seed for run 1")
	seedStep := fs.Int64("seed-step", 1, "seed increment between runs")
	latency := fs.Duration("latency", 20*time.Millisecond, "one-way pipe latency")
	verbose := fs.Bool("verbose", false, "record verbose match events")
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = fs.Parse(os.Args[1:])

	if *runs <= 0 {
		fmt.Println("error: --runs must be > 0")
		return
	}
	if *ticks <= 0 {
		fmt.Println("error: --ticks must be > 0")
		return
	}

	logger := logging.New(os.Stderr, *logLevel, "console")

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d latency=%s\n\n", *runs, *ticks, *seedBase, *seedStep, *latency)

	step := *seedStep
	all := make([]runStats, 0, *runs)
	for i := 0; i < *runs; i++ {
		seed := *seedBase + int64(i)*step
		rs := runDuel(i+1, match.Config{Seed: seed, Latency: *latency, Verbose: *verbose, Logger: logger}, *ticks)
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)
}

func runDuel(runIndex int, cfg match.Config, ticks int) runStats {
	rs := runStats{runIndex: runIndex, res: match.Result{Seed: cfg.Seed}}
	d, err := match.NewDuel(cfg)
	if err != nil {
		rs.err = err
		return rs
	}
	defer d.Close()
	if err := d.Handshake(5 * time.Second); err != nil {
		rs.err = err
		return rs
	}
	rs.res = d.Run(ticks)
	return rs
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.res.Seed)
	if rs.err != nil {
		fmt.Printf("error: %v\n\n", rs.err)
		return
	}
	fmt.Printf("outcome: host=%q guest=%q agreed=%t\n",
		rs.res.HostOutcome.Description(), rs.res.GuestOutcome.Description(), rs.res.Agreed())
	fmt.Printf("event_totals: ticks=%d shots=%d hits=%d bounces=%d dropped=%d\n\n",
		rs.res.Ticks, rs.res.Shots, rs.res.Hits, rs.res.Bounces, rs.res.Dropped)
}

// winnerCounts tallies decided runs by the host's view of the winner.
// Undecided and failed runs are counted separately.
func winnerCounts(all []runStats) (wins map[string]int, draws, undecided int) {
	wins = map[string]int{}
	for _, rs := range all {
		if rs.err != nil {
			undecided++
			continue
		}
		switch rs.res.HostOutcome.Result {
		case game.ResultWin:
			wins[rs.res.HostOutcome.Winner.Name]++
		case game.ResultDraw:
			draws++
		default:
			undecided++
		}
	}
	return wins, draws, undecided
}

func disagreements(all []runStats) []int64 {
	var seeds []int64
	for _, rs := range all {
		if rs.err == nil && !rs.res.Agreed() {
			seeds = append(seeds, rs.res.Seed)
		}
	}
	return seeds
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", n, m[n]))
	}
	return strings.Join(parts, " ")
}

func printAggregate(all []runStats) {
	var ticks, shots, hits, bounces, dropped, failed int
	for _, rs := range all {
		if rs.err != nil {
			failed++
			continue
		}
		ticks += rs.res.Ticks
		shots += rs.res.Shots
		hits += rs.res.Hits
		bounces += rs.res.Bounces
		dropped += rs.res.Dropped
	}
	wins, draws, undecided := winnerCounts(all)
	ok := len(all) - failed

	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("runs=%d failed=%d\n", len(all), failed)
	fmt.Printf("winners: %s draws=%d undecided=%d\n", joinCounts(wins), draws, undecided)
	if ok > 0 {
		fmt.Printf("mean: ticks=%.1f shots=%.1f hits=%.1f bounces=%.1f\n",
			float64(ticks)/float64(ok), float64(shots)/float64(ok), float64(hits)/float64(ok), float64(bounces)/float64(ok))
	}
	fmt.Printf("dropped_messages=%d\n", dropped)
	if seeds := disagreements(all); len(seeds) > 0 {
		fmt.Printf("DISAGREEMENT seeds=%v\n", seeds)
	} else {
		fmt.Printf("peers agreed on every outcome\n")
	}
}
