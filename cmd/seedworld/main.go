// Command seedworld generates an electorate from a seed and prints a
// breakdown, optionally writing it to the database for polsim to use.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/persistence"
	"github.com/NathanielJL/polsim-sub000/internal/worldgen"
)

func main() {
	seed := flag.Int64("seed", 42, "generation seed")
	scale := flag.Float64("scale", 1.0, "population scale multiplier")
	dbPath := flag.String("db", "", "write the generated electorate to this SQLite database")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := worldgen.DefaultGenConfig()
	cfg.Seed = *seed
	cfg.PopulationScale = *scale

	catalog, err := worldgen.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generation failed:", err)
		os.Exit(1)
	}

	fmt.Printf("seed %d: %d slices, %s people, %s eligible voters\n\n",
		*seed, catalog.Len(),
		humanize.Comma(catalog.TotalPopulation()),
		humanize.Comma(catalog.EligiblePopulation()))

	// Per-province breakdown.
	type provinceTotals struct {
		pop      int64
		eligible int64
		slices   int
	}
	byProvince := make(map[string]*provinceTotals)
	for _, s := range catalog.All() {
		t := byProvince[s.Province]
		if t == nil {
			t = &provinceTotals{}
			byProvince[s.Province] = t
		}
		t.pop += s.Population
		t.slices++
		if s.CanVote {
			t.eligible += s.Population
		}
	}

	names := make([]string, 0, len(byProvince))
	for name := range byProvince {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := byProvince[name]
		fmt.Printf("%-20s %3d slices  %12s people  %12s eligible\n",
			name, t.slices, humanize.Comma(t.pop), humanize.Comma(t.eligible))
	}

	// Largest slices.
	slices := catalog.All()
	sorted := make([]*demographics.DemographicSlice, len(slices))
	copy(sorted, slices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Population > sorted[j].Population })

	fmt.Println("\nlargest slices:")
	for i, s := range sorted {
		if i >= 10 {
			break
		}
		fmt.Printf("  %-14s %-14s %-6s %-20s %10s\n",
			s.ID, s.Occupation.Name(), s.Gender.Name(), s.Province, humanize.Comma(s.Population))
	}

	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open db:", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.SaveSlices(catalog.All()); err != nil {
			fmt.Fprintln(os.Stderr, "save slices:", err)
			os.Exit(1)
		}
		fmt.Printf("\nelectorate written to %s\n", *dbPath)
	}
}
