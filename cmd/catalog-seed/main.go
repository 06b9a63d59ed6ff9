// catalog-seed creates or refreshes a SQLite equipment catalog database
// with the shipped reference loadout. Point restocalc at the result with
// catalog.backend: sqlite.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mfairbank/restocalc/internal/catalog"
)

func main() {
	dbFile := flag.String("db", "catalog.db", "Path to the SQLite catalog database to create or update")
	flag.Parse()

	path, _ := filepath.Abs(*dbFile)

	entries := catalog.ReferenceEntries()
	if err := catalog.Seed(path, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d catalog entries into %s\n", len(entries), path)
	for _, e := range entries {
		switch e.Group {
		case catalog.GroupDehumidifier:
			fmt.Printf("  %-14s %-32s %6.0f L/day  $%.2f/day\n", e.ID, e.Name, e.CapacityLPD, float64(e.DailyRateCents)/100)
		default:
			fmt.Printf("  %-14s %-32s %6.0f CFM    $%.2f/day\n", e.ID, e.Name, e.AirflowCFM, float64(e.DailyRateCents)/100)
		}
	}
}
