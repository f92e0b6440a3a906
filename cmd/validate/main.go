// Command validate checks a timetable file offline and prints what a load
// would produce, so facilitators can fix row errors before an exercise.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"crisisdrill/internal/ingest"
)

func main() {
	tz := flag.String("tz", "Europe/Paris", "timezone the timetable is normalized into")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: validate [-tz zone] <timetable.xlsx|.csv>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", *tz, err)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer f.Close()

	table, err := ingest.ReadTable(f, path)
	if err != nil {
		log.Fatalf("read: %v", err)
	}

	snap, err := ingest.NewParser(loc).ParseScenario(table)
	if err != nil {
		log.Fatalf("invalid timetable: %v", err)
	}

	fmt.Printf("OK: %d tweets, %d messages, %d countdown windows\n",
		len(snap.Tweets), len(snap.Messages), len(snap.Countdowns))
	fmt.Printf("roles: %v\n", snap.Roles)
	for _, w := range snap.Countdowns {
		fmt.Printf("countdown %s -> %s (%d min)\n",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.Minutes)
	}
}
