package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/taildeck/internal/statedb"
)

// Table column widths for recent command output
const (
	tableColTarget = 48
	tableColKind   = 10
	tableColOpens  = 5
)

// handleRecent lists recently followed subjects, newest first.
func handleRecent(args []string) {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	limit := fs.Int("n", 20, "maximum entries to show")
	_ = fs.Parse(args)

	db, err := openStateDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.RecentSubjects(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Println("No history yet. Follow something first: taildeck <file>")
		return
	}

	fmt.Printf("%-*s %-*s %*s  %s\n",
		tableColTarget, "TARGET", tableColKind, "KIND", tableColOpens, "OPENS", "LAST OPENED")
	for _, r := range rows {
		fmt.Println(formatSubjectRow(r))
	}
}

// formatSubjectRow renders one history row as a fixed-width table line.
func formatSubjectRow(r statedb.SubjectRow) string {
	target := r.Target
	if runewidth.StringWidth(target) > tableColTarget {
		target = runewidth.Truncate(target, tableColTarget-3, "...")
	}
	return fmt.Sprintf("%-*s %-*s %*d  %s",
		tableColTarget, target,
		tableColKind, string(r.Kind),
		tableColOpens, r.OpenCount,
		relativeTime(r.LastOpened))
}

// relativeTime formats a timestamp as a coarse "ago" string.
func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
