package main

import (
	"strings"
	"testing"
	"time"

	"github.com/asheshgoplani/taildeck/internal/statedb"
)

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := relativeTime(tc.t); got != tc.want {
				t.Errorf("relativeTime = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatSubjectRow(t *testing.T) {
	row := statedb.SubjectRow{
		Target:     "/var/log/syslog",
		Kind:       statedb.SubjectFile,
		OpenCount:  3,
		LastOpened: time.Now().Add(-5 * time.Minute),
	}

	line := formatSubjectRow(row)
	for _, want := range []string{"/var/log/syslog", "file", "3", "5m ago"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatSubjectRow = %q, missing %q", line, want)
		}
	}

	row.Target = strings.Repeat("x", tableColTarget+20)
	line = formatSubjectRow(row)
	if !strings.Contains(line, "...") {
		t.Errorf("formatSubjectRow = %q, want truncated target", line)
	}
	if strings.Contains(line, row.Target) {
		t.Errorf("formatSubjectRow kept over-wide target: %q", line)
	}
}

func TestOpenStateDBCreatesDir(t *testing.T) {
	t.Setenv("TAILDECK_DIR", t.TempDir()+"/nested")

	db, err := openStateDB()
	if err != nil {
		t.Fatalf("openStateDB: %v", err)
	}
	defer db.Close()

	if _, err := db.RecentSubjects(5); err != nil {
		t.Errorf("RecentSubjects on fresh db: %v", err)
	}
}
