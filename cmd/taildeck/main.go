package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asheshgoplani/taildeck/internal/config"
	"github.com/asheshgoplani/taildeck/internal/logging"
	"github.com/asheshgoplani/taildeck/internal/source"
	"github.com/asheshgoplani/taildeck/internal/statedb"
	"github.com/asheshgoplani/taildeck/internal/stream"
	"github.com/asheshgoplani/taildeck/internal/ui"
)

const Version = "0.3.1"

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// Allow user override via environment variable
	// TAILDECK_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("TAILDECK_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	// Explicit TrueColor support
	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Check TERM for capability hints
	termName := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(termName, t) || termName == t {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	// Common terminal emulators announce themselves via env vars
	if os.Getenv("WT_SESSION") != "" || // Windows Terminal
		os.Getenv("ITERM_SESSION_ID") != "" || // iTerm2
		os.Getenv("TERMINAL_EMULATOR") != "" || // JetBrains terminals
		os.Getenv("KONSOLE_VERSION") != "" { // Konsole
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Fallback: ANSI256 works in SSH and older emulators
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("taildeck v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "recent":
			handleRecent(args[1:])
			return
		case "run":
			handleRun(args[1:])
			return
		case "transcript":
			handleTranscript(args[1:])
			return
		case "ws":
			handleWS(args[1:])
			return
		}
	}

	if len(args) == 0 {
		printHelp()
		os.Exit(1)
	}

	// Default: follow a plain file
	path, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	src, err := source.NewFileTail(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	runPane(filepath.Base(path), src, path, statedb.SubjectFile)
}

func handleRun(args []string) {
	// Accept both "run -- cmd args" and "run cmd args"
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taildeck run -- <command> [args...]")
		os.Exit(1)
	}
	src, err := source.NewCommandRun(args[0], args[1:]...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	runPane(args[0], src, strings.Join(args, " "), statedb.SubjectCommand)
}

func handleTranscript(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taildeck transcript <file.jsonl>")
		os.Exit(1)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	src, err := source.NewTranscriptTail(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	runPane(filepath.Base(path), src, path, statedb.SubjectTranscript)
}

func handleWS(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taildeck ws <url>")
		os.Exit(1)
	}
	runPane(args[0], source.NewWSFeed(args[0]), args[0], statedb.SubjectWebsocket)
}

// runPane wires config, logging, history and theme, then runs the TUI.
func runPane(title string, src source.Source, subject string, kind statedb.SubjectKind) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: taildeck needs an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	initLogging(cfg)
	defer logging.Shutdown()

	// Theme: "system" follows the OS preference live
	var themes *ui.ThemeWatcher
	theme := cfg.Theme
	if theme == "system" {
		theme = ui.SystemTheme()
		themes = ui.NewThemeWatcher(context.Background())
	}
	ui.InitTheme(theme)

	recordSubject(cfg, subject, kind)

	opts := stream.Options{
		QuietWindow:     time.Duration(cfg.Stream.QuietWindowMS) * time.Millisecond,
		BurstThreshold:  cfg.Stream.BurstThreshold,
		BottomTolerance: cfg.Stream.BottomTolerance,
	}

	pane := ui.NewStreamPane(title, src, opts, themes)
	p := tea.NewProgram(
		pane,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recordFollow(cfg, subject, pane.FollowedAtQuit())
}

// recordFollow persists whether the viewer was left pinned to the tail.
func recordFollow(cfg *config.Config, subject string, follow bool) {
	if !cfg.History.HistoryEnabled() {
		return
	}
	db, err := openStateDB()
	if err != nil {
		return
	}
	defer db.Close()
	_ = db.SetFollow(subject, follow)
}

// initLogging sets up structured logging (JSONL with rotation).
// When TAILDECK_DEBUG is set, logs go to ~/.taildeck/debug.log.
// When not set, logs are discarded to avoid TUI interference.
func initLogging(cfg *config.Config) {
	debugMode := os.Getenv("TAILDECK_DEBUG") != ""
	baseDir, err := config.Dir()
	if err != nil {
		return
	}

	logCfg := logging.Config{
		Debug:                 debugMode,
		LogDir:                baseDir,
		Level:                 "debug",
		Format:                "json",
		MaxSizeMB:             10,
		MaxBackups:            5,
		MaxAgeDays:            10,
		Compress:              true,
		AggregateIntervalSecs: 30,
	}

	// Override defaults from user config if set
	ls := cfg.Logs
	if ls.DebugLevel != "" {
		logCfg.Level = ls.DebugLevel
	}
	if ls.DebugFormat != "" {
		logCfg.Format = ls.DebugFormat
	}
	if ls.MaxSizeMB > 0 {
		logCfg.MaxSizeMB = ls.MaxSizeMB
	}
	if ls.MaxBackups > 0 {
		logCfg.MaxBackups = ls.MaxBackups
	}
	if ls.MaxAgeDays > 0 {
		logCfg.MaxAgeDays = ls.MaxAgeDays
	}

	logging.Init(logCfg)

	if debugMode {
		logging.ForComponent(logging.CompUI).Info("started",
			slog.Int("pid", os.Getpid()),
			slog.String("version", Version))

		// SIGUSR1 dumps the ring buffer for post-mortem debugging
		usr1Chan := make(chan os.Signal, 1)
		signal.Notify(usr1Chan, syscall.SIGUSR1)
		go func() {
			for range usr1Chan {
				dumpPath := filepath.Join(baseDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
				if err := logging.DumpRingBuffer(dumpPath); err != nil {
					logging.ForComponent(logging.CompUI).Error("crash_dump_failed",
						slog.String("error", err.Error()))
				} else {
					logging.ForComponent(logging.CompUI).Info("crash_dump_written",
						slog.String("path", dumpPath))
				}
			}
		}()
	}
}

// recordSubject updates the recent-subjects history, when enabled.
func recordSubject(cfg *config.Config, subject string, kind statedb.SubjectKind) {
	if !cfg.History.HistoryEnabled() {
		return
	}
	db, err := openStateDB()
	if err != nil {
		logging.ForComponent(logging.CompStorage).Warn("history_open_failed",
			slog.String("error", err.Error()))
		return
	}
	defer db.Close()

	if err := db.TouchSubject(subject, kind); err != nil {
		logging.ForComponent(logging.CompStorage).Warn("history_touch_failed",
			slog.String("error", err.Error()))
		return
	}
	limit := cfg.History.Limit
	if limit <= 0 {
		limit = 50
	}
	_ = db.PruneSubjects(limit)
}

func openStateDB() (*statedb.StateDB, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := statedb.Open(filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func printHelp() {
	fmt.Println(`taildeck - follow growing output in the terminal

Usage:
  taildeck <file>                  Follow a plain file
  taildeck run -- <cmd> [args]     Run a command and follow its output
  taildeck transcript <file>       Follow an agent transcript (.jsonl)
  taildeck ws <url>                Follow a websocket feed
  taildeck recent                  List recently followed subjects
  taildeck version                 Print version
  taildeck help                    Show this help

Keys:
  j/k, arrows     scroll        G / End   jump to bottom
  f/b, pgdn/pgup  page          g / Home  jump to top
  /               search        n / N     next / previous match
  q               quit

Environment:
  TAILDECK_DIR    base directory (default ~/.taildeck)
  TAILDECK_DEBUG  write debug logs to <dir>/debug.log
  TAILDECK_COLOR  truecolor, 256, 16, none`)
}
