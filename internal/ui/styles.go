package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/asheshgoplani/taildeck/internal/logging"
)

var uiLog = logging.ForComponent(logging.CompUI)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Bg, Surface, Border, Text, TextDim  lipgloss.Color
	Accent, Purple, Cyan, Green, Yellow lipgloss.Color
	Orange, Red, Comment                lipgloss.Color
}{
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Purple:  lipgloss.Color("#bb9af7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Orange:  lipgloss.Color("#ff9e64"),
	Red:     lipgloss.Color("#f7768e"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Bg, Surface, Border, Text, TextDim  lipgloss.Color
	Accent, Purple, Cyan, Green, Yellow lipgloss.Color
	Orange, Red, Comment                lipgloss.Color
}{
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Purple:  lipgloss.Color("#7847bd"),
	Cyan:    lipgloss.Color("#166775"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Orange:  lipgloss.Color("#965027"),
	Red:     lipgloss.Color("#8c4351"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorSurface lipgloss.Color
	ColorBorder  lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorPurple  lipgloss.Color
	ColorCyan    lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorOrange  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorComment lipgloss.Color
)

// themeMu protects global color/style variables during live theme switches.
// Write lock held by InitTheme; read lock held by KindStyle (map access).
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name
// Must be called before any UI rendering
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == "light" {
		currentTheme = ThemeLight
		ColorBg = lightColors.Bg
		ColorSurface = lightColors.Surface
		ColorBorder = lightColors.Border
		ColorText = lightColors.Text
		ColorTextDim = lightColors.TextDim
		ColorAccent = lightColors.Accent
		ColorPurple = lightColors.Purple
		ColorCyan = lightColors.Cyan
		ColorGreen = lightColors.Green
		ColorYellow = lightColors.Yellow
		ColorOrange = lightColors.Orange
		ColorRed = lightColors.Red
		ColorComment = lightColors.Comment
	} else {
		currentTheme = ThemeDark
		ColorBg = darkColors.Bg
		ColorSurface = darkColors.Surface
		ColorBorder = darkColors.Border
		ColorText = darkColors.Text
		ColorTextDim = darkColors.TextDim
		ColorAccent = darkColors.Accent
		ColorPurple = darkColors.Purple
		ColorCyan = darkColors.Cyan
		ColorGreen = darkColors.Green
		ColorYellow = darkColors.Yellow
		ColorOrange = darkColors.Orange
		ColorRed = darkColors.Red
		ColorComment = darkColors.Comment
	}
	// Reinitialize styles with new colors
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	return currentTheme
}

func init() {
	// Default to dark theme at package init
	InitTheme("dark")
}

// Base Styles
var (
	BaseStyle  lipgloss.Style
	TitleStyle lipgloss.Style
	DimStyle   lipgloss.Style
	ErrorStyle lipgloss.Style
)

// Entry Styles (one per entry kind)
var (
	StdoutStyle lipgloss.Style
	StderrStyle lipgloss.Style
	EventStyle  lipgloss.Style
	PlanStyle   lipgloss.Style
)

// Status Bar Styles
var (
	StatusBarStyle    lipgloss.Style
	StatusKeyStyle    lipgloss.Style
	StatusFollowStyle lipgloss.Style
	StatusPausedStyle lipgloss.Style
)

// Search Styles
var (
	SearchBoxStyle     lipgloss.Style
	SearchPromptStyle  lipgloss.Style
	SearchMatchStyle   lipgloss.Style
	SearchCurrentStyle lipgloss.Style
	SearchCountStyle   lipgloss.Style
)

// kindStyleCache provides pre-allocated styles per entry kind name.
// Avoids repeated lipgloss.NewStyle() calls in the render loop.
var kindStyleCache map[string]lipgloss.Style

// defaultKindStyle is used when a kind is not in the cache
var defaultKindStyle lipgloss.Style

// initStyles initializes all style variables with current theme colors
// Called by InitTheme after color variables are set
func initStyles() {
	BaseStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBg)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent).
		Background(ColorSurface).
		Padding(0, 1)

	DimStyle = lipgloss.NewStyle().
		Foreground(ColorComment)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true)

	// Entry Styles
	StdoutStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	StderrStyle = lipgloss.NewStyle().
		Foreground(ColorRed)

	EventStyle = lipgloss.NewStyle().
		Foreground(ColorCyan)

	PlanStyle = lipgloss.NewStyle().
		Foreground(ColorPurple).
		Bold(true)

	// Status Bar Styles
	StatusBarStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Foreground(ColorText).
		Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	StatusFollowStyle = lipgloss.NewStyle().
		Foreground(ColorGreen).
		Bold(true)

	StatusPausedStyle = lipgloss.NewStyle().
		Foreground(ColorYellow).
		Bold(true)

	// Search Styles
	SearchBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1).
		Foreground(ColorText)

	SearchPromptStyle = lipgloss.NewStyle().
		Foreground(ColorPurple).
		Bold(true)

	SearchMatchStyle = lipgloss.NewStyle().
		Background(ColorYellow).
		Foreground(ColorBg).
		Bold(true)

	SearchCurrentStyle = lipgloss.NewStyle().
		Background(ColorOrange).
		Foreground(ColorBg).
		Bold(true)

	SearchCountStyle = lipgloss.NewStyle().
		Foreground(ColorComment)

	kindStyleCache = map[string]lipgloss.Style{
		"stdout": StdoutStyle,
		"stderr": StderrStyle,
		"event":  EventStyle,
	}

	defaultKindStyle = lipgloss.NewStyle().Foreground(ColorText)
}

// KindStyle returns cached style for an entry kind or the default.
// Read-locked to protect against concurrent map access during live theme switches.
func KindStyle(kind string) lipgloss.Style {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if style, ok := kindStyleCache[kind]; ok {
		return style
	}
	return defaultKindStyle
}

// FollowIndicator returns a styled follow-state marker for the status bar.
// ● following the tail, ◐ paused by a scroll, ✕ feed error
func FollowIndicator(state string) string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	switch state {
	case "following":
		return StatusFollowStyle.Render("●")
	case "paused":
		return StatusPausedStyle.Render("◐")
	case "error":
		return ErrorStyle.Render("✕")
	default:
		return DimStyle.Render("○")
	}
}
