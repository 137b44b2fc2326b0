package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/taildeck/internal/source"
	"github.com/asheshgoplani/taildeck/internal/stream"
)

// frameInterval approximates one layout pass. Deferred scroll commands
// queued during a burst are flushed after this delay so remeasured
// heights are in place first.
const frameInterval = 16 * time.Millisecond

// sourceMsg carries one event from the feed goroutine.
type sourceMsg struct {
	ev source.Event
	ok bool
}

// commitMsg carries a coalesced update ready to apply on the UI goroutine.
type commitMsg struct {
	update stream.Update
}

// frameMsg triggers the post-commit layout pass.
type frameMsg struct{}

// themeMsg reports an OS dark mode flip.
type themeMsg struct {
	isDark bool
}

// StreamPane is the bubbletea model for a single followed feed. It wires
// the feed's events through the renderer and paints the committed entries
// into the terminal window.
type StreamPane struct {
	title  string
	src    source.Source
	ctrl   *stream.Controller
	vp     *ViewportAdapter
	search *SearchBar
	themes *ThemeWatcher

	// lines is the full rendered content, re-built on commit and resize.
	lines []string

	width    int
	height   int
	ready    bool
	quitting bool

	// srcDone flips when the feed channel closes; the pane keeps showing
	// what it has.
	srcDone bool

	// followAtQuit captures whether the viewer was still pinned to the
	// tail when the user quit, for the subject history.
	followAtQuit bool
}

// NewStreamPane creates a pane following src. The title shows in the
// status bar; themes may be nil when the theme is fixed.
func NewStreamPane(title string, src source.Source, opts stream.Options, themes *ThemeWatcher) *StreamPane {
	vp := NewViewportAdapter()
	return &StreamPane{
		title:  title,
		src:    src,
		ctrl:   stream.NewController(vp, opts),
		vp:     vp,
		search: NewSearchBar(),
		themes: themes,
	}
}

// Controller exposes the renderer, for tests and for host wiring.
func (p *StreamPane) Controller() *stream.Controller {
	return p.ctrl
}

// FollowedAtQuit reports whether the viewer was pinned to the tail when it
// quit. Only meaningful after the program has finished.
func (p *StreamPane) FollowedAtQuit() bool {
	return p.followAtQuit
}

// Init implements tea.Model.
func (p *StreamPane) Init() tea.Cmd {
	cmds := []tea.Cmd{p.waitSource(), p.waitCommit()}
	if p.themes != nil {
		cmds = append(cmds, p.waitTheme())
	}
	return tea.Batch(cmds...)
}

// waitSource blocks on the feed channel and converts one event to a message.
func (p *StreamPane) waitSource() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-p.src.Events()
		return sourceMsg{ev: ev, ok: ok}
	}
}

// waitCommit blocks on the renderer's commit channel.
func (p *StreamPane) waitCommit() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-p.ctrl.CommitCh()
		if !ok {
			return nil
		}
		return commitMsg{update: u}
	}
}

func (p *StreamPane) waitTheme() tea.Cmd {
	return func() tea.Msg {
		isDark, ok := <-p.themes.ChangeChannel()
		if !ok {
			return nil
		}
		return themeMsg{isDark: isDark}
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// Update implements tea.Model.
func (p *StreamPane) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.ready = true
		p.vp.SetSize(msg.Width, p.contentHeight())
		p.renderAll()
		p.syncTracker()
		return p, nil

	case sourceMsg:
		return p.handleSource(msg)

	case commitMsg:
		p.search.SetEntries(msg.update.Entries)
		p.renderEntries(msg.update.Entries)
		d := p.ctrl.Apply(msg.update)
		p.syncTracker()
		cmds := []tea.Cmd{p.waitCommit()}
		if d.Deferred {
			cmds = append(cmds, nextFrame())
		}
		return p, tea.Batch(cmds...)

	case frameMsg:
		p.ctrl.FlushDeferred()
		p.syncTracker()
		return p, nil

	case themeMsg:
		if msg.isDark {
			InitTheme("dark")
		} else {
			InitTheme("light")
		}
		uiLog.Info("theme_switched", slog.Bool("dark", msg.isDark))
		p.renderAll()
		return p, p.waitTheme()

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	return p, nil
}

func (p *StreamPane) handleSource(msg sourceMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		p.srcDone = true
		return p, nil
	}
	ev := msg.ev
	switch {
	case ev.Err != nil:
		p.ctrl.SetError(ev.Err)
		uiLog.Error("feed_failed", slog.String("error", ev.Err.Error()))
	case ev.Reset:
		p.ctrl.Reset()
		p.search.Clear()
		p.lines = nil
		p.vp.SetCount(0)
	default:
		p.ctrl.Schedule(ev.Update)
	}
	return p, p.waitSource()
}

func (p *StreamPane) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The search bar owns input while visible
	if consumed, cmd := p.search.Update(msg); consumed {
		p.renderAll()
		p.navigateToMatch()
		return p, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		p.quitting = true
		p.followAtQuit = p.vp.AtBottom()
		p.src.Close()
		p.ctrl.Close()
		if p.themes != nil {
			p.themes.Close()
		}
		return p, tea.Quit

	case "up", "k":
		p.vp.LineUp(1)
		p.syncTracker()
	case "down", "j":
		p.vp.LineDown(1)
		p.syncTracker()
	case "pgup", "b":
		p.vp.PageUp()
		p.syncTracker()
	case "pgdown", "f", " ":
		p.vp.PageDown()
		p.syncTracker()
	case "u":
		p.vp.HalfPageUp()
		p.syncTracker()
	case "d":
		p.vp.HalfPageDown()
		p.syncTracker()
	case "g", "home":
		p.vp.GotoTop()
		p.syncTracker()
	case "G", "end":
		p.ctrl.ScrollToBottom(stream.MotionInstant)
		p.syncTracker()

	case "/":
		p.search.SetEntries(p.ctrl.Buffer().Entries())
		p.search.Show()
	case "n":
		p.search.Next()
		p.renderAll()
		p.navigateToMatch()
	case "N":
		p.search.Prev()
		p.renderAll()
		p.navigateToMatch()
	case "esc":
		p.search.Clear()
		p.renderAll()
	}

	return p, nil
}

// navigateToMatch feeds the current match pointer into the renderer,
// which scrolls only when the pointer actually moved.
func (p *StreamPane) navigateToMatch() {
	p.ctrl.OnMatchPointerChange(p.search.Matches(), p.search.Pointer())
	p.syncTracker()
}

// syncTracker reports the viewport geometry to the scroll tracker.
func (p *StreamPane) syncTracker() {
	top, total, client := p.vp.ScrollState()
	p.ctrl.OnScroll(top, total, client)
}

// contentHeight is the window height minus the status bar and, when
// visible, the search line.
func (p *StreamPane) contentHeight() int {
	h := p.height - 1
	if p.search.IsVisible() {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// renderAll re-renders every committed entry, for resize and theme flips.
func (p *StreamPane) renderAll() {
	p.renderEntries(p.ctrl.Buffer().Entries())
}

// renderEntries lays the given entries out into lines and records per
// entry heights in the viewport adapter.
func (p *StreamPane) renderEntries(entries []stream.Entry) {
	p.vp.SetCount(len(entries))
	p.lines = p.lines[:0]
	for i, e := range entries {
		rendered := p.renderEntry(e, i)
		p.vp.Remeasure(i, len(rendered))
		p.lines = append(p.lines, rendered...)
	}
}

// renderEntry returns the terminal lines for one entry. Long lines are
// truncated to the window width; embedded newlines produce one line each.
func (p *StreamPane) renderEntry(e stream.Entry, index int) []string {
	style := KindStyle(e.Kind.String())
	if e.Kind == stream.KindEvent && strings.HasPrefix(e.Text, "plan:") {
		style = PlanStyle
	}
	if current := p.search.Current(); current == index {
		style = SearchCurrentStyle
	} else if p.isMatch(index) {
		style = SearchMatchStyle
	}

	raw := strings.Split(strings.TrimRight(e.Text, "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if p.width > 3 && runewidth.StringWidth(line) > p.width {
			line = runewidth.Truncate(line, p.width-3, "...")
		}
		out = append(out, style.Render(line))
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func (p *StreamPane) isMatch(index int) bool {
	for _, m := range p.search.Matches() {
		if m == index {
			return true
		}
	}
	return false
}

// View implements tea.Model.
func (p *StreamPane) View() string {
	if p.quitting {
		return ""
	}
	if !p.ready {
		return "Loading..."
	}

	if err := p.ctrl.Err(); err != nil {
		return p.renderError(err)
	}

	var b strings.Builder
	if p.ctrl.Buffer().Len() == 0 {
		b.WriteString(p.renderEmpty())
	} else {
		p.vp.SetSize(p.width, p.contentHeight())
		for _, line := range p.vp.VisibleLines(p.lines) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if p.search.IsVisible() {
		b.WriteString(p.search.View())
		b.WriteString("\n")
	}
	b.WriteString(p.statusBar())
	return b.String()
}

func (p *StreamPane) renderError(err error) string {
	msg := ErrorStyle.Render("feed error: "+err.Error()) + "\n\n" +
		DimStyle.Render("q to quit")
	pad := (p.height - 3) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", pad) + msg
}

func (p *StreamPane) renderEmpty() string {
	body := DimStyle.Render("waiting for output...")
	pad := p.contentHeight() - 1
	if pad < 0 {
		pad = 0
	}
	return body + strings.Repeat("\n", pad)
}

// statusBar renders the bottom line: follow state, title, position, keys.
func (p *StreamPane) statusBar() string {
	state := "paused"
	switch {
	case p.ctrl.Err() != nil:
		state = "error"
	case p.vp.AtBottom():
		state = "following"
	}

	pos := "0%"
	if total := p.vp.TotalExtent(); total > p.vp.Height() {
		pct := (p.vp.YOffset() + p.vp.Height()) * 100 / total
		if pct > 100 {
			pct = 100
		}
		pos = fmt.Sprintf("%d%%", pct)
	} else if total > 0 {
		pos = "100%"
	}

	left := fmt.Sprintf("%s %s  %d entries  %s",
		FollowIndicator(state), p.title, p.ctrl.Buffer().Len(), pos)
	if p.srcDone {
		left += DimStyle.Render("  (ended)")
	}
	keys := StatusKeyStyle.Render("G") + DimStyle.Render(" bottom  ") +
		StatusKeyStyle.Render("/") + DimStyle.Render(" search  ") +
		StatusKeyStyle.Render("q") + DimStyle.Render(" quit")

	gap := p.width - runewidth.StringWidth(stripForWidth(left)) - 24
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Render(left + strings.Repeat(" ", gap) + keys)
}

// stripForWidth approximates display width by dropping ANSI sequences.
func stripForWidth(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		case r == '\x1b':
			inEsc = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
