package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/taildeck/internal/stream"
	"github.com/sahilm/fuzzy"
)

// SearchBar is the inline search component of the stream pane. While
// visible it owns key input; matches are recomputed on every keystroke.
// Substring matching (case-insensitive) runs first; when it finds
// nothing, fuzzy matching takes over for typo tolerance.
type SearchBar struct {
	input   textinput.Model
	visible bool

	entries []stream.Entry
	matches []int // ascending entry indices
	pointer int   // index into matches, -1 when empty
}

// NewSearchBar creates a hidden search bar.
func NewSearchBar() *SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 200
	ti.Width = 40

	return &SearchBar{
		input:   ti,
		pointer: -1,
	}
}

// SetEntries sets the entry list to search through and recomputes matches
// for the current query. The pointer stays on the same entry when a new
// snapshot still matches it; appends must not yank an active navigation.
func (s *SearchBar) SetEntries(entries []stream.Entry) {
	current := s.Current()
	s.entries = entries
	s.updateMatches()
	if current < 0 {
		return
	}
	for i, idx := range s.matches {
		if idx == current {
			s.pointer = i
			return
		}
	}
}

// Show makes the bar visible and focuses the input.
func (s *SearchBar) Show() {
	s.visible = true
	s.input.Focus()
}

// Hide blurs and hides the bar. The query and matches survive so n/N
// keep cycling after dismissal.
func (s *SearchBar) Hide() {
	s.visible = false
	s.input.Blur()
}

// Clear hides the bar and drops the query and matches.
func (s *SearchBar) Clear() {
	s.Hide()
	s.input.SetValue("")
	s.matches = nil
	s.pointer = -1
}

// IsVisible returns whether the bar currently owns key input.
func (s *SearchBar) IsVisible() bool {
	return s.visible
}

// Query returns the current search text.
func (s *SearchBar) Query() string {
	return s.input.Value()
}

// Matches returns the matched entry indices in ascending order.
func (s *SearchBar) Matches() []int {
	return s.matches
}

// Pointer returns the index into Matches of the current match, or -1.
func (s *SearchBar) Pointer() int {
	return s.pointer
}

// Current returns the entry index of the current match, or -1.
func (s *SearchBar) Current() int {
	if s.pointer < 0 || s.pointer >= len(s.matches) {
		return -1
	}
	return s.matches[s.pointer]
}

// Next advances the pointer to the following match, wrapping around.
func (s *SearchBar) Next() {
	if len(s.matches) == 0 {
		return
	}
	s.pointer = (s.pointer + 1) % len(s.matches)
}

// Prev moves the pointer to the preceding match, wrapping around.
func (s *SearchBar) Prev() {
	if len(s.matches) == 0 {
		return
	}
	s.pointer--
	if s.pointer < 0 {
		s.pointer = len(s.matches) - 1
	}
}

// Update handles messages while the bar is visible.
// Returns whether the message was consumed and any command to execute.
func (s *SearchBar) Update(msg tea.Msg) (bool, tea.Cmd) {
	if !s.visible {
		return false, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			s.Clear()
			return true, nil

		case "enter":
			// Keep matches, hand key input back to the pane
			s.Hide()
			return true, nil

		default:
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			s.updateMatches()
			return true, cmd
		}
	}

	return false, nil
}

// entrySource implements fuzzy.Source over an entry slice.
type entrySource []stream.Entry

func (e entrySource) String(i int) string { return e[i].Text }
func (e entrySource) Len() int            { return len(e) }

// updateMatches recomputes the match list for the current query.
// The pointer resets to the first match.
func (s *SearchBar) updateMatches() {
	query := s.input.Value()
	if query == "" {
		s.matches = nil
		s.pointer = -1
		return
	}

	s.matches = s.matches[:0]
	queryLower := strings.ToLower(query)
	for i, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Text), queryLower) {
			s.matches = append(s.matches, i)
		}
	}

	if len(s.matches) == 0 {
		// Typo tolerance: fall back to fuzzy matching
		for _, m := range fuzzy.FindFrom(query, entrySource(s.entries)) {
			s.matches = append(s.matches, m.Index)
		}
		sort.Ints(s.matches)
	}

	if len(s.matches) == 0 {
		s.pointer = -1
	} else {
		s.pointer = 0
	}
}

// View renders the search line: prompt, input, and match count.
func (s *SearchBar) View() string {
	if !s.visible {
		return ""
	}

	count := "no matches"
	if n := len(s.matches); n > 0 {
		count = fmt.Sprintf("%d/%d", s.pointer+1, n)
	}

	return SearchPromptStyle.Render("/") + s.input.View() + " " + SearchCountStyle.Render(count)
}
