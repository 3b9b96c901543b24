package components

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

// Select is a horizontal cycling selector over a fixed choice list, the
// terminal stand-in for a dropdown. The empty selection renders a
// placeholder.
type Select struct {
	Choices     []string
	Placeholder string
	index       int // 0 = unselected, 1..len = Choices[index-1]
}

// NewSelect creates a selector with nothing chosen.
func NewSelect(choices []string, placeholder string) Select {
	return Select{Choices: choices, Placeholder: placeholder}
}

// Value returns the chosen string, or "" when nothing is chosen.
func (s Select) Value() string {
	if s.index == 0 {
		return ""
	}
	return s.Choices[s.index-1]
}

// SetValue selects the given choice if it exists, else clears.
func (s *Select) SetValue(v string) {
	s.index = 0
	for i, c := range s.Choices {
		if c == v {
			s.index = i + 1
			return
		}
	}
}

// Next cycles forward, Prev cycles backward. Both wrap through the
// unselected state.
func (s *Select) Next() {
	s.index = (s.index + 1) % (len(s.Choices) + 1)
}

func (s *Select) Prev() {
	s.index--
	if s.index < 0 {
		s.index = len(s.Choices)
	}
}

// View renders the selector. focused draws the cycling arrows.
func (s Select) View(focused bool) string {
	label := s.Value()
	style := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if label == "" {
		label = s.Placeholder
		style = lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	}

	if focused {
		return lipgloss.NewStyle().Foreground(theme.Primary).Render("◀ ") +
			style.Render(fmt.Sprintf("%-12s", label)) +
			lipgloss.NewStyle().Foreground(theme.Primary).Render(" ▶")
	}
	return "  " + style.Render(fmt.Sprintf("%-12s", label)) + "  "
}
