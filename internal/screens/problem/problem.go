package problem

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/screen"
	"github.com/ytakagi/excelquiz/internal/ui/components"
	"github.com/ytakagi/excelquiz/internal/ui/layout"
	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

// ProblemScreen renders one chapter's fill-in-the-blank problem with a
// selector per blank.
type ProblemScreen struct {
	chapter *catalog.Chapter
	answers map[string]string
	selects []components.Select
	focused int
	notice  string
}

var _ screen.Screen = (*ProblemScreen)(nil)
var _ screen.KeyHintProvider = (*ProblemScreen)(nil)

// New creates a ProblemScreen. answers carries any in-progress
// selections being restored.
func New(ch *catalog.Chapter, answers map[string]string) *ProblemScreen {
	s := &ProblemScreen{
		chapter: ch,
		answers: make(map[string]string, len(ch.BlanksInOrder)),
	}
	for _, id := range ch.BlanksInOrder {
		sel := components.NewSelect(ch.Choices, "未選択")
		if v, ok := answers[id]; ok {
			sel.SetValue(v)
			s.answers[id] = v
		}
		s.selects = append(s.selects, sel)
	}
	return s
}

func (s *ProblemScreen) Init() tea.Cmd {
	return nil
}

func (s *ProblemScreen) Title() string {
	return fmt.Sprintf("第%d章 %s", s.chapter.ID, s.chapter.Title)
}

func (s *ProblemScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "空欄の移動"},
		{Key: "←→", Description: "選択肢"},
		{Key: "Enter", Description: "採点"},
		{Key: "Esc", Description: "戻る"},
	}
}

func (s *ProblemScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "esc":
		return s, func() tea.Msg { return router.BackToChaptersMsg{} }
	case "up", "k", "shift+tab":
		if s.focused > 0 {
			s.focused--
		}
		return s, nil
	case "down", "j", "tab":
		if s.focused < len(s.selects)-1 {
			s.focused++
		}
		return s, nil
	case "left":
		s.selects[s.focused].Prev()
		return s, s.answerChanged()
	case "right":
		s.selects[s.focused].Next()
		return s, s.answerChanged()
	case "enter":
		if !s.chapter.IsComplete(s.answers) {
			s.notice = "すべての空欄を埋めてください"
			return s, nil
		}
		answers := s.answers
		chapterID := s.chapter.ID
		return s, func() tea.Msg {
			return router.SubmitMsg{ChapterID: chapterID, Answers: answers}
		}
	}
	return s, nil
}

// answerChanged folds the focused selector's value into the answer
// set, runs the chapter's input assist, and reflects any propagated
// values back into the other selectors.
func (s *ProblemScreen) answerChanged() tea.Cmd {
	s.notice = ""
	blankID := s.chapter.BlanksInOrder[s.focused]
	value := s.selects[s.focused].Value()

	if value == "" {
		delete(s.answers, blankID)
	} else {
		s.answers = catalog.ApplyAssist(s.chapter, s.answers, blankID, value)
		for i, id := range s.chapter.BlanksInOrder {
			if v, ok := s.answers[id]; ok {
				s.selects[i].SetValue(v)
			}
		}
	}

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return func() tea.Msg { return router.AnswersChangedMsg{Answers: answers} }
}

func (s *ProblemScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Render(s.chapter.ProblemDescription)))
	b.WriteString("\n\n")

	text := renderSegments(s.chapter, s.answers)
	textStyle := lipgloss.NewStyle().Foreground(theme.Text).Width(min(width-8, 72))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Render(textStyle.Render(text))))
	b.WriteString("\n\n")

	for i, id := range s.chapter.BlanksInOrder {
		label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("（%s）", id))
		row := label + " " + s.selects[i].View(i == s.focused)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if s.notice != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(s.notice)))
		b.WriteString("\n")
	} else if s.chapter.IsComplete(s.answers) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Success).Render("Enter で採点します")))
		b.WriteString("\n")
	}

	return b.String()
}

// renderSegments joins the chapter text, substituting each blank with
// its current selection or the blank's marker.
func renderSegments(ch *catalog.Chapter, answers map[string]string) string {
	var b strings.Builder
	for _, seg := range ch.Segments {
		if !seg.IsBlank() {
			b.WriteString(seg.Text)
			continue
		}
		if v, ok := answers[seg.BlankID]; ok {
			b.WriteString(fmt.Sprintf("【%s】", v))
		} else {
			b.WriteString(fmt.Sprintf("（%s）", seg.BlankID))
		}
	}
	return b.String()
}
