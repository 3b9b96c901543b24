package result

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/advice"
	"github.com/ytakagi/excelquiz/internal/grading"
	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/screen"
	"github.com/ytakagi/excelquiz/internal/ui/layout"
	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

// adviceSeq makes advice responses distinguishable across screen
// rebuilds so a late response never lands on a newer attempt's view.
var adviceSeq atomic.Int64

type adviceLoadedMsg struct {
	Seq  int64
	Text string
	Err  error
}

// ResultScreen shows the graded attempt, each blank's verdict, and an
// AI review of the result.
type ResultScreen struct {
	entry   grading.ScoreEntry
	adviser *advice.Adviser

	seq        int64
	adviceText string
	adviceErr  string
	loading    bool
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen for a graded entry.
func New(entry grading.ScoreEntry, adviser *advice.Adviser) *ResultScreen {
	return &ResultScreen{entry: entry, adviser: adviser}
}

// Init requests the AI review. The request is made once per screen,
// not once per render.
func (s *ResultScreen) Init() tea.Cmd {
	if s.adviser == nil || !s.adviser.Available() {
		return nil
	}
	s.seq = adviceSeq.Add(1)
	s.loading = true

	seq := s.seq
	adviser := s.adviser
	entry := s.entry
	return func() tea.Msg {
		text, err := adviser.ForResult(context.Background(), entry)
		return adviceLoadedMsg{Seq: seq, Text: text, Err: err}
	}
}

func (s *ResultScreen) Title() string {
	return fmt.Sprintf("採点結果 第%d章", s.entry.ChapterID)
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "もう一度"},
		{Key: "h", Description: "この章の履歴"},
		{Key: "Esc", Description: "章の選択へ"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case adviceLoadedMsg:
		if msg.Seq != s.seq {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.adviceErr = "AI講評を取得できませんでした"
		} else {
			s.adviceText = msg.Text
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return s, func() tea.Msg { return router.RetryMsg{} }
		case "h":
			id := s.entry.ChapterID
			return s, func() tea.Msg { return router.OpenHistoryMsg{ChapterFilter: id} }
		case "esc", "b":
			return s, func() tea.Msg { return router.BackToChaptersMsg{} }
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	var b strings.Builder

	total := len(s.entry.CorrectAns)
	correct := s.entry.CorrectCount()

	b.WriteString("\n")
	scoreStyle := lipgloss.NewStyle().
		Foreground(theme.ScoreColor(s.entry.Score)).Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		scoreStyle.Render(fmt.Sprintf("%d 点", s.entry.Score))))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Subtitle.Render(fmt.Sprintf("%d問中 %d問正解", total, correct))))
	b.WriteString("\n\n")

	for _, blankID := range blanksOf(s.entry) {
		user := s.entry.UserAnswers[blankID]
		want := s.entry.CorrectAns[blankID]

		var line string
		if user == want {
			mark := lipgloss.NewStyle().Foreground(theme.Success).Render("○")
			line = fmt.Sprintf("%s （%s）%s", mark, blankID, user)
		} else {
			mark := lipgloss.NewStyle().Foreground(theme.Error).Render("×")
			if user == "" {
				user = "未回答"
			}
			wrong := lipgloss.NewStyle().Foreground(theme.Error).Strikethrough(true).Render(user)
			right := lipgloss.NewStyle().Foreground(theme.Success).Render(want)
			line = fmt.Sprintf("%s （%s）%s → %s", mark, blankID, wrong, right)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.renderAdvice(width))

	return b.String()
}

func (s *ResultScreen) renderAdvice(width int) string {
	var body string
	switch {
	case s.loading:
		body = lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("AI講評を取得中...")
	case s.adviceErr != "":
		body = lipgloss.NewStyle().Foreground(theme.TextDim).Render(s.adviceErr)
	case s.adviceText != "":
		body = lipgloss.NewStyle().Foreground(theme.Text).
			Width(min(width-12, 68)).Render(s.adviceText)
	default:
		return ""
	}

	title := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("AI講評")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Render(title+"\n\n"+body)) + "\n"
}

// blanksOf recovers the blank order from the entry's segment snapshot.
func blanksOf(e grading.ScoreEntry) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, seg := range e.Segments {
		if seg.IsBlank() && !seen[seg.BlankID] {
			seen[seg.BlankID] = true
			ids = append(ids, seg.BlankID)
		}
	}
	return ids
}
