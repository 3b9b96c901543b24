package chapterselect

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/grading"
	"github.com/ytakagi/excelquiz/internal/history"
	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/screen"
	"github.com/ytakagi/excelquiz/internal/ui/layout"
	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

// ChapterSelectScreen lists the quiz chapters plus entries for score
// history and the admin console.
type ChapterSelectScreen struct {
	catalog  *catalog.Catalog
	log      *history.Log
	signedIn bool

	menu       *menuState
	bestScores map[int]int
}

var _ screen.Screen = (*ChapterSelectScreen)(nil)
var _ screen.KeyHintProvider = (*ChapterSelectScreen)(nil)

// menuState is a cursor over the chapter list plus the trailing
// non-chapter entries.
type menuState struct {
	chapters []catalog.Chapter
	extras   []string
	cursor   int
}

func (m *menuState) total() int {
	return len(m.chapters) + len(m.extras)
}

// chapterAt returns the chapter under the cursor, or nil when the
// cursor sits on an extra entry.
func (m *menuState) chapterAt() *catalog.Chapter {
	if m.cursor < len(m.chapters) {
		return &m.chapters[m.cursor]
	}
	return nil
}

// extraAt returns the extra entry index, or -1 for a chapter.
func (m *menuState) extraAt() int {
	if m.cursor >= len(m.chapters) {
		return m.cursor - len(m.chapters)
	}
	return -1
}

const (
	extraHistory = iota
	extraAdmin
	extraAuth
	extraQuit
)

// New creates a ChapterSelectScreen. log supplies the per-chapter best
// scores shown beside each entry.
func New(cat *catalog.Catalog, log *history.Log, signedIn bool) *ChapterSelectScreen {
	authLabel := "ログイン"
	if signedIn {
		authLabel = "ログアウト"
	}

	s := &ChapterSelectScreen{
		catalog:  cat,
		log:      log,
		signedIn: signedIn,
		menu: &menuState{
			chapters: cat.Chapters(),
			extras:   []string{"成績履歴", "管理者画面", authLabel, "終了"},
		},
	}
	s.bestScores = bestScores(log.Entries())
	return s
}

func (s *ChapterSelectScreen) Init() tea.Cmd {
	return nil
}

func (s *ChapterSelectScreen) Title() string {
	return "章の選択"
}

func (s *ChapterSelectScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "移動"},
		{Key: "Enter", Description: "決定"},
		{Key: "h", Description: "この章の履歴"},
		{Key: "q", Description: "終了"},
	}
}

func (s *ChapterSelectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.menu.cursor > 0 {
			s.menu.cursor--
		}
	case "down", "j":
		if s.menu.cursor < s.menu.total()-1 {
			s.menu.cursor++
		}
	case "h":
		if ch := s.menu.chapterAt(); ch != nil {
			id := ch.ID
			return s, func() tea.Msg { return router.OpenHistoryMsg{ChapterFilter: id} }
		}
	case "q":
		return s, tea.Quit
	case "enter":
		return s, s.activate()
	}
	return s, nil
}

func (s *ChapterSelectScreen) activate() tea.Cmd {
	if ch := s.menu.chapterAt(); ch != nil {
		id := ch.ID
		return func() tea.Msg { return router.SelectChapterMsg{ChapterID: id} }
	}

	switch s.menu.extraAt() {
	case extraHistory:
		return func() tea.Msg { return router.OpenHistoryMsg{ChapterFilter: history.NoFilter} }
	case extraAdmin:
		return func() tea.Msg { return router.OpenAdminMsg{} }
	case extraAuth:
		if s.signedIn {
			return func() tea.Msg { return router.SignOutMsg{} }
		}
		return func() tea.Msg { return router.RequestLoginMsg{} }
	case extraQuit:
		return tea.Quit
	}
	return nil
}

func (s *ChapterSelectScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Title.Render("Excel スキルチェック")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Subtitle.Render("章を選んで穴埋め問題に挑戦しましょう")))
	b.WriteString("\n\n")

	for i, ch := range s.menu.chapters {
		line := fmt.Sprintf("第%d章  %s", ch.ID, ch.Title)
		if best, ok := s.bestScores[ch.ID]; ok {
			badge := lipgloss.NewStyle().Foreground(theme.ScoreColor(best)).
				Render(fmt.Sprintf("  最高 %d点", best))
			line += badge
		}
		b.WriteString(renderRow(line, i == s.menu.cursor, width))
	}

	b.WriteString("\n")
	for i, label := range s.menu.extras {
		b.WriteString(renderRow(label, len(s.menu.chapters)+i == s.menu.cursor, width))
	}

	return b.String()
}

func renderRow(label string, selected bool, width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Text)
	prefix := "    "
	if selected {
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		prefix = "  ▸ "
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		style.Render(prefix+label)) + "\n"
}

// bestScores folds history entries into the highest score per chapter.
func bestScores(entries []grading.ScoreEntry) map[int]int {
	best := make(map[int]int)
	for _, e := range entries {
		if cur, ok := best[e.ChapterID]; !ok || e.Score > cur {
			best[e.ChapterID] = e.Score
		}
	}
	return best
}
