package historyview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/advice"
	"github.com/ytakagi/excelquiz/internal/auth"
	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/grading"
	"github.com/ytakagi/excelquiz/internal/history"
	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/screen"
	"github.com/ytakagi/excelquiz/internal/store"
	"github.com/ytakagi/excelquiz/internal/ui/layout"
	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

// fetchSeq distinguishes fetch responses across screen rebuilds so a
// late result from a discarded screen is dropped instead of replacing
// a newer fetch.
var fetchSeq atomic.Int64

type entriesLoadedMsg struct {
	Seq     int64
	Entries []grading.ScoreEntry
	Err     error
}

type adviceLoadedMsg struct {
	Seq  int64
	Text string
	Err  error
}

// HistoryScreen shows the user's graded attempts, optionally filtered
// to one chapter, with AI study advice on demand.
type HistoryScreen struct {
	scores  store.ScoreRepo
	state   store.StateRepo
	log     *history.Log
	adviser *advice.Adviser
	session *auth.Session
	catalog *catalog.Catalog

	filter    int
	selected  int
	loading   bool
	errMsg    string
	confirm   bool
	seq       int64
	adviceSeq int64

	adviceText    string
	adviceLoading bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen. filter is a chapter id or
// history.NoFilter. session may be nil when signed out, in which case
// only the locally cached entries are shown.
func New(scores store.ScoreRepo, state store.StateRepo, log *history.Log, adviser *advice.Adviser, session *auth.Session, cat *catalog.Catalog, filter int) *HistoryScreen {
	return &HistoryScreen{
		scores:  scores,
		state:   state,
		log:     log,
		adviser: adviser,
		session: session,
		catalog: cat,
		filter:  filter,
	}
}

// Init fetches the user's entries from the store. The cached list
// renders immediately; the fetched list replaces it wholesale when it
// arrives.
func (s *HistoryScreen) Init() tea.Cmd {
	if s.session == nil {
		return nil
	}
	s.loading = true
	s.seq = fetchSeq.Add(1)

	seq := s.seq
	scores := s.scores
	userID := s.session.UserID
	return func() tea.Msg {
		entries, err := scores.QueryByUser(context.Background(), userID)
		return entriesLoadedMsg{Seq: seq, Entries: entries, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	if s.filter == history.NoFilter {
		return "成績履歴"
	}
	return fmt.Sprintf("成績履歴 第%d章", s.filter)
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "移動"},
		{Key: "f", Description: "章で絞り込み"},
	}
	if s.adviser != nil && s.adviser.Available() {
		hints = append(hints, layout.KeyHint{Key: "a", Description: "AI学習アドバイス"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "c", Description: "履歴を消去"},
		layout.KeyHint{Key: "Esc", Description: "戻る"},
	)
	return hints
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		if msg.Seq != s.seq {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.errMsg = "履歴を読み込めませんでした"
			return s, nil
		}
		s.log.ReplaceAll(msg.Entries)
		s.writeMirror()
		return s, nil

	case adviceLoadedMsg:
		if msg.Seq != s.adviceSeq {
			return s, nil
		}
		s.adviceLoading = false
		if msg.Err != nil {
			s.adviceText = "AIアドバイスを取得できませんでした"
		} else {
			s.adviceText = msg.Text
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.confirm {
		switch msg.String() {
		case "y":
			s.confirm = false
			s.log.Clear()
			s.adviceText = ""
			if s.state != nil {
				_ = s.state.Delete(context.Background(), store.KeyHistoryMirror)
			}
		case "n", "esc":
			s.confirm = false
		}
		return s, nil
	}

	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.BackToChaptersMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.visible())-1 {
			s.selected++
		}
	case "f":
		s.cycleFilter()
		s.selected = 0
	case "c":
		if s.log.Len() > 0 {
			s.confirm = true
		}
	case "a":
		return s, s.requestAdvice()
	}
	return s, nil
}

// cycleFilter steps all → chapter 1 → ... → last chapter → all.
func (s *HistoryScreen) cycleFilter() {
	chapters := s.catalog.Chapters()
	if len(chapters) == 0 {
		return
	}
	if s.filter == history.NoFilter {
		s.filter = chapters[0].ID
		return
	}
	for i, ch := range chapters {
		if ch.ID == s.filter {
			if i == len(chapters)-1 {
				s.filter = history.NoFilter
			} else {
				s.filter = chapters[i+1].ID
			}
			return
		}
	}
	s.filter = history.NoFilter
}

func (s *HistoryScreen) requestAdvice() tea.Cmd {
	if s.adviser == nil || !s.adviser.Available() || s.adviceLoading {
		return nil
	}
	entries := s.log.Entries()
	if len(entries) == 0 {
		return nil
	}
	s.adviceLoading = true
	s.adviceSeq = fetchSeq.Add(1)

	seq := s.adviceSeq
	adviser := s.adviser
	return func() tea.Msg {
		text, err := adviser.ForHistory(context.Background(), entries)
		return adviceLoadedMsg{Seq: seq, Text: text, Err: err}
	}
}

// visible returns the filtered entries paired with their attempt
// numbers. Attempt numbers are computed over the full list so the
// numbering does not change when a filter is applied.
func (s *HistoryScreen) visible() []row {
	entries := s.log.Entries()
	attempts := history.AttemptNumbers(entries)

	var rows []row
	for i, e := range entries {
		if s.filter != history.NoFilter && e.ChapterID != s.filter {
			continue
		}
		rows = append(rows, row{entry: e, attempt: attempts[i]})
	}
	return rows
}

type row struct {
	entry   grading.ScoreEntry
	attempt int
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if s.loading && s.log.Len() == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  読み込み中...")
	}

	rows := s.visible()
	if len(rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  まだ履歴がありません")
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.confirm {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
				Render("この画面の履歴をすべて消去しますか？ (y/n)")))
		b.WriteString("\n\n")
	}

	for i, r := range rows {
		e := r.entry
		dateStr := e.Date.Local().Format("2006/01/02 15:04")
		line := fmt.Sprintf("第%d章 %s  %d回目  %s",
			e.ChapterID, e.ChapterTitle, r.attempt, dateStr)
		score := fmt.Sprintf("  %d点", e.Score)

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		scoreStyled := lipgloss.NewStyle().
			Foreground(theme.ScoreColor(e.Score)).Bold(true).Render(score)

		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+line)+scoreStyled))
		b.WriteString("\n")
	}

	if s.adviceLoading {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("AIアドバイスを取得中...")))
		b.WriteString("\n")
	} else if s.adviceText != "" {
		title := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render("AI学習アドバイス")
		body := lipgloss.NewStyle().Foreground(theme.Text).
			Width(min(width-12, 68)).Render(s.adviceText)
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Card.Render(title+"\n\n"+body)))
		b.WriteString("\n")
	}

	return b.String()
}

// writeMirror caches the fetched entries so the next start can show
// history before (or without) a fetch.
func (s *HistoryScreen) writeMirror() {
	if s.state == nil {
		return
	}
	data, err := json.Marshal(s.log.Entries())
	if err != nil {
		return
	}
	_ = s.state.Put(context.Background(), store.KeyHistoryMirror, string(data))
}
