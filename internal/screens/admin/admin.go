package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/auth"
	"github.com/ytakagi/excelquiz/internal/history"
	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/screen"
	"github.com/ytakagi/excelquiz/internal/store"
	"github.com/ytakagi/excelquiz/internal/ui/components"
	"github.com/ytakagi/excelquiz/internal/ui/layout"
	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

var loadSeq atomic.Int64

// ChangedMsg reports an admin roster change made elsewhere. The
// application forwards it from the repo's change subscription.
type ChangedMsg struct{}

type accessCheckedMsg struct {
	Seq     int64
	Allowed bool
	Err     error
}

type dataLoadedMsg struct {
	Seq    int64
	Rows   []history.AdminRow
	Admins []store.AdminUser
	Err    error
}

type mutationDoneMsg struct {
	Err error
}

type mode int

const (
	modeLoading mode = iota
	modeDenied
	modeDashboard
	modeSettings
	modeForm
)

type formKind int

const (
	formAdd formKind = iota
	formEdit
)

// AdminScreen is the console for reviewing every user's results and
// managing the admin roster.
type AdminScreen struct {
	admins  store.AdminRepo
	scores  store.ScoreRepo
	session *auth.Session

	mode     mode
	seq      int64
	rows     []history.AdminRow
	roster   []store.AdminUser
	selected int
	confirm  bool
	errMsg   string
	notice   string

	form      formKind
	formEmail components.TextInput
	formName  components.TextInput
	formFocus int
	editID    int64
}

var _ screen.Screen = (*AdminScreen)(nil)
var _ screen.KeyHintProvider = (*AdminScreen)(nil)

// New creates an AdminScreen for the signed-in session.
func New(admins store.AdminRepo, scores store.ScoreRepo, session *auth.Session) *AdminScreen {
	return &AdminScreen{admins: admins, scores: scores, session: session}
}

// Init verifies access before loading anything.
func (s *AdminScreen) Init() tea.Cmd {
	if s.session == nil {
		s.mode = modeDenied
		return nil
	}
	s.mode = modeLoading
	s.seq = loadSeq.Add(1)

	seq := s.seq
	admins := s.admins
	email := s.session.Email
	return func() tea.Msg {
		allowed, err := admins.IsAdmin(context.Background(), email)
		return accessCheckedMsg{Seq: seq, Allowed: allowed, Err: err}
	}
}

func (s *AdminScreen) Title() string {
	return "管理者画面"
}

func (s *AdminScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeDashboard:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "移動"},
			{Key: "d", Description: "記録を削除"},
			{Key: "s", Description: "管理者設定"},
			{Key: "Esc", Description: "戻る"},
		}
	case modeSettings:
		return []layout.KeyHint{
			{Key: "a", Description: "追加"},
			{Key: "e", Description: "名前を変更"},
			{Key: "d", Description: "削除"},
			{Key: "Esc", Description: "一覧へ"},
		}
	case modeForm:
		return []layout.KeyHint{
			{Key: "Tab", Description: "項目の移動"},
			{Key: "Enter", Description: "保存"},
			{Key: "Esc", Description: "キャンセル"},
		}
	default:
		return []layout.KeyHint{{Key: "Esc", Description: "戻る"}}
	}
}

// reload queries both the score table and the admin roster.
func (s *AdminScreen) reload() tea.Cmd {
	s.seq = loadSeq.Add(1)

	seq := s.seq
	admins := s.admins
	scores := s.scores
	return func() tea.Msg {
		ctx := context.Background()

		entries, err := scores.QueryAll(ctx)
		if err != nil {
			return dataLoadedMsg{Seq: seq, Err: err}
		}
		roster, err := admins.List(ctx)
		if err != nil {
			return dataLoadedMsg{Seq: seq, Err: err}
		}
		return dataLoadedMsg{Seq: seq, Rows: history.BuildAdminRows(entries), Admins: roster}
	}
}

func (s *AdminScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case accessCheckedMsg:
		if msg.Seq != s.seq {
			return s, nil
		}
		if msg.Err != nil {
			s.mode = modeDenied
			s.errMsg = "権限の確認に失敗しました"
			return s, nil
		}
		if !msg.Allowed {
			s.mode = modeDenied
			return s, nil
		}
		s.mode = modeDashboard
		return s, s.reload()

	case dataLoadedMsg:
		if msg.Seq != s.seq {
			return s, nil
		}
		if msg.Err != nil {
			s.errMsg = "データを読み込めませんでした"
			return s, nil
		}
		s.errMsg = ""
		s.rows = msg.Rows
		s.roster = msg.Admins
		s.clampSelection()
		return s, nil

	case mutationDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, store.ErrLastAdmin) {
				s.errMsg = "最後の管理者は削除できません"
			} else {
				s.errMsg = "操作に失敗しました"
			}
			return s, nil
		}
		s.errMsg = ""
		return s, s.reload()

	case ChangedMsg:
		if s.mode == modeDashboard || s.mode == modeSettings {
			return s, s.reload()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.mode == modeForm {
		return s, s.updateForm(msg)
	}
	return s, nil
}

func (s *AdminScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch s.mode {
	case modeDenied, modeLoading:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.BackToChaptersMsg{} }
		}
	case modeDashboard:
		return s, s.handleDashboardKey(msg)
	case modeSettings:
		return s, s.handleSettingsKey(msg)
	case modeForm:
		return s, s.handleFormKey(msg)
	}
	return s, nil
}

func (s *AdminScreen) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	if s.confirm {
		switch msg.String() {
		case "y":
			s.confirm = false
			if s.selected < len(s.rows) {
				id := s.rows[s.selected].EntryID
				scores := s.scores
				return func() tea.Msg {
					return mutationDoneMsg{Err: scores.DeleteByID(context.Background(), id)}
				}
			}
		case "n", "esc":
			s.confirm = false
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		return func() tea.Msg { return router.BackToChaptersMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.rows)-1 {
			s.selected++
		}
	case "d":
		if len(s.rows) > 0 {
			s.confirm = true
		}
	case "s":
		s.mode = modeSettings
		s.selected = 0
		s.errMsg = ""
	case "r":
		return s.reload()
	}
	return nil
}

func (s *AdminScreen) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	if s.confirm {
		switch msg.String() {
		case "y":
			s.confirm = false
			if len(s.roster) <= 1 {
				s.errMsg = "最後の管理者は削除できません"
				return nil
			}
			if s.selected < len(s.roster) {
				id := s.roster[s.selected].ID
				admins := s.admins
				return func() tea.Msg {
					return mutationDoneMsg{Err: admins.Delete(context.Background(), id)}
				}
			}
		case "n", "esc":
			s.confirm = false
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		s.mode = modeDashboard
		s.selected = 0
		s.errMsg = ""
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.roster)-1 {
			s.selected++
		}
	case "a":
		return s.openForm(formAdd, nil)
	case "e":
		if s.selected < len(s.roster) {
			a := s.roster[s.selected]
			return s.openForm(formEdit, &a)
		}
	case "d":
		if len(s.roster) <= 1 {
			s.errMsg = "最後の管理者は削除できません"
			return nil
		}
		s.confirm = true
	}
	return nil
}

func (s *AdminScreen) openForm(kind formKind, target *store.AdminUser) tea.Cmd {
	s.mode = modeForm
	s.form = kind
	s.formFocus = 0
	s.errMsg = ""

	s.formEmail = components.NewTextInput("メールアドレス", "user@example.com", 254)
	s.formName = components.NewTextInput("表示名", "山田 太郎", 64)

	if kind == formEdit && target != nil {
		s.editID = target.ID
		s.formName.Model.SetValue(target.DisplayName)
		return s.formName.Focus()
	}
	return s.formEmail.Focus()
}

func (s *AdminScreen) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.mode = modeSettings
		return nil
	case "tab", "shift+tab":
		if s.form == formAdd {
			if s.formFocus == 0 {
				s.formFocus = 1
				s.formEmail.Blur()
				return s.formName.Focus()
			}
			s.formFocus = 0
			s.formName.Blur()
			return s.formEmail.Focus()
		}
		return nil
	case "enter":
		return s.submitForm()
	}
	return s.updateForm(msg)
}

func (s *AdminScreen) updateForm(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if s.form == formAdd && s.formFocus == 0 {
		s.formEmail, cmd = s.formEmail.Update(msg)
	} else {
		s.formName, cmd = s.formName.Update(msg)
	}
	return cmd
}

func (s *AdminScreen) submitForm() tea.Cmd {
	name := strings.TrimSpace(s.formName.Value())
	admins := s.admins

	if s.form == formEdit {
		id := s.editID
		s.mode = modeSettings
		return func() tea.Msg {
			return mutationDoneMsg{Err: admins.UpdateDisplayName(context.Background(), id, name)}
		}
	}

	email := strings.TrimSpace(s.formEmail.Value())
	if email == "" || !strings.Contains(email, "@") {
		s.formEmail.SetError("メールアドレスを入力してください")
		return nil
	}
	s.mode = modeSettings
	return func() tea.Msg {
		return mutationDoneMsg{Err: admins.Insert(context.Background(), email, name)}
	}
}

func (s *AdminScreen) clampSelection() {
	limit := len(s.rows)
	if s.mode == modeSettings {
		limit = len(s.roster)
	}
	if s.selected >= limit {
		s.selected = limit - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

func (s *AdminScreen) View(width, height int) string {
	switch s.mode {
	case modeLoading:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  権限を確認中...")
	case modeDenied:
		msg := "管理者権限がありません"
		if s.errMsg != "" {
			msg = s.errMsg
		}
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n  " + msg)
	case modeSettings:
		return s.viewSettings(width)
	case modeForm:
		return s.viewForm(width)
	default:
		return s.viewDashboard(width, height)
	}
}

func (s *AdminScreen) viewDashboard(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)))
		b.WriteString("\n\n")
	}
	if s.confirm {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
				Render("この記録を削除しますか？ (y/n)")))
		b.WriteString("\n\n")
	}

	if len(s.rows) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n  記録がありません"))
		return b.String()
	}

	header := fmt.Sprintf("  %-14s %-20s %-6s %-18s %s",
		"名前", "章", "回数", "日時", "点数")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(header)))
	b.WriteString("\n")

	// Keep the selected row on screen for long tables.
	visible := len(s.rows)
	maxRows := height - 8
	start := 0
	if maxRows > 0 && visible > maxRows {
		start = s.selected - maxRows/2
		if start < 0 {
			start = 0
		}
		if start+maxRows > visible {
			start = visible - maxRows
		}
		visible = maxRows
	}

	for i := start; i < start+visible; i++ {
		r := s.rows[i]
		title := r.ChapterTitle
		if w := len([]rune(title)); w > 9 {
			title = string([]rune(title)[:9]) + "…"
		}
		line := fmt.Sprintf("%-14s 第%d章 %-12s %d回目  %s",
			r.UserName, r.ChapterID, title, r.Attempt, r.Date)

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		score := lipgloss.NewStyle().
			Foreground(theme.ScoreColor(r.Score)).Bold(true).
			Render(fmt.Sprintf("  %d点", r.Score))

		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+line)+score))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *AdminScreen) viewSettings(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Title.Render("管理者の設定")))
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)))
		b.WriteString("\n\n")
	}
	if s.confirm {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Bold(true).
				Render("この管理者を削除しますか？ (y/n)")))
		b.WriteString("\n\n")
	}

	if len(s.roster) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("管理者が登録されていません（全員がアクセス可能な状態です）"))
		b.WriteString("\n")
		return b.String()
	}

	for i, a := range s.roster {
		name := a.DisplayName
		if name == "" {
			name = "(表示名なし)"
		}
		line := fmt.Sprintf("%-24s %s", a.Email, name)

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(prefix+line)))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *AdminScreen) viewForm(width int) string {
	var b strings.Builder
	b.WriteString("\n")

	title := "管理者を追加"
	if s.form == formEdit {
		title = "表示名を変更"
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Title.Render(title)))
	b.WriteString("\n\n")

	var fields []string
	if s.form == formAdd {
		fields = append(fields, s.formEmail.View())
	}
	fields = append(fields, s.formName.View())

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Render(strings.Join(fields, "\n\n"))))
	b.WriteString("\n")

	return b.String()
}
