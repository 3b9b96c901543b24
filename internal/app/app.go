package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/advice"
	"github.com/ytakagi/excelquiz/internal/auth"
	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/grading"
	"github.com/ytakagi/excelquiz/internal/history"
	"github.com/ytakagi/excelquiz/internal/nav"
	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/screen"
	adminscreen "github.com/ytakagi/excelquiz/internal/screens/admin"
	"github.com/ytakagi/excelquiz/internal/screens/chapterselect"
	"github.com/ytakagi/excelquiz/internal/screens/historyview"
	"github.com/ytakagi/excelquiz/internal/screens/login"
	"github.com/ytakagi/excelquiz/internal/screens/problem"
	"github.com/ytakagi/excelquiz/internal/screens/result"
	"github.com/ytakagi/excelquiz/internal/store"
	"github.com/ytakagi/excelquiz/internal/ui/layout"
)

// Options carries the collaborators the application runs against.
type Options struct {
	Store   *store.Store
	Auth    auth.Provider
	Catalog *catalog.Catalog
	Adviser *advice.Adviser // nil when no AI provider is configured
}

type bootMsg struct {
	Session  *auth.Session
	NavState *nav.PersistentState
	Mirror   []grading.ScoreEntry
	Err      error
}

type authChangedMsg struct {
	Event   auth.Event
	Session *auth.Session
}

type signInDoneMsg struct {
	Session *auth.Session
	Err     error
}

type signOutDoneMsg struct {
	Err error
}

type scoreSavedMsg struct {
	Err error
}

// AppModel is the root Bubble Tea model. It owns the navigation
// machine; screens only emit intents and the model applies them here.
type AppModel struct {
	opts    Options
	machine *nav.Machine
	router  *router.Router
	log     *history.Log
	session *auth.Session

	loginForm *login.Form
	lastEntry grading.ScoreEntry
	haveEntry bool

	width   int
	height  int
	bootErr string
	notice  string
}

func newAppModel(opts Options) *AppModel {
	m := &AppModel{
		opts:    opts,
		machine: nav.NewMachine(),
		log:     history.NewLog(),
	}
	m.router = router.New(m.buildScreen, nav.PageChapterSelection)
	return m
}

// buildScreen is the router's screen factory. It reads the machine and
// the shared collaborators at switch time, so every screen starts from
// current state.
func (m *AppModel) buildScreen(page nav.Page) screen.Screen {
	switch page {
	case nav.PageChapterSelection:
		return chapterselect.New(m.opts.Catalog, m.log, m.session != nil)
	case nav.PageProblem:
		ch := m.opts.Catalog.ByID(m.machine.SelectedChapter())
		if ch == nil {
			return nil
		}
		return problem.New(ch, m.machine.Answers())
	case nav.PageResult:
		if !m.haveEntry {
			return nil
		}
		return result.New(m.lastEntry, m.opts.Adviser)
	case nav.PageHistory:
		return historyview.New(
			m.opts.Store.ScoreRepo(), m.opts.Store.StateRepo(),
			m.log, m.opts.Adviser, m.session, m.opts.Catalog,
			m.machine.HistoryFilter())
	case nav.PageAdmin:
		return adminscreen.New(
			m.opts.Store.AdminRepo(), m.opts.Store.ScoreRepo(), m.session)
	}
	return nil
}

// Init resolves the persisted session, navigation state and history
// cache in one pass before anything interactive is shown.
func (m *AppModel) Init() tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		ctx := context.Background()

		session, err := opts.Auth.Current(ctx)
		if err != nil {
			return bootMsg{Err: err}
		}

		var navState *nav.PersistentState
		if raw, ok, err := opts.Store.StateRepo().Get(ctx, store.KeyNavState); err == nil && ok {
			var s nav.PersistentState
			if json.Unmarshal([]byte(raw), &s) == nil {
				navState = &s
			}
		}

		var mirror []grading.ScoreEntry
		if raw, ok, err := opts.Store.StateRepo().Get(ctx, store.KeyHistoryMirror); err == nil && ok {
			_ = json.Unmarshal([]byte(raw), &mirror)
		}

		return bootMsg{Session: session, NavState: navState, Mirror: mirror}
	}
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case bootMsg:
		return m, m.applyBoot(msg)

	case authChangedMsg:
		return m, m.applyAuthChange(msg)

	case signInDoneMsg:
		if msg.Err != nil {
			if m.loginForm != nil {
				m.loginForm.SetError("ログインに失敗しました")
			}
			return m, nil
		}
		m.session = msg.Session
		m.machine.SignedIn()
		m.loginForm = nil
		return m, tea.Batch(m.router.Switch(m.machine.Page()), m.persistNav())

	case signOutDoneMsg:
		if msg.Err != nil {
			m.notice = "ログアウトに失敗しました"
			return m, nil
		}
		return m, m.applySignOut()

	case scoreSavedMsg:
		if msg.Err != nil {
			m.notice = "結果を保存できませんでした"
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.machine.Auth() == nav.AuthPending {
			return m, nil
		}
		if m.loginForm != nil && m.machine.LoginPromptVisible() {
			var cmd tea.Cmd
			m.loginForm, cmd = m.loginForm.Update(msg)
			return m, cmd
		}
		return m, m.router.Update(msg)

	case router.SelectChapterMsg:
		if m.machine.SelectChapter(msg.ChapterID) {
			return m, tea.Batch(m.router.Switch(nav.PageProblem), m.persistNav())
		}
		return m, m.maybeShowLogin()

	case router.AnswersChangedMsg:
		m.machine.SetAnswers(msg.Answers)
		return m, m.persistNav()

	case router.SubmitMsg:
		return m, m.applySubmit(msg)

	case router.RetryMsg:
		if err := m.machine.Retry(); err != nil {
			m.machine.BackToChapters()
			return m, tea.Batch(m.router.Switch(nav.PageChapterSelection), m.persistNav())
		}
		return m, tea.Batch(m.router.Switch(nav.PageProblem), m.persistNav())

	case router.BackToChaptersMsg:
		m.machine.BackToChapters()
		return m, tea.Batch(m.router.Switch(nav.PageChapterSelection), m.persistNav())

	case router.OpenHistoryMsg:
		if m.machine.RequestHistory(msg.ChapterFilter) {
			m.machine.EnterHistory()
			return m, tea.Batch(m.router.Switch(nav.PageHistory), m.persistNav())
		}
		return m, m.maybeShowLogin()

	case router.OpenAdminMsg:
		if m.machine.RequestAdmin() {
			return m, tea.Batch(m.router.Switch(nav.PageAdmin), m.persistNav())
		}
		return m, m.maybeShowLogin()

	case router.RequestLoginMsg:
		m.machine.RequestLogin()
		return m, m.maybeShowLogin()

	case router.DismissLoginMsg:
		m.machine.DismissLogin()
		m.loginForm = nil
		return m, nil

	case router.SignInSubmitMsg:
		provider := m.opts.Auth
		name, email := msg.DisplayName, msg.Email
		return m, func() tea.Msg {
			session, err := provider.SignIn(context.Background(), name, email)
			return signInDoneMsg{Session: session, Err: err}
		}

	case router.SignOutMsg:
		provider := m.opts.Auth
		return m, func() tea.Msg {
			return signOutDoneMsg{Err: provider.SignOut(context.Background())}
		}
	}

	return m, m.router.Update(msg)
}

func (m *AppModel) applyBoot(msg bootMsg) tea.Cmd {
	if msg.Err != nil {
		m.bootErr = msg.Err.Error()
		m.machine.ResolveSession(false)
		return m.router.Switch(nav.PageChapterSelection)
	}

	if len(msg.Mirror) > 0 && m.log.Len() == 0 {
		m.log.ReplaceAll(msg.Mirror)
	}

	m.session = msg.Session
	m.machine.ResolveSession(msg.Session != nil)

	if msg.NavState != nil && m.machine.Auth() == nav.Authenticated {
		m.machine.Restore(*msg.NavState)
	}
	return m.router.Switch(m.machine.Page())
}

// applyAuthChange reconciles session changes reported by the identity
// provider's watcher. Changes the model already applied through its own
// sign-in and sign-out handling arrive here as no-ops.
func (m *AppModel) applyAuthChange(msg authChangedMsg) tea.Cmd {
	switch msg.Event {
	case auth.SignedIn:
		if m.session != nil {
			return nil
		}
		m.session = msg.Session
		m.machine.SignedIn()
		m.loginForm = nil
		return tea.Batch(m.router.Switch(m.machine.Page()), m.persistNav())
	case auth.SignedOut:
		if m.session == nil {
			return nil
		}
		return m.applySignOut()
	}
	return nil
}

func (m *AppModel) applySignOut() tea.Cmd {
	m.session = nil
	m.machine.SignedOut()
	m.log.Clear()
	m.haveEntry = false

	st := m.opts.Store.StateRepo()
	dropMirror := func() tea.Msg {
		_ = st.Delete(context.Background(), store.KeyHistoryMirror)
		return nil
	}
	return tea.Batch(m.router.Switch(nav.PageChapterSelection), m.persistNav(), dropMirror)
}

// applySubmit grades the attempt, records it everywhere, and moves to
// the result page. The insert runs in the background; the result screen
// never waits for the write.
func (m *AppModel) applySubmit(msg router.SubmitMsg) tea.Cmd {
	ch := m.opts.Catalog.ByID(msg.ChapterID)
	if ch == nil {
		return nil
	}

	entry := grading.Grade(ch, msg.Answers, time.Now())
	if m.session != nil {
		entry.UserID = m.session.UserID
		entry.UserName = m.session.DisplayName
	}

	if err := m.machine.Submitted(entry.Score); err != nil {
		return m.maybeShowLogin()
	}

	m.lastEntry = entry
	m.haveEntry = true
	m.log.Append(entry)

	scores := m.opts.Store.ScoreRepo()
	save := func() tea.Msg {
		e := entry
		return scoreSavedMsg{Err: scores.Insert(context.Background(), &e)}
	}
	return tea.Batch(m.router.Switch(nav.PageResult), m.persistNav(), save)
}

// maybeShowLogin opens the login overlay when the machine asked for it.
func (m *AppModel) maybeShowLogin() tea.Cmd {
	if !m.machine.LoginPromptVisible() {
		return nil
	}
	if m.loginForm == nil {
		m.loginForm = login.NewForm()
		return m.loginForm.Init()
	}
	return nil
}

// persistNav writes the machine's persisted slice to the store.
func (m *AppModel) persistNav() tea.Cmd {
	state := m.machine.Persistent()
	repo := m.opts.Store.StateRepo()
	return func() tea.Msg {
		data, err := json.Marshal(state)
		if err != nil {
			return nil
		}
		_ = repo.Put(context.Background(), store.KeyNavState, string(data))
		return nil
	}
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	if m.machine.Auth() == nav.AuthPending {
		v.SetContent(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			"読み込み中..."))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	user := ""
	if m.session != nil {
		user = m.session.DisplayName
		if user == "" {
			user = m.session.Email
		}
	}

	header := layout.RenderHeader(title, user, m.width)

	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "移動"},
		{Key: "Enter", Description: "決定"},
		{Key: "Ctrl+C", Description: "終了"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "終了"})
	}
	footer := layout.RenderFooter(hints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	var content string
	if m.loginForm != nil && m.machine.LoginPromptVisible() {
		content = lipgloss.Place(m.width, contentHeight,
			lipgloss.Center, lipgloss.Center, m.loginForm.View())
	} else {
		content = m.router.View(m.width, contentHeight)
	}

	if m.notice != "" {
		content += "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.notice)
	}

	frame := layout.RenderFrame(header, content, footer, m.width, m.height)
	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and keeps the identity watcher and
// the admin-roster subscription wired to it for its lifetime.
func Run(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m)

	cancelAuth := opts.Auth.Watch(func(ev auth.Event, s *auth.Session) {
		p.Send(authChangedMsg{Event: ev, Session: s})
	})
	defer cancelAuth()

	cancelAdmins := opts.Store.AdminRepo().Subscribe(func() {
		p.Send(adminscreen.ChangedMsg{})
	})
	defer cancelAdmins()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
