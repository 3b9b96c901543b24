// Package nav is the session and navigation state machine behind the UI.
// It tracks the authentication state, the current page, the selected
// chapter and the in-progress answers, and enforces which transitions are
// legal. The UI layer renders whatever the machine says; all user intents
// pass through here.
package nav

import "errors"

// AuthState is the identity-resolution state, orthogonal to the page.
type AuthState int

const (
	// AuthPending is the initial state while the identity provider has
	// not yet reported a definite session. No page transitions happen
	// until resolution.
	AuthPending AuthState = iota
	Unauthenticated
	Authenticated
)

// Page enumerates the application's screens.
type Page int

const (
	PageChapterSelection Page = iota
	PageProblem
	PageResult
	PageHistory
	PageAdmin
)

var pageNames = map[Page]string{
	PageChapterSelection: "ChapterSelection",
	PageProblem:          "Problem",
	PageResult:           "Result",
	PageHistory:          "History",
	PageAdmin:            "Admin",
}

func (p Page) String() string {
	if n, ok := pageNames[p]; ok {
		return n
	}
	return "ChapterSelection"
}

// ParsePage maps a persisted page name back to a Page. Anything
// unrecognized falls back to chapter selection.
func ParsePage(name string) Page {
	for p, n := range pageNames {
		if n == name {
			return p
		}
	}
	return PageChapterSelection
}

// NoChapter marks "no chapter selected". Chapter ids are positive.
const NoChapter = 0

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoChapter        = errors.New("no chapter selected")
)

// Machine holds the navigation state. Not safe for concurrent use; the
// UI event loop is single-threaded.
type Machine struct {
	auth            AuthState
	page            Page
	selectedChapter int
	answers         map[string]string
	lastScore       int
	scored          bool
	loginPrompt     bool
	historyFilter   int
}

// NewMachine starts in AuthPending on the chapter-selection page.
func NewMachine() *Machine {
	return &Machine{
		auth:    AuthPending,
		page:    PageChapterSelection,
		answers: map[string]string{},
	}
}

func (m *Machine) Auth() AuthState          { return m.auth }
func (m *Machine) Page() Page               { return m.page }
func (m *Machine) SelectedChapter() int     { return m.selectedChapter }
func (m *Machine) LastScore() (int, bool)   { return m.lastScore, m.scored }
func (m *Machine) LoginPromptVisible() bool { return m.loginPrompt }
func (m *Machine) HistoryFilter() int       { return m.historyFilter }

// Answers returns a copy of the in-progress answers.
func (m *Machine) Answers() map[string]string {
	out := make(map[string]string, len(m.answers))
	for k, v := range m.answers {
		out[k] = v
	}
	return out
}

// ResolveSession leaves AuthPending once the identity provider reports a
// definite session (present or absent). A later report of the same kind
// is applied idempotently.
func (m *Machine) ResolveSession(authenticated bool) {
	if authenticated {
		m.auth = Authenticated
		return
	}
	if m.auth == Authenticated {
		// Explicit sign-out, distinct from "no session yet".
		m.SignedOut()
		return
	}
	m.auth = Unauthenticated
}

// SignedIn marks the session authenticated and dismisses the login
// overlay.
func (m *Machine) SignedIn() {
	m.auth = Authenticated
	m.loginPrompt = false
}

// SignedOut performs the full reset the sign-out transition requires:
// back to chapter selection with no chapter, no answers, no score, and
// no login overlay. History is owned elsewhere and survives.
func (m *Machine) SignedOut() {
	m.auth = Unauthenticated
	m.page = PageChapterSelection
	m.selectedChapter = NoChapter
	m.answers = map[string]string{}
	m.lastScore = 0
	m.scored = false
	m.loginPrompt = false
	m.historyFilter = NoChapter
}

// SelectChapter attempts to open a chapter. While unauthenticated it
// requests the login overlay instead and reports false; the page state is
// untouched. During AuthPending nothing happens at all.
func (m *Machine) SelectChapter(chapterID int) bool {
	switch m.auth {
	case AuthPending:
		return false
	case Unauthenticated:
		m.loginPrompt = true
		return false
	}
	m.selectedChapter = chapterID
	m.answers = map[string]string{}
	m.scored = false
	m.page = PageProblem
	return true
}

// SetAnswer records one in-progress answer.
func (m *Machine) SetAnswer(blankID, value string) {
	m.answers[blankID] = value
}

// SetAnswers replaces the in-progress answer set (used by input-assist
// rules that may fill several blanks at once).
func (m *Machine) SetAnswers(answers map[string]string) {
	m.answers = make(map[string]string, len(answers))
	for k, v := range answers {
		m.answers[k] = v
	}
}

// Submitted records the grading outcome and moves to the result page.
// Requires an authenticated session and a selected chapter.
func (m *Machine) Submitted(score int) error {
	if m.auth != Authenticated {
		return ErrNotAuthenticated
	}
	if m.selectedChapter == NoChapter {
		return ErrNoChapter
	}
	m.lastScore = score
	m.scored = true
	m.page = PageResult
	return nil
}

// Retry returns from the result page to the same chapter's problem page
// with fresh answers.
func (m *Machine) Retry() error {
	if m.selectedChapter == NoChapter {
		return ErrNoChapter
	}
	m.answers = map[string]string{}
	m.scored = false
	m.page = PageProblem
	return nil
}

// BackToChapters returns to chapter selection, clearing the selected
// chapter, the in-progress answers and the score. History is preserved.
func (m *Machine) BackToChapters() {
	m.selectedChapter = NoChapter
	m.answers = map[string]string{}
	m.lastScore = 0
	m.scored = false
	m.historyFilter = NoChapter
	m.page = PageChapterSelection
}

// RequestHistory asks to open the history page, optionally filtered to
// one chapter. While unauthenticated it requests login instead and
// reports false; the caller re-fetches the history before calling
// EnterHistory.
func (m *Machine) RequestHistory(chapterFilter int) bool {
	switch m.auth {
	case AuthPending:
		return false
	case Unauthenticated:
		m.loginPrompt = true
		return false
	}
	m.historyFilter = chapterFilter
	return true
}

// EnterHistory moves to the history page after the fetch completed.
func (m *Machine) EnterHistory() {
	m.page = PageHistory
}

// SetHistoryFilter changes the chapter filter while on the history page.
func (m *Machine) SetHistoryFilter(chapterID int) {
	m.historyFilter = chapterID
}

// RequestAdmin asks to open the admin page. Requires an authenticated
// session; the admin surface itself re-validates authorization against
// the store, this gate is only navigation.
func (m *Machine) RequestAdmin() bool {
	switch m.auth {
	case AuthPending:
		return false
	case Unauthenticated:
		m.loginPrompt = true
		return false
	}
	m.page = PageAdmin
	return true
}

// RequestLogin shows the login overlay (explicit login button).
func (m *Machine) RequestLogin() {
	if m.auth == Unauthenticated {
		m.loginPrompt = true
	}
}

// DismissLogin hides the login overlay without signing in.
func (m *Machine) DismissLogin() {
	m.loginPrompt = false
}
