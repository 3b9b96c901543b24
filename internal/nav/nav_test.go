package nav

import (
	"errors"
	"testing"
)

func authed() *Machine {
	m := NewMachine()
	m.ResolveSession(true)
	return m
}

func TestNewMachineStartsPending(t *testing.T) {
	m := NewMachine()
	if m.Auth() != AuthPending {
		t.Errorf("Auth = %v, want AuthPending", m.Auth())
	}
	if m.Page() != PageChapterSelection {
		t.Errorf("Page = %v, want PageChapterSelection", m.Page())
	}
}

func TestResolveSession(t *testing.T) {
	m := NewMachine()
	m.ResolveSession(false)
	if m.Auth() != Unauthenticated {
		t.Errorf("Auth = %v, want Unauthenticated", m.Auth())
	}

	m.ResolveSession(true)
	if m.Auth() != Authenticated {
		t.Errorf("Auth = %v, want Authenticated", m.Auth())
	}

	// A second "no session" after being authenticated is a sign-out.
	m.SelectChapter(2)
	m.ResolveSession(false)
	if m.Auth() != Unauthenticated || m.Page() != PageChapterSelection {
		t.Errorf("sign-out via ResolveSession left auth=%v page=%v", m.Auth(), m.Page())
	}
}

func TestSelectChapterGating(t *testing.T) {
	m := NewMachine()

	// Pending: nothing happens, not even a login prompt.
	if m.SelectChapter(1) {
		t.Error("SelectChapter succeeded while pending")
	}
	if m.LoginPromptVisible() {
		t.Error("login prompt shown while pending")
	}

	// Unauthenticated: prompt instead of navigation.
	m.ResolveSession(false)
	if m.SelectChapter(1) {
		t.Error("SelectChapter succeeded while unauthenticated")
	}
	if !m.LoginPromptVisible() {
		t.Error("login prompt not requested")
	}
	if m.Page() != PageChapterSelection {
		t.Errorf("page moved to %v without auth", m.Page())
	}

	// Authenticated: navigation.
	m.ResolveSession(true)
	if !m.SelectChapter(3) {
		t.Fatal("SelectChapter failed while authenticated")
	}
	if m.Page() != PageProblem || m.SelectedChapter() != 3 {
		t.Errorf("page=%v chapter=%d", m.Page(), m.SelectedChapter())
	}
}

func TestSubmitAndRetry(t *testing.T) {
	m := authed()
	m.SelectChapter(2)
	m.SetAnswer("ア", "Ctrl")

	if err := m.Submitted(67); err != nil {
		t.Fatalf("Submitted: %v", err)
	}
	if m.Page() != PageResult {
		t.Errorf("Page = %v, want PageResult", m.Page())
	}
	if score, ok := m.LastScore(); !ok || score != 67 {
		t.Errorf("LastScore = %d,%v", score, ok)
	}

	if err := m.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if m.Page() != PageProblem || m.SelectedChapter() != 2 {
		t.Errorf("retry: page=%v chapter=%d", m.Page(), m.SelectedChapter())
	}
	if len(m.Answers()) != 0 {
		t.Errorf("retry kept answers: %v", m.Answers())
	}
	if _, ok := m.LastScore(); ok {
		t.Error("retry kept the score")
	}
}

func TestSubmitRequiresChapterAndAuth(t *testing.T) {
	m := NewMachine()
	m.ResolveSession(false)
	if err := m.Submitted(50); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}

	m.ResolveSession(true)
	if err := m.Submitted(50); !errors.Is(err, ErrNoChapter) {
		t.Errorf("err = %v, want ErrNoChapter", err)
	}

	if err := m.Retry(); !errors.Is(err, ErrNoChapter) {
		t.Errorf("Retry err = %v, want ErrNoChapter", err)
	}
}

func TestSignedOutResetsEverything(t *testing.T) {
	m := authed()
	m.SelectChapter(4)
	m.SetAnswer("ア", "SUM")
	m.Submitted(100)
	m.SetHistoryFilter(4)

	m.SignedOut()

	if m.Auth() != Unauthenticated {
		t.Errorf("Auth = %v", m.Auth())
	}
	if m.Page() != PageChapterSelection {
		t.Errorf("Page = %v", m.Page())
	}
	if m.SelectedChapter() != NoChapter {
		t.Errorf("SelectedChapter = %d", m.SelectedChapter())
	}
	if len(m.Answers()) != 0 {
		t.Errorf("Answers = %v", m.Answers())
	}
	if _, ok := m.LastScore(); ok {
		t.Error("score survived sign-out")
	}
	if m.HistoryFilter() != NoChapter {
		t.Errorf("HistoryFilter = %d", m.HistoryFilter())
	}
}

func TestHistoryAndAdminGating(t *testing.T) {
	m := NewMachine()
	m.ResolveSession(false)

	if m.RequestHistory(2) {
		t.Error("RequestHistory succeeded unauthenticated")
	}
	if !m.LoginPromptVisible() {
		t.Error("login prompt not requested for history")
	}
	m.DismissLogin()

	if m.RequestAdmin() {
		t.Error("RequestAdmin succeeded unauthenticated")
	}

	m.ResolveSession(true)
	if !m.RequestHistory(2) {
		t.Fatal("RequestHistory failed when authenticated")
	}
	m.EnterHistory()
	if m.Page() != PageHistory || m.HistoryFilter() != 2 {
		t.Errorf("page=%v filter=%d", m.Page(), m.HistoryFilter())
	}

	if !m.RequestAdmin() {
		t.Fatal("RequestAdmin failed when authenticated")
	}
	if m.Page() != PageAdmin {
		t.Errorf("Page = %v, want PageAdmin", m.Page())
	}
}

func TestBackToChaptersKeepsAuth(t *testing.T) {
	m := authed()
	m.SelectChapter(1)
	m.BackToChapters()

	if m.Auth() != Authenticated {
		t.Error("auth lost on back")
	}
	if m.Page() != PageChapterSelection || m.SelectedChapter() != NoChapter {
		t.Errorf("page=%v chapter=%d", m.Page(), m.SelectedChapter())
	}
}

func TestAnswersReturnsCopy(t *testing.T) {
	m := authed()
	m.SelectChapter(1)
	m.SetAnswer("ア", "Ctrl")

	got := m.Answers()
	got["ア"] = "Alt"
	if m.Answers()["ア"] != "Ctrl" {
		t.Error("Answers() exposed internal map")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	m := authed()
	m.SelectChapter(3)
	m.SetAnswer("ア", "Ctrl")

	state := m.Persistent()

	restored := NewMachine()
	restored.ResolveSession(true)
	restored.Restore(state)

	if restored.Page() != PageProblem {
		t.Errorf("Page = %v, want PageProblem", restored.Page())
	}
	if restored.SelectedChapter() != 3 {
		t.Errorf("SelectedChapter = %d", restored.SelectedChapter())
	}
	if restored.Answers()["ア"] != "Ctrl" {
		t.Errorf("Answers = %v", restored.Answers())
	}
}

func TestRestoreNormalization(t *testing.T) {
	tests := []struct {
		name  string
		state PersistentState
		want  Page
	}{
		{"result reopens as problem", PersistentState{Page: "Result", SelectedChapter: 2}, PageProblem},
		{"problem without chapter drops out", PersistentState{Page: "Problem"}, PageChapterSelection},
		{"unknown page falls back", PersistentState{Page: "Bogus"}, PageChapterSelection},
		{"history restores", PersistentState{Page: "History"}, PageHistory},
		{"admin restores", PersistentState{Page: "Admin"}, PageAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			m.Restore(tt.state)
			if m.Page() != tt.want {
				t.Errorf("Page = %v, want %v", m.Page(), tt.want)
			}
		})
	}
}

func TestPageStringRoundTrip(t *testing.T) {
	for _, p := range []Page{PageChapterSelection, PageProblem, PageResult, PageHistory, PageAdmin} {
		if got := ParsePage(p.String()); got != p {
			t.Errorf("ParsePage(%q) = %v, want %v", p.String(), got, p)
		}
	}
	if got := ParsePage("nope"); got != PageChapterSelection {
		t.Errorf("ParsePage fallback = %v", got)
	}
}
