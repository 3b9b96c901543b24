package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/ytakagi/excelquiz/internal/nav"
	"github.com/ytakagi/excelquiz/internal/screen"
)

type stubScreen struct {
	name   string
	inited bool
	last   tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.inited = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.last = msg
	return s, nil
}

func (s *stubScreen) View(width, height int) string { return s.name }
func (s *stubScreen) Title() string                 { return s.name }

func testFactory(made map[nav.Page]*stubScreen) Factory {
	return func(page nav.Page) screen.Screen {
		if page == nav.PageResult {
			// Pages whose prerequisite state is missing yield nil.
			return nil
		}
		s := &stubScreen{name: page.String()}
		made[page] = s
		return s
	}
}

func TestSwitchBuildsFreshScreenAndInits(t *testing.T) {
	made := map[nav.Page]*stubScreen{}
	r := New(testFactory(made), nav.PageChapterSelection)

	if r.Page() != nav.PageChapterSelection {
		t.Fatalf("initial page = %v", r.Page())
	}

	r.Switch(nav.PageHistory)
	if r.Page() != nav.PageHistory {
		t.Errorf("Page = %v after Switch", r.Page())
	}
	if !made[nav.PageHistory].inited {
		t.Error("Switch did not Init the new screen")
	}

	first := r.Active()
	r.Switch(nav.PageHistory)
	if r.Active() == first {
		t.Error("switching to the same page must rebuild the screen")
	}
}

func TestSwitchFallsBackWhenFactoryReturnsNil(t *testing.T) {
	made := map[nav.Page]*stubScreen{}
	r := New(testFactory(made), nav.PageChapterSelection)

	r.Switch(nav.PageResult)
	if r.Page() != nav.PageChapterSelection {
		t.Errorf("Page = %v, want fallback to chapter selection", r.Page())
	}
	if r.Active() == nil {
		t.Fatal("Active() = nil after fallback")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	made := map[nav.Page]*stubScreen{}
	r := New(testFactory(made), nav.PageChapterSelection)

	type probe struct{}
	r.Update(probe{})
	if _, ok := made[nav.PageChapterSelection].last.(probe); !ok {
		t.Error("message not forwarded to the active screen")
	}
}

func TestUpdateHandlesNavigateMsg(t *testing.T) {
	made := map[nav.Page]*stubScreen{}
	r := New(testFactory(made), nav.PageChapterSelection)

	r.Update(NavigateMsg{Page: nav.PageAdmin})
	if r.Page() != nav.PageAdmin {
		t.Errorf("Page = %v after NavigateMsg", r.Page())
	}
}
