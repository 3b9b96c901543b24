package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ytakagi/excelquiz/internal/nav"
	"github.com/ytakagi/excelquiz/internal/screen"
)

// NavigateMsg requests the router to switch to the screen for a page.
type NavigateMsg struct {
	Page nav.Page
}

// Factory builds the screen for a page. Called each time the router
// switches to a page so screens start from fresh state.
type Factory func(page nav.Page) screen.Screen

// Router keeps a single active screen keyed by page. Unknown pages
// fall back to chapter selection.
type Router struct {
	factory Factory
	page    nav.Page
	active  screen.Screen
}

// New creates a Router showing the given initial page.
func New(factory Factory, initial nav.Page) *Router {
	r := &Router{factory: factory}
	r.page = initial
	r.active = factory(initial)
	return r
}

// Switch replaces the active screen with the one for page and calls
// its Init(). Switching to the current page rebuilds the screen.
func (r *Router) Switch(page nav.Page) tea.Cmd {
	s := r.factory(page)
	if s == nil {
		page = nav.PageChapterSelection
		s = r.factory(page)
	}
	r.page = page
	r.active = s
	return s.Init()
}

// Page returns the page of the active screen.
func (r *Router) Page() nav.Page {
	return r.page
}

// Active returns the active screen.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Update forwards a message to the active screen and handles
// navigation messages.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if m, ok := msg.(NavigateMsg); ok {
		return r.Switch(m.Page)
	}

	if r.active == nil {
		return nil
	}
	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}
