package nav

// PersistentState is the subset of the machine that survives a restart:
// the page, the selected chapter and the in-progress answers, so a reload
// mid-quiz restores exactly where the user left off. The computed score
// and the login-overlay visibility are ephemeral and deliberately absent.
type PersistentState struct {
	Page            string            `json:"page"`
	SelectedChapter int               `json:"selected_chapter"`
	Answers         map[string]string `json:"answers"`
}

// Persistent captures the machine's persisted fields.
func (m *Machine) Persistent() PersistentState {
	return PersistentState{
		Page:            m.page.String(),
		SelectedChapter: m.selectedChapter,
		Answers:         m.Answers(),
	}
}

// Restore applies a previously persisted state. Unknown page names fall
// back to chapter selection, and pages that need state we did not persist
// are normalized: a result page without its ephemeral score reopens as
// the problem page, and any chapter-bound page without a chapter drops to
// chapter selection. The auth state is untouched; restoration happens
// while identity resolution is still pending.
func (m *Machine) Restore(s PersistentState) {
	m.selectedChapter = s.SelectedChapter
	m.answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		m.answers[k] = v
	}

	page := ParsePage(s.Page)
	if page == PageResult {
		page = PageProblem
	}
	if (page == PageProblem || page == PageResult) && m.selectedChapter == NoChapter {
		page = PageChapterSelection
	}
	m.page = page
}
