package router

// Intent messages emitted by screens. The application model interprets
// them against the navigation machine and answers with NavigateMsg.

// SelectChapterMsg requests starting the quiz for a chapter.
type SelectChapterMsg struct {
	ChapterID int
}

// SubmitMsg carries a completed answer set for grading.
type SubmitMsg struct {
	ChapterID int
	Answers   map[string]string
}

// AnswersChangedMsg reports the current in-progress answer set so it
// can be carried across screen rebuilds and restarts.
type AnswersChangedMsg struct {
	Answers map[string]string
}

// RetryMsg requests a fresh attempt at the current chapter.
type RetryMsg struct{}

// BackToChaptersMsg requests returning to chapter selection.
type BackToChaptersMsg struct{}

// OpenHistoryMsg requests the score history view. ChapterFilter is a
// chapter id, or 0 for all chapters.
type OpenHistoryMsg struct {
	ChapterFilter int
}

// OpenAdminMsg requests the admin console.
type OpenAdminMsg struct{}

// RequestLoginMsg asks the application to show the login form.
type RequestLoginMsg struct{}

// DismissLoginMsg closes the login form without signing in.
type DismissLoginMsg struct{}

// SignInSubmitMsg carries the login form fields.
type SignInSubmitMsg struct {
	DisplayName string
	Email       string
}

// SignOutMsg requests ending the current session.
type SignOutMsg struct{}
