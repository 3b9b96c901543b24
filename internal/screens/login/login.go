package login

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/ytakagi/excelquiz/internal/router"
	"github.com/ytakagi/excelquiz/internal/ui/components"
	"github.com/ytakagi/excelquiz/internal/ui/theme"
)

// Form is the login overlay. It is rendered over the current screen
// rather than routed to, so a dismissed login leaves the user where
// they were.
type Form struct {
	name    components.TextInput
	email   components.TextInput
	focus   int
	busy    bool
	errText string
}

// NewForm creates a login form with the name field focused.
func NewForm() *Form {
	f := &Form{
		name:  components.NewTextInput("表示名", "山田 太郎", 64),
		email: components.NewTextInput("メールアドレス", "user@example.com", 254),
	}
	return f
}

// Init focuses the first field.
func (f *Form) Init() tea.Cmd {
	return f.name.Focus()
}

// SetBusy marks the form as waiting for sign-in to finish.
func (f *Form) SetBusy(busy bool) {
	f.busy = busy
}

// SetError shows a sign-in failure under the fields.
func (f *Form) SetError(msg string) {
	f.busy = false
	f.errText = msg
}

func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc":
			return f, func() tea.Msg { return router.DismissLoginMsg{} }
		case "tab", "shift+tab", "up", "down":
			if f.focus == 0 {
				f.focus = 1
				f.name.Blur()
				return f, f.email.Focus()
			}
			f.focus = 0
			f.email.Blur()
			return f, f.name.Focus()
		case "enter":
			return f, f.submit()
		}
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.name, cmd = f.name.Update(msg)
	} else {
		f.email, cmd = f.email.Update(msg)
	}
	return f, cmd
}

func (f *Form) submit() tea.Cmd {
	if f.busy {
		return nil
	}

	name := strings.TrimSpace(f.name.Value())
	if name == "" {
		f.name.SetError("表示名を入力してください")
		return nil
	}
	f.name.SetError("")

	email := strings.TrimSpace(f.email.Value())
	if email == "" || !strings.Contains(email, "@") {
		f.email.SetError("メールアドレスを入力してください")
		return nil
	}
	f.email.SetError("")

	f.busy = true
	return func() tea.Msg {
		return router.SignInSubmitMsg{DisplayName: name, Email: email}
	}
}

// View renders the overlay card.
func (f *Form) View() string {
	title := theme.Title.Render("ログイン")
	hint := theme.Hint.Render("履歴を保存するにはログインしてください")

	body := title + "\n" + hint + "\n\n" +
		f.name.View() + "\n\n" + f.email.View()

	if f.busy {
		body += "\n\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("ログイン中...")
	} else if f.errText != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(f.errText)
	}

	body += "\n\n" + theme.Hint.Render("Enter: 決定   Esc: 閉じる")

	return theme.Card.Render(body)
}
