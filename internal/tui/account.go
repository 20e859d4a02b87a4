package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahilbajaj/khata/internal/session"
)

type accountState int

const (
	acNormal accountState = iota
	acEditDetails
	acChangePassword
)

type profileSavedMsg struct {
	err error
}

type passwordChangedMsg struct {
	err error
}

// themeToggledMsg reports the theme the store settled on. The flip
// already happened; err only means the server sync failed.
type themeToggledMsg struct {
	theme string
	err   error
}

// loggedOutMsg tells the app the session ended on purpose.
type loggedOutMsg struct{}

type accountModel struct {
	sess  *session.Store
	state accountState

	// edit details form
	name  string
	email string

	// change password form
	current    string
	newPass    string
	confirm    string
	focus      int
	fieldCount int
}

func newAccountModel(sess *session.Store) accountModel {
	return accountModel{sess: sess}
}

func (m accountModel) isEditing() bool {
	return m.state != acNormal
}

func (m accountModel) Update(msg tea.Msg) (accountModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		if msg.err != nil {
			return m, toastCmd(msg.err.Error(), toastError)
		}
		return m, toastCmd("profile updated", toastSuccess)

	case passwordChangedMsg:
		if msg.err != nil {
			return m, toastCmd(msg.err.Error(), toastError)
		}
		return m, toastCmd("password changed", toastSuccess)

	case themeToggledMsg:
		applyTheme(msg.theme)
		if msg.err != nil {
			return m, toastCmd("theme saved locally, sync failed: "+msg.err.Error(), toastError)
		}
		return m, toastCmd("theme: "+msg.theme, toastInfo)

	case tea.KeyMsg:
		switch m.state {
		case acEditDetails:
			return m.updateEditDetails(msg)
		case acChangePassword:
			return m.updateChangePassword(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m accountModel) updateNormal(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "e":
		user := m.sess.User()
		if user == nil {
			return m, nil
		}
		m.state = acEditDetails
		m.name, m.email = user.Name, user.Email
		m.focus, m.fieldCount = 0, 2
	case "p":
		m.state = acChangePassword
		m.current, m.newPass, m.confirm = "", "", ""
		m.focus, m.fieldCount = 0, 3
	case "t":
		sess := m.sess
		return m, func() tea.Msg {
			theme, err := sess.ToggleTheme(context.Background())
			return themeToggledMsg{theme: theme, err: err}
		}
	case "l":
		sess := m.sess
		return m, func() tea.Msg {
			sess.Logout(context.Background())
			return loggedOutMsg{}
		}
	}
	return m, nil
}

func (m accountModel) updateEditDetails(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = acNormal
		return m, nil
	case "tab", "down", "up", "shift+tab":
		m.focus = (m.focus + 1) % m.fieldCount
		return m, nil
	case "enter", "ctrl+s":
		name := strings.TrimSpace(m.name)
		email := strings.TrimSpace(m.email)
		if name == "" || email == "" {
			return m, toastCmd("name and email are required", toastError)
		}
		m.state = acNormal
		sess := m.sess
		return m, func() tea.Msg {
			return profileSavedMsg{err: sess.UpdateProfile(context.Background(), name, email)}
		}
	default:
		if m.focus == 0 {
			m.name = editRune(m.name, msg.String())
		} else {
			m.email = editRune(m.email, msg.String())
		}
		return m, nil
	}
}

func (m accountModel) updateChangePassword(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = acNormal
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % m.fieldCount
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + m.fieldCount - 1) % m.fieldCount
		return m, nil
	case "enter", "ctrl+s":
		if len(m.newPass) < 6 {
			return m, toastCmd("new password must be at least 6 characters", toastError)
		}
		if m.newPass != m.confirm {
			return m, toastCmd("passwords do not match", toastError)
		}
		current, newPass, confirm := m.current, m.newPass, m.confirm
		m.state = acNormal
		m.current, m.newPass, m.confirm = "", "", ""
		sess := m.sess
		return m, func() tea.Msg {
			return passwordChangedMsg{err: sess.ChangePassword(context.Background(), current, newPass, confirm)}
		}
	default:
		switch m.focus {
		case 0:
			m.current = editRune(m.current, msg.String())
		case 1:
			m.newPass = editRune(m.newPass, msg.String())
		default:
			m.confirm = editRune(m.confirm, msg.String())
		}
		return m, nil
	}
}

func (m accountModel) View(height int) string {
	switch m.state {
	case acEditDetails:
		return m.detailsFormView(height)
	case acChangePassword:
		return m.passwordFormView(height)
	}

	var b strings.Builder
	b.WriteString("\n")

	user := m.sess.User()
	if user == nil {
		b.WriteString("  " + dimStyle.Render("no profile loaded") + "\n")
		return truncateToHeight(b.String(), height)
	}

	fmt.Fprintf(&b, "  %s %s\n", sectionHeaderStyle.Render("Name "), normalStyle.Render(user.Name))
	fmt.Fprintf(&b, "  %s %s\n", sectionHeaderStyle.Render("Email"), normalStyle.Render(user.Email))
	fmt.Fprintf(&b, "  %s %s\n", sectionHeaderStyle.Render("Theme"), accentStyle.Render(m.sess.Theme()))
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "  %s %s\n", sectionHeaderStyle.Render("Since"), metaStyle.Render(formatDate(user.CreatedAt)))
	}

	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("e", "edit details"),
		helpEntry("p", "change password"),
		helpEntry("t", "toggle theme"),
		helpEntry("l", "log out"),
	}, "  ") + "\n")

	return truncateToHeight(b.String(), height)
}

func (m accountModel) detailsFormView(height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", selectedStyle.Render("Edit details"))
	b.WriteString(m.renderFields([]formField{
		{"Name", m.name, false},
		{"Email", m.email, false},
	}))
	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("tab", "next"),
		helpEntry("enter", "save"),
		helpEntry("esc", "cancel"),
	}, "  ") + "\n")
	return truncateToHeight(b.String(), height)
}

func (m accountModel) passwordFormView(height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", selectedStyle.Render("Change password"))
	b.WriteString(m.renderFields([]formField{
		{"Current", m.current, true},
		{"New", m.newPass, true},
		{"Confirm", m.confirm, true},
	}))
	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("tab", "next"),
		helpEntry("enter", "save"),
		helpEntry("esc", "cancel"),
	}, "  ") + "\n")
	return truncateToHeight(b.String(), height)
}

type formField struct {
	label  string
	value  string
	masked bool
}

func (m accountModel) renderFields(fields []formField) string {
	var b strings.Builder
	for i, f := range fields {
		value := f.value
		if f.masked {
			value = maskRunes(value)
		}
		prompt := "  "
		label := dimStyle.Render(fmt.Sprintf("%-10s", f.label))
		if i == m.focus {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(fmt.Sprintf("%-10s", f.label))
		}
		if value == "" && i != m.focus {
			value = inputPlaceholderStyle.Render("...")
		} else {
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, "  %s%s %s\n", prompt, label, value)
	}
	return b.String()
}
