package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahilbajaj/khata/internal/session"
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
)

const (
	authFieldName = iota
	authFieldEmail
	authFieldPassword
	authFieldConfirm
)

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	err error
}

// authModel is the combined login/register screen. Register shows two
// extra fields; everything else is shared.
type authModel struct {
	sess       *session.Store
	mode       authMode
	values     [4]string
	focus      int
	submitting bool
	errMsg     string
}

func newAuthModel(sess *session.Store) authModel {
	return authModel{sess: sess, focus: authFieldEmail}
}

func (m authModel) fieldVisible(field int) bool {
	if m.mode == authLogin {
		return field == authFieldEmail || field == authFieldPassword
	}
	return true
}

func (m authModel) firstField() int {
	if m.mode == authLogin {
		return authFieldEmail
	}
	return authFieldName
}

func (m authModel) lastField() int {
	if m.mode == authLogin {
		return authFieldPassword
	}
	return authFieldConfirm
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, toastCmd(msg.err.Error(), toastError)
		}
		m.errMsg = ""
		m.values = [4]string{}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus = m.nextField(1)
			return m, nil
		case "shift+tab", "up":
			m.focus = m.nextField(-1)
			return m, nil
		case "ctrl+r":
			m = m.toggleMode()
			return m, nil
		case "enter":
			if m.focus == m.lastField() {
				return m.submit()
			}
			m.focus = m.nextField(1)
			return m, nil
		case "ctrl+s":
			return m.submit()
		default:
			m.values[m.focus] = editRune(m.values[m.focus], msg.String())
			return m, nil
		}
	}
	return m, nil
}

func (m authModel) nextField(dir int) int {
	f := m.focus
	for {
		f += dir
		if f < m.firstField() {
			f = m.lastField()
		}
		if f > m.lastField() {
			f = m.firstField()
		}
		if m.fieldVisible(f) {
			return f
		}
	}
}

func (m authModel) toggleMode() authModel {
	if m.mode == authLogin {
		m.mode = authRegister
		m.focus = authFieldName
	} else {
		m.mode = authLogin
		m.focus = authFieldEmail
	}
	m.errMsg = ""
	return m
}

func (m authModel) submit() (authModel, tea.Cmd) {
	name := strings.TrimSpace(m.values[authFieldName])
	email := strings.TrimSpace(m.values[authFieldEmail])
	password := m.values[authFieldPassword]
	confirm := m.values[authFieldConfirm]

	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}
	if m.mode == authRegister {
		if name == "" {
			m.errMsg = "name is required"
			return m, nil
		}
		if len(password) < 6 {
			m.errMsg = "password must be at least 6 characters"
			return m, nil
		}
		if password != confirm {
			m.errMsg = "passwords do not match"
			return m, nil
		}
	}

	m.submitting = true
	m.errMsg = ""
	sess, mode := m.sess, m.mode
	return m, func() tea.Msg {
		var err error
		if mode == authRegister {
			err = sess.Register(context.Background(), name, email, password)
		} else {
			err = sess.Login(context.Background(), email, password)
		}
		return authResultMsg{err: err}
	}
}

func (m authModel) View(height int) string {
	var b strings.Builder

	title := "Sign in to Khata"
	modeHint := "register instead"
	if m.mode == authRegister {
		title = "Create your Khata account"
		modeHint = "sign in instead"
	}
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", selectedStyle.Render(title), metaStyle.Render("track what you gave and what you took"))

	labels := [4]string{"Name", "Email", "Password", "Confirm password"}
	for f := authFieldName; f <= authFieldConfirm; f++ {
		if !m.fieldVisible(f) {
			continue
		}
		value := m.values[f]
		if f == authFieldPassword || f == authFieldConfirm {
			value = maskRunes(value)
		}
		prompt := "  "
		label := dimStyle.Render(fmt.Sprintf("%-18s", labels[f]))
		if f == m.focus {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(fmt.Sprintf("%-18s", labels[f]))
		}
		if value == "" && f != m.focus {
			value = inputPlaceholderStyle.Render("...")
		} else {
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, "  %s%s %s\n", prompt, label, value)
	}

	b.WriteString("\n")
	if m.submitting {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render("signing in..."))
	} else if m.errMsg != "" {
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render(m.errMsg))
	}

	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("tab", "next field"),
		helpEntry("enter", "submit"),
		helpEntry("ctrl+r", modeHint),
		helpEntry("ctrl+c", "quit"),
	}, "  ") + "\n")

	return truncateToHeight(b.String(), height)
}
