package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sahilbajaj/khata/internal/session"
)

type view int

const (
	viewAuth view = iota
	viewDashboard
	viewTransactions
	viewContacts
	viewAccount
)

// sessionReadyMsg carries the result of the startup session probe.
type sessionReadyMsg struct {
	err error
}

// App is the root Bubbletea model.
type App struct {
	sess         *session.Store
	view         view
	auth         authModel
	dashboard    dashboardModel
	transactions transactionsModel
	contacts     contactsModel
	account      accountModel
	toasts       toastModel
	width        int
	height       int
}

// NewApp creates the TUI application around an initialized or
// uninitialized session store; Init resolves it either way.
func NewApp(sess *session.Store) App {
	return App{
		sess:         sess,
		auth:         newAuthModel(sess),
		dashboard:    newDashboardModel(sess),
		transactions: newTransactionsModel(sess),
		contacts:     newContactsModel(sess),
		account:      newAccountModel(sess),
		toasts:       newToastModel(),
	}
}

func (a App) Init() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		err := sess.Initialize(context.Background())
		return sessionReadyMsg{err: err}
	}
}

// enterView switches tabs and kicks off that view's data load.
func (a App) enterView(v view) (App, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	switch v {
	case viewDashboard:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.load()
		return a, cmd
	case viewTransactions:
		var cmd tea.Cmd
		a.transactions, cmd = a.transactions.fetch()
		return a, cmd
	case viewContacts:
		var cmd tea.Cmd
		a.contacts, cmd = a.contacts.load()
		return a, cmd
	}
	return a, nil
}

// applyGate reconciles the active view with the session state. It runs
// after every message, so a 401 eviction or a successful login flips
// the screen on the same frame the state changed.
func (a App) applyGate() (App, tea.Cmd) {
	st := a.sess.State()
	if a.view == viewAuth {
		if resolvePublic(st) == gateRedirect {
			applyTheme(a.sess.Theme())
			return a.enterView(viewDashboard)
		}
		return a, nil
	}
	if resolveProtected(st) == gateRedirect {
		a.view = viewAuth
		a.auth = newAuthModel(a.sess)
		applyTheme(a.sess.Theme())
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewAuth:
		return true
	case viewTransactions:
		return a.transactions.isEditing()
	case viewContacts:
		return a.contacts.isEditing()
	case viewAccount:
		return a.account.isEditing()
	}
	return false
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case sessionReadyMsg:
		applyTheme(a.sess.Theme())
		if msg.err != nil {
			cmds = append(cmds, a.toasts.push("session expired, please sign in again", toastInfo))
		}

	case showToastMsg:
		return a, a.toasts.push(msg.message, msg.kind)

	case toastExpireMsg:
		a.toasts.dismiss(msg.id)
		return a, nil

	case navigateTxMsg:
		a.view = viewTransactions
		var cmd tea.Cmd
		a.transactions, cmd = a.transactions.applyPreset(msg.contactID, msg.txType)
		return a, cmd

	case loggedOutMsg:
		var cmd tea.Cmd
		a, cmd = a.applyGate()
		return a, tea.Batch(cmd, a.toasts.push("logged out", toastInfo))

	case tea.KeyMsg:
		if !a.isEditing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				return a.enterView(viewDashboard)
			case "2":
				return a.enterView(viewTransactions)
			case "3":
				return a.enterView(viewContacts)
			case "4":
				a.view = viewAccount
				return a, nil
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	// Route to the active view. Session-changing results (auth, theme,
	// logout) run through their owners before the gate reconciles.
	var cmd tea.Cmd
	switch a.view {
	case viewAuth:
		a.auth, cmd = a.auth.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewTransactions:
		a.transactions, cmd = a.transactions.Update(msg)
	case viewContacts:
		a.contacts, cmd = a.contacts.Update(msg)
	case viewAccount:
		a.account, cmd = a.account.Update(msg)
	}
	cmds = append(cmds, cmd)

	var gateCmd tea.Cmd
	a, gateCmd = a.applyGate()
	cmds = append(cmds, gateCmd)

	return a, tea.Batch(cmds...)
}

func (a App) View() string {
	st := a.sess.State()
	if st == session.StateUninitialized || st == session.StateLoading {
		return "\n  " + dimStyle.Render("khata · checking your session...") + "\n"
	}

	bodyHeight := a.height - 3 // header + tabs + trailing line
	if bodyHeight < 5 {
		bodyHeight = 20
	}

	if a.view == viewAuth {
		return a.auth.View(bodyHeight) + a.toasts.View()
	}

	// Header: app name left, signed-in user right
	title := accentStyle.Bold(true).Render("KHATA")
	who := ""
	if user := a.sess.User(); user != nil {
		who = metaStyle.Render(user.Email)
	}
	pad := a.width - lipgloss.Width(title) - lipgloss.Width(who) - 4
	if pad < 1 {
		pad = 1
	}
	header := "  " + title + strings.Repeat(" ", pad) + who

	// Tab bar
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Dashboard", viewDashboard},
		{"2", "Transactions", viewTransactions},
		{"3", "Contacts", viewContacts},
		{"4", "Account", viewAccount},
	}
	var tabBar strings.Builder
	tabBar.WriteString("  ")
	for _, t := range tabs {
		if t.v == a.view {
			tabBar.WriteString(accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name))
		} else {
			tabBar.WriteString(metaStyle.Render(t.key) + " " + dimStyle.Render(t.name))
		}
		tabBar.WriteString("   ")
	}

	var body string
	switch a.view {
	case viewDashboard:
		body = a.dashboard.View(bodyHeight)
	case viewTransactions:
		body = a.transactions.View(bodyHeight)
	case viewContacts:
		body = a.contacts.View(bodyHeight)
	case viewAccount:
		body = a.account.View(bodyHeight)
	}
	body = strings.TrimRight(body, "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, a.toasts.View())
}
