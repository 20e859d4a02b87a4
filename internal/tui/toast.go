package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
	toastInfo
)

// showToastMsg is emitted by any view that wants a notification shown.
// The app model owns ID assignment and expiry.
type showToastMsg struct {
	message string
	kind    toastKind
}

// toastExpireMsg dismisses the toast with the given ID when its TTL
// elapses. Stale IDs are ignored.
type toastExpireMsg struct {
	id int
}

type toastItem struct {
	id      int
	message string
	kind    toastKind
}

// toastModel is the notification stack. IDs are monotonic and never
// reused, so a late expiry tick can never dismiss a newer toast.
type toastModel struct {
	items  []toastItem
	nextID int
}

func newToastModel() toastModel {
	return toastModel{nextID: 1}
}

// ttlFor returns how long a toast of the given kind stays visible.
// Errors linger longer so they can actually be read.
func ttlFor(kind toastKind) time.Duration {
	if kind == toastError {
		return 5 * time.Second
	}
	return 3 * time.Second
}

// push appends a toast and returns the expiry timer for it.
func (m *toastModel) push(message string, kind toastKind) tea.Cmd {
	id := m.nextID
	m.nextID++
	m.items = append(m.items, toastItem{id: id, message: message, kind: kind})

	return tea.Tick(ttlFor(kind), func(time.Time) tea.Msg {
		return toastExpireMsg{id: id}
	})
}

// dismiss removes the toast with the given ID. Dismissing an ID that
// is already gone is a no-op.
func (m *toastModel) dismiss(id int) {
	for i, item := range m.items {
		if item.id == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

// dismissOldest drops the front of the stack, for manual clearing.
func (m *toastModel) dismissOldest() {
	if len(m.items) > 0 {
		m.items = m.items[1:]
	}
}

// View renders active toasts in insertion order, one per line.
func (m toastModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, item := range m.items {
		var line string
		switch item.kind {
		case toastSuccess:
			line = toastSuccessStyle.Render("✓ " + item.message)
		case toastError:
			line = toastErrorStyle.Render("✗ " + item.message)
		default:
			line = toastInfoStyle.Render("· " + item.message)
		}
		b.WriteString(" " + line + "\n")
	}
	return b.String()
}

// toastCmd wraps a message into a command views can return.
func toastCmd(message string, kind toastKind) tea.Cmd {
	return func() tea.Msg {
		return showToastMsg{message: message, kind: kind}
	}
}
