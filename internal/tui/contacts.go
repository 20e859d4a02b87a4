package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahilbajaj/khata/internal/session"
	"github.com/sahilbajaj/khata/pkg/domain"
)

// contactDebounce is shorter than the transactions debounce; contact
// lists are small and cheap to refetch.
const contactDebounce = 400 * time.Millisecond

type contactState int

const (
	cNormal contactState = iota
	cSearching
	cAdding
	cEditing
	cDeleting
)

type contactsLoadedMsg struct {
	gen      int
	contacts []domain.Contact
	err      error
}

type balancesLoadedMsg struct {
	balances []domain.ContactBalance
	err      error
}

type contactSearchTickMsg struct {
	seq int
}

type contactSavedMsg struct {
	contact *domain.Contact
	created bool
	err     error
}

type contactDeletedMsg struct {
	id  string
	err error
}

type contactsModel struct {
	sess  *session.Store
	state contactState

	items    []domain.Contact
	balances []domain.ContactBalance
	cursor   int

	showBalances bool
	search       string
	searchSeq    int
	fetchGen     int

	formName  string
	formPhone string
	formFocus int // 0 name, 1 phone
	editingID string

	loading bool
	errMsg  string
}

func newContactsModel(sess *session.Store) contactsModel {
	return contactsModel{sess: sess}
}

func (m contactsModel) isEditing() bool {
	return m.state == cSearching || m.state == cAdding || m.state == cEditing
}

func (m contactsModel) fetch() (contactsModel, tea.Cmd) {
	m.fetchGen++
	m.loading = true
	gen := m.fetchGen
	search := m.search
	cli := m.sess.Client()
	return m, func() tea.Msg {
		contacts, err := cli.ListContacts(context.Background(), search)
		return contactsLoadedMsg{gen: gen, contacts: contacts, err: err}
	}
}

func (m contactsModel) fetchBalances() tea.Cmd {
	cli := m.sess.Client()
	return func() tea.Msg {
		balances, err := cli.ContactBalances(context.Background())
		return balancesLoadedMsg{balances: balances, err: err}
	}
}

func (m contactsModel) load() (contactsModel, tea.Cmd) {
	var cmd tea.Cmd
	m, cmd = m.fetch()
	return m, tea.Batch(cmd, m.fetchBalances())
}

func (m contactsModel) Update(msg tea.Msg) (contactsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case contactsLoadedMsg:
		if msg.gen != m.fetchGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, toastCmd("could not load contacts: "+msg.err.Error(), toastError)
		}
		m.errMsg = ""
		m.items = msg.contacts
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case balancesLoadedMsg:
		if msg.err == nil {
			m.balances = msg.balances
		}
		return m, nil

	case contactSearchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		return m.fetch()

	case contactSavedMsg:
		if msg.err != nil {
			return m, toastCmd(msg.err.Error(), toastError)
		}
		if msg.created {
			m.items = append(m.items, *msg.contact)
			return m, tea.Batch(toastCmd("contact added", toastSuccess), m.fetchBalances())
		}
		for i := range m.items {
			if m.items[i].ID == msg.contact.ID {
				m.items[i] = *msg.contact
				break
			}
		}
		return m, tea.Batch(toastCmd("contact updated", toastSuccess), m.fetchBalances())

	case contactDeletedMsg:
		if msg.err != nil {
			return m, toastCmd(msg.err.Error(), toastError)
		}
		for i := range m.items {
			if m.items[i].ID == msg.id {
				m.items = append(m.items[:i], m.items[i+1:]...)
				break
			}
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, tea.Batch(toastCmd("contact deleted", toastSuccess), m.fetchBalances())

	case tea.KeyMsg:
		switch m.state {
		case cSearching:
			return m.updateSearching(msg)
		case cAdding, cEditing:
			return m.updateForm(msg)
		case cDeleting:
			return m.updateDeleting(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m contactsModel) updateNormal(msg tea.KeyMsg) (contactsModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "/":
		m.state = cSearching
	case "b":
		m.showBalances = !m.showBalances
		if m.showBalances {
			return m, m.fetchBalances()
		}
	case "r":
		return m.load()
	case "a", "n":
		m.state = cAdding
		m.formName, m.formPhone, m.formFocus = "", "", 0
	case "e", "enter":
		if m.cursor < len(m.items) {
			c := m.items[m.cursor]
			m.state = cEditing
			m.editingID = c.ID
			m.formName, m.formPhone, m.formFocus = c.Name, c.Phone, 0
		}
	case "d":
		if m.cursor < len(m.items) {
			m.state = cDeleting
		}
	case "t":
		if m.cursor < len(m.items) {
			id := m.items[m.cursor].ID
			return m, func() tea.Msg { return navigateTxMsg{contactID: id} }
		}
	case "c":
		if m.cursor < len(m.items) && m.items[m.cursor].Phone != "" {
			phone := m.items[m.cursor].Phone
			return m, func() tea.Msg {
				if err := clipboard.WriteAll(phone); err != nil {
					return showToastMsg{message: "copy failed: " + err.Error(), kind: toastError}
				}
				return showToastMsg{message: "phone copied", kind: toastInfo}
			}
		}
	}
	return m, nil
}

func (m contactsModel) updateSearching(msg tea.KeyMsg) (contactsModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = cNormal
		return m, nil
	default:
		before := m.search
		m.search = editRune(m.search, msg.String())
		if m.search == before {
			return m, nil
		}
		m.searchSeq++
		seq := m.searchSeq
		return m, tea.Tick(contactDebounce, func(time.Time) tea.Msg {
			return contactSearchTickMsg{seq: seq}
		})
	}
}

func (m contactsModel) updateForm(msg tea.KeyMsg) (contactsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = cNormal
		return m, nil
	case "tab", "down", "up", "shift+tab":
		m.formFocus = 1 - m.formFocus
		return m, nil
	case "enter", "ctrl+s":
		name := strings.TrimSpace(m.formName)
		if name == "" {
			return m, toastCmd("name is required", toastError)
		}
		phone := strings.TrimSpace(m.formPhone)
		editing := m.state == cEditing
		id := m.editingID
		m.state = cNormal
		cli := m.sess.Client()
		return m, func() tea.Msg {
			if editing {
				c, err := cli.UpdateContact(context.Background(), id, name, phone)
				return contactSavedMsg{contact: c, err: err}
			}
			c, err := cli.CreateContact(context.Background(), name, phone)
			return contactSavedMsg{contact: c, created: true, err: err}
		}
	default:
		if m.formFocus == 0 {
			m.formName = editRune(m.formName, msg.String())
		} else {
			m.formPhone = editRune(m.formPhone, msg.String())
		}
		return m, nil
	}
}

func (m contactsModel) updateDeleting(msg tea.KeyMsg) (contactsModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.state = cNormal
		if m.cursor >= len(m.items) {
			return m, nil
		}
		id := m.items[m.cursor].ID
		cli := m.sess.Client()
		return m, func() tea.Msg {
			err := cli.DeleteContact(context.Background(), id)
			return contactDeletedMsg{id: id, err: err}
		}
	case "n", "esc":
		m.state = cNormal
	}
	return m, nil
}

// balanceFor finds the aggregate row for a contact, nil when the
// contact has no transactions yet.
func (m contactsModel) balanceFor(id string) *domain.ContactBalance {
	for i := range m.balances {
		if m.balances[i].ContactID == id {
			return &m.balances[i]
		}
	}
	return nil
}

func (m contactsModel) View(height int) string {
	if m.state == cAdding || m.state == cEditing {
		return m.formView(height)
	}

	var b strings.Builder
	b.WriteString("\n")

	if m.state == cSearching {
		fmt.Fprintf(&b, "  %s %s%s\n", inputPromptStyle.Render("/"), searchStyle.Render(m.search), accentStyle.Render("█"))
	} else if m.search != "" {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("search:"), searchStyle.Render(m.search))
	}

	if m.loading && len(m.items) == 0 {
		b.WriteString("  " + dimStyle.Render("loading contacts...") + "\n")
	} else if m.errMsg != "" && len(m.items) == 0 {
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
		b.WriteString("  " + dimStyle.Render("r to retry") + "\n")
	} else if len(m.items) == 0 {
		b.WriteString("  " + metaStyle.Render("no contacts yet, press a to add one") + "\n")
	}

	maxVisible := height - 6
	if maxVisible < 1 {
		maxVisible = 1
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	for i := start; i < len(m.items) && i < start+maxVisible; i++ {
		c := m.items[i]
		line := fmt.Sprintf("  %-20s %s", truncStr(c.Name, 20), metaStyle.Render(c.Phone))
		if m.showBalances {
			if bal := m.balanceFor(c.ID); bal != nil {
				line = fmt.Sprintf("  %-20s %s  %s",
					truncStr(c.Name, 20),
					balanceStyle(bal.Balance).Render(fmt.Sprintf("%12s", formatINR(bal.Balance))),
					metaStyle.Render(fmt.Sprintf("gave %s · took %s", formatINR(bal.TotalGave), formatINR(bal.TotalTook))))
			} else {
				line = fmt.Sprintf("  %-20s %s", truncStr(c.Name, 20), metaStyle.Render("no transactions"))
			}
		}
		if i == m.cursor {
			line = selectedRowBg.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.state == cDeleting && m.cursor < len(m.items) {
		fmt.Fprintf(&b, "\n  %s\n", errorStyle.Render(fmt.Sprintf("delete %s and all their transactions? y/n", m.items[m.cursor].Name)))
	} else {
		mode := "balances"
		if m.showBalances {
			mode = "details"
		}
		b.WriteString("\n  " + strings.Join([]string{
			helpEntry("a", "add"),
			helpEntry("e", "edit"),
			helpEntry("d", "delete"),
			helpEntry("/", "search"),
			helpEntry("b", mode),
			helpEntry("t", "transactions"),
			helpEntry("c", "copy phone"),
		}, "  ") + "\n")
	}

	return truncateToHeight(b.String(), height)
}

func (m contactsModel) formView(height int) string {
	var b strings.Builder

	title := "New contact"
	if m.state == cEditing {
		title = "Edit contact"
	}
	fmt.Fprintf(&b, "\n  %s\n\n", selectedStyle.Render(title))

	rows := []struct {
		label string
		value string
	}{
		{"Name", m.formName},
		{"Phone", m.formPhone},
	}
	for i, row := range rows {
		prompt := "  "
		label := dimStyle.Render(fmt.Sprintf("%-8s", row.label))
		if i == m.formFocus {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(fmt.Sprintf("%-8s", row.label))
		}
		value := normalStyle.Render(row.value)
		if row.value == "" && i != m.formFocus {
			value = inputPlaceholderStyle.Render("...")
		}
		fmt.Fprintf(&b, "  %s%s %s\n", prompt, label, value)
	}

	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("tab", "next"),
		helpEntry("enter", "save"),
		helpEntry("esc", "cancel"),
	}, "  ") + "\n")

	return truncateToHeight(b.String(), height)
}
