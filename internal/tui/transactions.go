package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahilbajaj/khata/internal/session"
	"github.com/sahilbajaj/khata/pkg/client"
	"github.com/sahilbajaj/khata/pkg/domain"
)

// searchDebounce is how long the search input must be idle before a
// fetch goes out.
const searchDebounce = 500 * time.Millisecond

type txState int

const (
	txNormal txState = iota
	txSearching
	txDateEntry
	txForm
	txConfirmDelete
)

const (
	txFieldType = iota
	txFieldAmount
	txFieldDate
	txFieldContact
	txFieldNote
	txFieldCount
)

// dateRange is the quick filter cycle: off, today, this week, this month.
type dateRange int

const (
	rangeOff dateRange = iota
	rangeToday
	rangeWeek
	rangeMonth
)

func (r dateRange) label() string {
	switch r {
	case rangeToday:
		return "today"
	case rangeWeek:
		return "this week"
	case rangeMonth:
		return "this month"
	default:
		return "all time"
	}
}

// bounds returns the start and end dates for the range, empty when off.
func (r dateRange) bounds(now time.Time) (string, string) {
	const layout = "2006-01-02"
	today := now.Format(layout)
	switch r {
	case rangeToday:
		return today, today
	case rangeWeek:
		weekday := int(now.Weekday())
		start := now.AddDate(0, 0, -weekday)
		return start.Format(layout), today
	case rangeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start.Format(layout), today
	default:
		return "", ""
	}
}

// customRangeLabel describes a free-form date range for the filter line.
func customRangeLabel(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + " to " + end
	case start != "":
		return "since " + start
	default:
		return "until " + end
	}
}

// txLoadedMsg delivers a page of transactions. gen identifies the
// fetch that produced it; stale generations are dropped.
type txLoadedMsg struct {
	gen   int
	items []domain.Transaction
	page  domain.Pagination
	err   error
}

// txSearchTickMsg fires when the debounce window for seq closes.
type txSearchTickMsg struct {
	seq int
}

// txContactsLoadedMsg delivers contacts for the form picker.
type txContactsLoadedMsg struct {
	contacts []domain.Contact
	err      error
}

// txSavedMsg delivers the result of a create or update.
type txSavedMsg struct {
	tx      *domain.Transaction
	created bool
	err     error
}

// txDeletedMsg delivers the result of a delete.
type txDeletedMsg struct {
	id  string
	err error
}

type txFormState struct {
	editingID string
	focus     int
	txType    string
	amount    string
	date      string
	note      string
	// contactIdx indexes into contacts; -1 means Personal. When a form
	// opens for editing before the picker has loaded, pendingContactID
	// holds the contact to select once it does.
	contactIdx       int
	pendingContactID string
}

type transactionsModel struct {
	sess  *session.Store
	state txState

	items  []domain.Transaction
	page   domain.Pagination
	cursor int

	search    string
	searchSeq int
	fetchGen  int

	quickRange    dateRange
	typeFilter    string
	contactFilter string

	// customStart and customEnd are applied free-form dates. When either
	// is set they take precedence over quickRange. The entry* fields hold
	// the in-progress values while the date entry is open.
	customStart string
	customEnd   string
	entryStart  string
	entryEnd    string
	entryFocus  int

	contacts []domain.Contact
	form     txFormState
	loading  bool
	errMsg   string
}

func newTransactionsModel(sess *session.Store) transactionsModel {
	return transactionsModel{sess: sess, page: domain.Pagination{Page: 1}}
}

// applyPreset installs a filter coming from another view and refetches.
func (m transactionsModel) applyPreset(contactID, txType string) (transactionsModel, tea.Cmd) {
	m.contactFilter = contactID
	m.typeFilter = txType
	m.search = ""
	m.quickRange = rangeOff
	m.customStart, m.customEnd = "", ""
	m.page.Page = 1
	return m.fetch()
}

// fetch kicks off a list request for the current filters. Each call
// bumps the generation so any in-flight response loses the race.
func (m transactionsModel) fetch() (transactionsModel, tea.Cmd) {
	m.fetchGen++
	m.loading = true
	gen := m.fetchGen

	start, end := m.quickRange.bounds(time.Now())
	if m.customStart != "" || m.customEnd != "" {
		start, end = m.customStart, m.customEnd
	}
	filter := client.TransactionFilter{
		Search:    m.search,
		StartDate: start,
		EndDate:   end,
		ContactID: m.contactFilter,
		Type:      m.typeFilter,
		Page:      m.page.Page,
		Limit:     pageSize,
	}
	cli := m.sess.Client()
	return m, func() tea.Msg {
		items, page, err := cli.ListTransactions(context.Background(), filter)
		return txLoadedMsg{gen: gen, items: items, page: page, err: err}
	}
}

func (m transactionsModel) loadContacts() tea.Cmd {
	cli := m.sess.Client()
	return func() tea.Msg {
		contacts, err := cli.ListContacts(context.Background(), "")
		return txContactsLoadedMsg{contacts: contacts, err: err}
	}
}

func (m transactionsModel) isEditing() bool {
	return m.state == txSearching || m.state == txDateEntry || m.state == txForm
}

func (m transactionsModel) Update(msg tea.Msg) (transactionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txLoadedMsg:
		if msg.gen != m.fetchGen {
			return m, nil // a newer fetch superseded this one
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, toastCmd("could not load transactions: "+msg.err.Error(), toastError)
		}
		m.errMsg = ""
		m.items = msg.items
		m.page = msg.page
		if m.page.Page == 0 {
			m.page.Page = 1
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case txSearchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil // superseded by later keystrokes
		}
		m.page.Page = 1
		return m.fetch()

	case txContactsLoadedMsg:
		if msg.err == nil {
			m.contacts = msg.contacts
			if id := m.form.pendingContactID; id != "" {
				for i, c := range m.contacts {
					if c.ID == id {
						m.form.contactIdx = i
						break
					}
				}
				m.form.pendingContactID = ""
			}
		}
		return m, nil

	case txSavedMsg:
		if msg.err != nil {
			return m, toastCmd(msg.err.Error(), toastError)
		}
		if msg.created {
			m.items = append([]domain.Transaction{*msg.tx}, m.items...)
			m.page.Total++
			return m, toastCmd("transaction added", toastSuccess)
		}
		for i := range m.items {
			if m.items[i].ID == msg.tx.ID {
				m.items[i] = *msg.tx
				break
			}
		}
		return m, toastCmd("transaction updated", toastSuccess)

	case txDeletedMsg:
		if msg.err != nil {
			return m, toastCmd(msg.err.Error(), toastError)
		}
		for i := range m.items {
			if m.items[i].ID == msg.id {
				m.items = append(m.items[:i], m.items[i+1:]...)
				break
			}
		}
		if m.page.Total > 0 {
			m.page.Total--
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		// Deleting the entry that is open in the form abandons the edit.
		if m.state == txForm && m.form.editingID == msg.id {
			m.state = txNormal
			m.form = txFormState{}
		}
		return m, toastCmd("transaction deleted", toastSuccess)

	case tea.KeyMsg:
		switch m.state {
		case txSearching:
			return m.updateSearching(msg)
		case txDateEntry:
			return m.updateDateEntry(msg)
		case txForm:
			return m.updateForm(msg)
		case txConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m transactionsModel) updateNormal(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
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
		m.state = txSearching
	case "f":
		m.quickRange = (m.quickRange + 1) % 4
		m.customStart, m.customEnd = "", ""
		m.page.Page = 1
		return m.fetch()
	case "t":
		m.state = txDateEntry
		m.entryStart = m.customStart
		m.entryEnd = m.customEnd
		m.entryFocus = 0
	case "g":
		// cycle the type filter: all -> GAVE -> TOOK -> all
		switch m.typeFilter {
		case "":
			m.typeFilter = domain.TypeGave
		case domain.TypeGave:
			m.typeFilter = domain.TypeTook
		default:
			m.typeFilter = ""
		}
		m.page.Page = 1
		return m.fetch()
	case "x":
		if m.contactFilter != "" || m.typeFilter != "" || m.search != "" || m.quickRange != rangeOff || m.customStart != "" || m.customEnd != "" {
			m.contactFilter = ""
			m.typeFilter = ""
			m.search = ""
			m.quickRange = rangeOff
			m.customStart, m.customEnd = "", ""
			m.page.Page = 1
			return m.fetch()
		}
	case "[":
		if m.page.Page > 1 {
			m.page.Page--
			return m.fetch()
		}
	case "]":
		if m.page.Page < m.page.Pages {
			m.page.Page++
			return m.fetch()
		}
	case "r":
		return m.fetch()
	case "n":
		m.state = txForm
		m.form = txFormState{
			txType:     domain.TypeGave,
			date:       time.Now().Format("2006-01-02"),
			contactIdx: -1,
		}
		return m, m.loadContacts()
	case "e", "enter":
		if m.cursor < len(m.items) {
			tx := m.items[m.cursor]
			m.state = txForm
			m.form = txFormState{
				editingID:  tx.ID,
				txType:     tx.Type,
				amount:     strconv.FormatFloat(tx.Amount, 'f', -1, 64),
				date:       tx.TransactionDate.Format("2006-01-02"),
				note:       tx.Note,
				contactIdx: -1,
			}
			if tx.Contact != nil {
				m.form.pendingContactID = tx.Contact.ID
			}
			return m, m.loadContacts()
		}
	case "d":
		if m.cursor < len(m.items) {
			m.state = txConfirmDelete
		}
	case "c":
		if m.cursor < len(m.items) {
			tx := m.items[m.cursor]
			line := fmt.Sprintf("%s %s %s %s", tx.Type, formatINR(tx.Amount), contactLabel(tx.Contact), tx.TransactionDate.Format("2006-01-02"))
			return m, func() tea.Msg {
				if err := clipboard.WriteAll(line); err != nil {
					return showToastMsg{message: "copy failed: " + err.Error(), kind: toastError}
				}
				return showToastMsg{message: "copied to clipboard", kind: toastInfo}
			}
		}
	}
	return m, nil
}

func (m transactionsModel) updateSearching(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = txNormal
		return m, nil
	default:
		before := m.search
		m.search = editRune(m.search, msg.String())
		if m.search == before {
			return m, nil
		}
		m.searchSeq++
		seq := m.searchSeq
		return m, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return txSearchTickMsg{seq: seq}
		})
	}
}

func (m transactionsModel) updateDateEntry(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = txNormal
		return m, nil
	case "tab", "up", "down":
		m.entryFocus = 1 - m.entryFocus
		return m, nil
	case "enter":
		start := strings.TrimSpace(m.entryStart)
		end := strings.TrimSpace(m.entryEnd)
		for _, d := range []string{start, end} {
			if d == "" {
				continue
			}
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return m, toastCmd("dates must be YYYY-MM-DD", toastError)
			}
		}
		if start != "" && end != "" && start > end {
			return m, toastCmd("start date is after end date", toastError)
		}
		m.state = txNormal
		m.customStart, m.customEnd = start, end
		m.quickRange = rangeOff
		m.page.Page = 1
		return m.fetch()
	default:
		if m.entryFocus == 0 {
			m.entryStart = editRune(m.entryStart, msg.String())
		} else {
			m.entryEnd = editRune(m.entryEnd, msg.String())
		}
		return m, nil
	}
}

func (m transactionsModel) updateConfirmDelete(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.state = txNormal
		if m.cursor >= len(m.items) {
			return m, nil
		}
		id := m.items[m.cursor].ID
		cli := m.sess.Client()
		return m, func() tea.Msg {
			err := cli.DeleteTransaction(context.Background(), id)
			return txDeletedMsg{id: id, err: err}
		}
	case "n", "esc":
		m.state = txNormal
	}
	return m, nil
}

func (m transactionsModel) updateForm(msg tea.KeyMsg) (transactionsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = txNormal
		m.form = txFormState{}
		return m, nil
	case "tab", "down":
		m.form.focus = (m.form.focus + 1) % txFieldCount
		return m, nil
	case "shift+tab", "up":
		m.form.focus = (m.form.focus + txFieldCount - 1) % txFieldCount
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	}

	switch m.form.focus {
	case txFieldType:
		if msg.String() == "h" || msg.String() == "l" || msg.String() == "left" || msg.String() == "right" {
			if m.form.txType == domain.TypeGave {
				m.form.txType = domain.TypeTook
			} else {
				m.form.txType = domain.TypeGave
			}
		}
	case txFieldContact:
		switch msg.String() {
		case "h", "left":
			if m.form.contactIdx > -1 {
				m.form.contactIdx--
			}
		case "l", "right":
			if m.form.contactIdx < len(m.contacts)-1 {
				m.form.contactIdx++
			}
		}
	case txFieldAmount:
		m.form.amount = editRune(m.form.amount, msg.String())
	case txFieldDate:
		m.form.date = editRune(m.form.date, msg.String())
	case txFieldNote:
		m.form.note = editRune(m.form.note, msg.String())
	}
	return m, nil
}

func (m transactionsModel) submitForm() (transactionsModel, tea.Cmd) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.form.amount), 64)
	if err != nil || amount <= 0 {
		return m, toastCmd("amount must be a positive number", toastError)
	}
	if _, err := time.Parse("2006-01-02", m.form.date); err != nil {
		return m, toastCmd("date must be YYYY-MM-DD", toastError)
	}

	req := client.TransactionRequest{
		Type:            m.form.txType,
		Amount:          amount,
		Note:            strings.TrimSpace(m.form.note),
		TransactionDate: m.form.date,
	}
	if m.form.contactIdx >= 0 && m.form.contactIdx < len(m.contacts) {
		id := m.contacts[m.form.contactIdx].ID
		req.Contact = &id
	}

	editingID := m.form.editingID
	m.state = txNormal
	m.form = txFormState{}
	cli := m.sess.Client()
	return m, func() tea.Msg {
		if editingID != "" {
			tx, err := cli.UpdateTransaction(context.Background(), editingID, req)
			return txSavedMsg{tx: tx, err: err}
		}
		tx, err := cli.CreateTransaction(context.Background(), req)
		return txSavedMsg{tx: tx, created: true, err: err}
	}
}

func (m transactionsModel) View(height int) string {
	if m.state == txForm {
		return m.formView(height)
	}

	var b strings.Builder
	b.WriteString("\n")

	// Search line
	if m.state == txSearching {
		fmt.Fprintf(&b, "  %s %s%s\n", inputPromptStyle.Render("/"), searchStyle.Render(m.search), accentStyle.Render("█"))
	} else if m.search != "" {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("search:"), searchStyle.Render(m.search))
	}

	// Date entry line
	if m.state == txDateEntry {
		start, end := m.entryStart, m.entryEnd
		cursor := accentStyle.Render("█")
		if m.entryFocus == 0 {
			start += cursor
		} else {
			end += cursor
		}
		fmt.Fprintf(&b, "  %s %s  %s %s\n",
			metaStyle.Render("from:"), searchStyle.Render(start),
			metaStyle.Render("to:"), searchStyle.Render(end))
		b.WriteString("  " + dimStyle.Render("YYYY-MM-DD, blank for open end · enter apply · esc cancel") + "\n")
	}

	// Active filters
	var filters []string
	if m.customStart != "" || m.customEnd != "" {
		filters = append(filters, customRangeLabel(m.customStart, m.customEnd))
	} else if m.quickRange != rangeOff {
		filters = append(filters, m.quickRange.label())
	}
	if m.typeFilter != "" {
		filters = append(filters, m.typeFilter)
	}
	if m.contactFilter != "" {
		filters = append(filters, "contact")
	}
	if len(filters) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render("filters:"), accentStyle.Render(strings.Join(filters, ", ")))
	}

	if m.loading && len(m.items) == 0 {
		b.WriteString("  " + dimStyle.Render("loading transactions...") + "\n")
	} else if m.errMsg != "" && len(m.items) == 0 {
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
		b.WriteString("  " + dimStyle.Render("r to retry") + "\n")
	} else if len(m.items) == 0 {
		b.WriteString("  " + metaStyle.Render("no transactions found") + "\n")
	}

	maxVisible := height - 8
	if maxVisible < 1 {
		maxVisible = 1
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	for i := start; i < len(m.items) && i < start+maxVisible; i++ {
		tx := m.items[i]
		marker, style := "↑", negativeStyle
		if tx.Type == domain.TypeTook {
			marker, style = "↓", positiveStyle
		}
		line := fmt.Sprintf(" %s %s  %-16s %s  %s",
			style.Render(marker),
			amountStyle(tx.Type).Render(fmt.Sprintf("%12s", formatINR(tx.Amount))),
			truncStr(contactLabel(tx.Contact), 16),
			metaStyle.Render(formatDate(tx.TransactionDate)),
			dimStyle.Render(truncStr(tx.Note, 28)))
		if i == m.cursor {
			line = selectedRowBg.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.page.Pages > 1 {
		fmt.Fprintf(&b, "\n  %s\n", metaStyle.Render(fmt.Sprintf("page %d/%d · %d total", m.page.Page, m.page.Pages, m.page.Total)))
	}

	if m.state == txConfirmDelete && m.cursor < len(m.items) {
		fmt.Fprintf(&b, "\n  %s\n", errorStyle.Render(fmt.Sprintf("delete %s %s? y/n", m.items[m.cursor].Type, formatINR(m.items[m.cursor].Amount))))
	} else {
		b.WriteString("\n  " + strings.Join([]string{
			helpEntry("n", "new"),
			helpEntry("e", "edit"),
			helpEntry("d", "delete"),
			helpEntry("/", "search"),
			helpEntry("f", m.quickRange.label()),
			helpEntry("t", "dates"),
			helpEntry("g", "type"),
			helpEntry("[ ]", "page"),
			helpEntry("c", "copy"),
		}, "  ") + "\n")
	}

	return truncateToHeight(b.String(), height)
}

func (m transactionsModel) formView(height int) string {
	var b strings.Builder

	title := "New transaction"
	if m.form.editingID != "" {
		title = "Edit transaction"
	}
	fmt.Fprintf(&b, "\n  %s\n\n", selectedStyle.Render(title))

	contactName := "Personal"
	if m.form.contactIdx >= 0 && m.form.contactIdx < len(m.contacts) {
		contactName = m.contacts[m.form.contactIdx].Name
	}

	rows := []struct {
		label string
		value string
		pick  bool
	}{
		{"Type", m.form.txType, true},
		{"Amount", m.form.amount, false},
		{"Date", m.form.date, false},
		{"Contact", contactName, true},
		{"Note", m.form.note, false},
	}
	for i, row := range rows {
		prompt := "  "
		label := dimStyle.Render(fmt.Sprintf("%-10s", row.label))
		if i == m.form.focus {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(fmt.Sprintf("%-10s", row.label))
		}
		value := row.value
		if row.pick {
			value = accentStyle.Render("< " + value + " >")
		} else if value == "" && i != m.form.focus {
			value = inputPlaceholderStyle.Render("...")
		} else {
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, "  %s%s %s\n", prompt, label, value)
	}

	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("tab", "next"),
		helpEntry("h/l", "change"),
		helpEntry("ctrl+s", "save"),
		helpEntry("esc", "cancel"),
	}, "  ") + "\n")

	return truncateToHeight(b.String(), height)
}
