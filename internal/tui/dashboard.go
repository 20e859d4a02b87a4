package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sahilbajaj/khata/internal/session"
	"github.com/sahilbajaj/khata/pkg/domain"
)

// summaryLoadedMsg delivers the dashboard aggregates.
type summaryLoadedMsg struct {
	summary *domain.Summary
	err     error
}

// navigateTxMsg asks the app to switch to the transactions view with a
// filter preset.
type navigateTxMsg struct {
	contactID string
	txType    string
}

type dashboardModel struct {
	sess    *session.Store
	summary *domain.Summary
	loading bool
	errMsg  string
}

func newDashboardModel(sess *session.Store) dashboardModel {
	return dashboardModel{sess: sess}
}

func (m dashboardModel) load() (dashboardModel, tea.Cmd) {
	m.loading = true
	cli := m.sess.Client()
	return m, func() tea.Msg {
		summary, err := cli.DashboardSummary(context.Background())
		return summaryLoadedMsg{summary: summary, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, toastCmd("could not load summary: "+msg.err.Error(), toastError)
		}
		m.errMsg = ""
		m.summary = msg.summary
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m.load()
		case "i":
			return m, func() tea.Msg { return navigateTxMsg{txType: domain.TypeTook} }
		case "e":
			return m, func() tea.Msg { return navigateTxMsg{txType: domain.TypeGave} }
		case "a", "enter":
			return m, func() tea.Msg { return navigateTxMsg{} }
		}
	}
	return m, nil
}

func (m dashboardModel) View(height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if m.loading && m.summary == nil {
		b.WriteString("  " + dimStyle.Render("loading summary...") + "\n")
		return truncateToHeight(b.String(), height)
	}
	if m.summary == nil {
		if m.errMsg != "" {
			b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
			b.WriteString("  " + dimStyle.Render("r to retry") + "\n")
		}
		return truncateToHeight(b.String(), height)
	}

	s := m.summary
	fmt.Fprintf(&b, "  %s  %s\n", sectionHeaderStyle.Render("Took in  "), positiveStyle.Render(formatINR(s.TotalTook)))
	fmt.Fprintf(&b, "  %s  %s\n", sectionHeaderStyle.Render("Gave out "), negativeStyle.Render(formatINR(s.TotalGave)))
	fmt.Fprintf(&b, "  %s  %s\n", sectionHeaderStyle.Render("Net      "), balanceStyle(s.NetBalance).Render(formatINR(s.NetBalance)))

	b.WriteString("\n  " + sectionHeaderStyle.Render("Recent activity") + "\n")
	if len(s.RecentTransactions) == 0 {
		b.WriteString("  " + metaStyle.Render("nothing yet, add a transaction to get started") + "\n")
	}
	for _, tx := range s.RecentTransactions {
		line := fmt.Sprintf("  %s  %-18s %s",
			amountStyle(tx.Type).Render(fmt.Sprintf("%12s", formatINR(tx.Amount))),
			truncStr(contactLabel(tx.Contact), 18),
			metaStyle.Render(formatTime(tx.CreatedAt)))
		if tx.Note != "" {
			line += "  " + dimStyle.Render(truncStr(tx.Note, 30))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n  " + strings.Join([]string{
		helpEntry("r", "refresh"),
		helpEntry("i", "money in"),
		helpEntry("e", "money out"),
		helpEntry("a", "all transactions"),
	}, "  ") + "\n")

	return truncateToHeight(b.String(), height)
}
