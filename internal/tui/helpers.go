package tui

import (
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/sahilbajaj/khata/pkg/domain"
)

// formatTime renders a relative timestamp for list displays.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatDate renders a transaction date as a short calendar date.
func formatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

// formatINR renders an amount in rupees with Indian digit grouping,
// e.g. 123456.78 -> "₹1,23,456.78". Amounts are rounded to paise.
func formatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	paise := int64(math.Round(amount * 100))
	rupees := paise / 100
	frac := paise % 100

	s := "₹" + groupIndian(strconv.FormatInt(rupees, 10)) + fmt.Sprintf(".%02d", frac)
	if neg {
		return "-" + s
	}
	return s
}

// groupIndian inserts commas per the Indian numbering system: the last
// three digits form one group, everything before that groups in twos.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	out := ""
	for _, g := range groups {
		out += g + ","
	}
	return out + tail
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// contactLabel names the counterparty of a transaction, falling back
// to "Personal" for entries with no contact.
func contactLabel(c *domain.Contact) string {
	if c != nil && c.Name != "" {
		return c.Name
	}
	return "Personal"
}
