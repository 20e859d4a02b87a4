package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sahilbajaj/khata/pkg/domain"
)

// palette holds the colors that differ between the light and dark
// themes. Everything downstream reads the package-level style vars,
// which applyTheme reassigns in place.
type palette struct {
	text        lipgloss.Color
	bright      lipgloss.Color
	dim         lipgloss.Color
	meta        lipgloss.Color
	accent      lipgloss.Color
	positive    lipgloss.Color
	negative    lipgloss.Color
	warn        lipgloss.Color
	placeholder lipgloss.Color
	rowBg       lipgloss.Color
}

var darkPalette = palette{
	text:        lipgloss.Color("#c0c4d0"),
	bright:      lipgloss.Color("#e4e4ec"),
	dim:         lipgloss.Color("#8890a0"),
	meta:        lipgloss.Color("#505868"),
	accent:      lipgloss.Color("#34d474"),
	positive:    lipgloss.Color("#4ade80"),
	negative:    lipgloss.Color("#e06060"),
	warn:        lipgloss.Color("#d4a844"),
	placeholder: lipgloss.Color("#343c4a"),
	rowBg:       lipgloss.Color("#1e1e2a"),
}

var lightPalette = palette{
	text:        lipgloss.Color("#2a2e38"),
	bright:      lipgloss.Color("#11131a"),
	dim:         lipgloss.Color("#5a626e"),
	meta:        lipgloss.Color("#8890a0"),
	accent:      lipgloss.Color("#0d8a46"),
	positive:    lipgloss.Color("#15803d"),
	negative:    lipgloss.Color("#b91c1c"),
	warn:        lipgloss.Color("#92640c"),
	placeholder: lipgloss.Color("#b0b6c0"),
	rowBg:       lipgloss.Color("#e4e8f0"),
}

var (
	normalStyle           lipgloss.Style
	selectedStyle         lipgloss.Style
	dimStyle              lipgloss.Style
	metaStyle             lipgloss.Style
	accentStyle           lipgloss.Style
	positiveStyle         lipgloss.Style
	negativeStyle         lipgloss.Style
	errorStyle            lipgloss.Style
	sectionHeaderStyle    lipgloss.Style
	helpKeyStyle          lipgloss.Style
	helpLabelStyle        lipgloss.Style
	searchStyle           lipgloss.Style
	inputPromptStyle      lipgloss.Style
	inputPlaceholderStyle lipgloss.Style
	selectedRowBg         lipgloss.Style

	toastSuccessStyle lipgloss.Style
	toastErrorStyle   lipgloss.Style
	toastInfoStyle    lipgloss.Style
)

func init() {
	applyTheme(domain.ThemeDark)
}

// applyTheme swaps the active palette. Safe to call between frames;
// the next View picks up the new styles.
func applyTheme(name string) {
	p := darkPalette
	if name == domain.ThemeLight {
		p = lightPalette
	}

	normalStyle = lipgloss.NewStyle().Foreground(p.text)
	selectedStyle = lipgloss.NewStyle().Foreground(p.bright).Bold(true)
	dimStyle = lipgloss.NewStyle().Foreground(p.dim)
	metaStyle = lipgloss.NewStyle().Foreground(p.meta)
	accentStyle = lipgloss.NewStyle().Foreground(p.accent)
	positiveStyle = lipgloss.NewStyle().Foreground(p.positive)
	negativeStyle = lipgloss.NewStyle().Foreground(p.negative)
	errorStyle = lipgloss.NewStyle().Foreground(p.negative).Bold(true)
	sectionHeaderStyle = lipgloss.NewStyle().Foreground(p.meta)
	helpKeyStyle = lipgloss.NewStyle().Foreground(p.dim)
	helpLabelStyle = lipgloss.NewStyle().Foreground(p.meta)
	searchStyle = lipgloss.NewStyle().Foreground(p.positive).Bold(true)
	inputPromptStyle = lipgloss.NewStyle().Foreground(p.accent).Bold(true)
	inputPlaceholderStyle = lipgloss.NewStyle().Foreground(p.placeholder)
	selectedRowBg = lipgloss.NewStyle().Background(p.rowBg)

	toastSuccessStyle = lipgloss.NewStyle().Foreground(p.positive).Bold(true)
	toastErrorStyle = lipgloss.NewStyle().Foreground(p.negative).Bold(true)
	toastInfoStyle = lipgloss.NewStyle().Foreground(p.dim)
}

// amountStyle colors an amount by transaction direction: money taken
// in reads positive, money given out reads negative.
func amountStyle(txType string) lipgloss.Style {
	if txType == domain.TypeTook {
		return positiveStyle
	}
	return negativeStyle
}

// balanceStyle colors a net balance by sign.
func balanceStyle(balance float64) lipgloss.Style {
	if balance < 0 {
		return negativeStyle
	}
	return positiveStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
