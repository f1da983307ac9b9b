package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/formulabar/internal/formula"
)

// Theme holds the styles used to draw the formula bar.
type Theme struct {
	Operator    lipgloss.Style // operator chips (+, -, ^, parentheses)
	Operand     lipgloss.Style // operand chips
	Selected    lipgloss.Style // chip chosen with the token menu
	Caret       lipgloss.Style // insert position marker
	Empty       lipgloss.Style // placeholder when no tokens are committed
	Row         lipgloss.Style
	Highlight   lipgloss.Style
	RowID       lipgloss.Style
	Result      lipgloss.Style
	ResultError lipgloss.Style
}

// DefaultTheme returns the colored palette.
func DefaultTheme() Theme {
	return Theme{
		Operator: lipgloss.NewStyle().Padding(0, 1).
			Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#F5C2E7")),
		Operand: lipgloss.NewStyle().Padding(0, 1).
			Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#89B4FA")),
		Selected: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).
			Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#F9E2AF")),
		Caret:       lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")).Bold(true),
		Empty:       lipgloss.NewStyle().Faint(true),
		Row:         lipgloss.NewStyle(),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E2E")).Background(lipgloss.Color("#A6E3A1")),
		RowID:       lipgloss.NewStyle().Faint(true),
		Result:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true),
		ResultError: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// PlainTheme keeps the layout of DefaultTheme without colors.
func PlainTheme() Theme {
	chip := lipgloss.NewStyle().Padding(0, 1)
	return Theme{
		Operator:    chip,
		Operand:     chip,
		Selected:    chip.Reverse(true),
		Caret:       lipgloss.NewStyle(),
		Empty:       lipgloss.NewStyle(),
		Row:         lipgloss.NewStyle(),
		Highlight:   lipgloss.NewStyle().Reverse(true),
		RowID:       lipgloss.NewStyle(),
		Result:      lipgloss.NewStyle(),
		ResultError: lipgloss.NewStyle(),
	}
}

// ThemeFor picks the palette for the color setting.
func ThemeFor(noColor bool) Theme {
	if noColor {
		return PlainTheme()
	}
	return DefaultTheme()
}

// Chip returns the style for a committed token.
func (t Theme) Chip(tok formula.Token, selected bool) lipgloss.Style {
	switch {
	case selected:
		return t.Selected
	case tok.IsOperator():
		return t.Operator
	default:
		return t.Operand
	}
}
