package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Width(12).Align(lipgloss.Left)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4C566A"))
)

// field writes one aligned "label value" line.
func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %s %v\n", labelStyle.Render(label), value)
}

func passMark(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return failStyle.Render("✗")
}
