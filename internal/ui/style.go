package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/nchapman/onboard/internal/pull"
)

const (
	IconCheck = "✓"
	IconCross = "✗"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	badgeStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

func Header(text string) string {
	return headerStyle.Render(text)
}

func Success(text string) string {
	return successStyle.Render(text)
}

func ErrorMsg(text string) string {
	return errorStyle.Render(text)
}

func Muted(text string) string {
	return mutedStyle.Render(text)
}

func Bold(text string) string {
	return boldStyle.Render(text)
}

func Keyword(text string) string {
	return keywordStyle.Render(text)
}

func Value(text string) string {
	return valueStyle.Render(text)
}

// StateBadge renders a pull state as a short colored label.
func StateBadge(s pull.State) string {
	style := badgeStyle
	switch s {
	case pull.StateCompleted:
		style = style.Foreground(lipgloss.Color("10"))
	case pull.StateFailed:
		style = style.Foreground(lipgloss.Color("9"))
	case pull.StateDownloading:
		style = style.Foreground(lipgloss.Color("12"))
	default:
		style = style.Faint(true)
	}
	return style.Render(s.String())
}

// PrintError writes a styled "Error:" line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorMsg("Error:"), fmt.Sprintf(format, args...))
}

// Fatal prints an error and exits with status 1.
func Fatal(format string, args ...any) {
	PrintError(format, args...)
	os.Exit(1)
}
