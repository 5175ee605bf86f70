package ui

import (
	"github.com/charmbracelet/lipgloss"

	"tasklist/internal/tasklist"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	notificationStyles = map[tasklist.Kind]lipgloss.Style{
		tasklist.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")),
		tasklist.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")),
		tasklist.KindDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")),
	}
)

func renderNotification(n *tasklist.Notification) string {
	icon := "i"
	switch n.Kind {
	case tasklist.KindSuccess:
		icon = "✓"
	case tasklist.KindDanger:
		icon = "✗"
	}
	style, ok := notificationStyles[n.Kind]
	if !ok {
		style = notificationStyles[tasklist.KindInfo]
	}
	return style.Render(icon + " " + n.Message)
}
