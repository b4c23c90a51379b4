package tui

import (
	"context"
	stderrors "errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anstrom/nmapcycle/internal/output"
)

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	labelStyle         = lipgloss.NewStyle().Bold(true).Width(14)
	focusedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8800")).Bold(true)
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	runningStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	stoppingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00"))
	idleStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	buttonStyle        = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	focusedButtonStyle = buttonStyle.BorderForeground(lipgloss.Color("#FF8800")).Bold(true)
	logStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#0066FF"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	field := func(label string, focused bool, input string) string {
		prefix := "  "
		if focused {
			prefix = focusedStyle.Render("> ")
		}
		return prefix + labelStyle.Render(label) + input
	}

	var modes []string
	for i, mode := range m.modes {
		modes = append(modes, m.checkbox(i, mode))
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		m.button("Start", m.startIndex()), " ", m.button("Stop", m.stopIndex()))

	form := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("nmapcycle"),
		field("Target", m.focus == focusTarget, m.target.View()),
		field("Interval (s)", m.focus == focusInterval, m.interval.View()),
		"  "+labelStyle.Render("Modes"),
		strings.Join(modes, "\n"),
		buttons+"  "+m.statusText(),
	)

	help := dimStyle.Render("tab/shift+tab move  space/enter toggle or press  pgup/pgdown scroll  esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, form, logStyle.Render(m.viewport.View()), help)
}

// Run shows the form until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl Controller, queue *output.Queue, opts Options) error {
	p := tea.NewProgram(New(ctx, ctrl, queue, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
