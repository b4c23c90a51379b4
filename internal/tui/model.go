// Package tui is the interactive form for the scan cycle: target and
// interval inputs, a mode checklist, Start/Stop buttons and a live log.
//
// The model is the only owner of the visible log. Status lines from the
// scheduler arrive through an output.Queue that the model drains with a
// command, so the worker never touches presentation state.
package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anstrom/nmapcycle/internal/cycle"
	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/logging"
	"github.com/anstrom/nmapcycle/internal/output"
	"github.com/anstrom/nmapcycle/internal/scanning"
)

// Messages shown by the form itself.
const (
	LineSelectMode      = "Select a mode!"
	LineBadInterval     = "Interval must be a whole number of seconds!"
	LineNotRunning      = "Not running."
	invalidRequestLabel = "Invalid request: "
)

const (
	focusTarget = iota
	focusInterval
	focusModes
)

const (
	maxLogLines     = 1000
	minViewportRows = 5
	intervalDigits  = 7
)

// Controller is the part of the scheduler the form drives.
type Controller interface {
	Start(req cycle.Request, sink output.Sink) error
	Stop() error
	State() cycle.State
}

// Options are the initial form values.
type Options struct {
	Target   string
	Interval int
	Modes    []scanning.Mode
	Selected []string

	// Sink given to the scheduler; defaults to the queue. It must feed the queue.
	Sink output.Sink
}

type linesMsg []string

type queueClosedMsg struct{}

// Model is the bubbletea model of the form.
type Model struct {
	ctx   context.Context
	ctrl  Controller
	queue *output.Queue
	sink  output.Sink

	target   textinput.Model
	interval textinput.Model
	modes    []scanning.Mode
	selected map[string]bool
	focus    int

	log      []string
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	quitting bool
}

// New creates the form. Lines added to queue are shown in the log.
func New(ctx context.Context, ctrl Controller, queue *output.Queue, opts Options) Model {
	target := textinput.New()
	target.Placeholder = "127.0.0.1"
	target.Prompt = ""
	target.SetValue(opts.Target)
	target.Focus()

	interval := textinput.New()
	interval.Placeholder = "300"
	interval.Prompt = ""
	interval.CharLimit = intervalDigits
	interval.SetValue(strconv.Itoa(opts.Interval))

	known := opts.Modes
	if len(known) == 0 {
		known = scanning.KnownModes
	}
	modes := append([]scanning.Mode(nil), known...)
	selected := make(map[string]bool, len(opts.Selected))
	for _, flag := range opts.Selected {
		if selected[flag] {
			continue
		}
		selected[flag] = true
		if !hasMode(modes, flag) {
			modes = append(modes, scanning.Mode{Flag: flag, Name: "Custom", Description: "custom mode from the configuration"})
		}
	}

	sink := opts.Sink
	if sink == nil {
		sink = queue
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		queue:    queue,
		sink:     sink,
		target:   target,
		interval: interval,
		modes:    modes,
		selected: selected,
		viewport: viewport.New(0, minViewportRows),
		spinner:  s,
	}
}

func waitForLines(ctx context.Context, q *output.Queue) tea.Cmd {
	return func() tea.Msg {
		lines, err := q.Next(ctx)
		if err != nil {
			return queueClosedMsg{}
		}
		return linesMsg(lines)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForLines(m.ctx, m.queue))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "down":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "enter", " ":
			if m.focus >= focusModes {
				m.activate()
				return m, nil
			}
			if msg.String() == "enter" {
				m.setFocus(m.focus + 1)
				return m, nil
			}
		}
		return m.updateInputs(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-2, 1)
		m.viewport.Height = max(msg.Height-m.formHeight(), minViewportRows)
		m.viewport.SetContent(strings.Join(m.log, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case linesMsg:
		m.appendLines(msg...)
		return m, waitForLines(m.ctx, m.queue)

	case queueClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTarget:
		m.target, cmd = m.target.Update(msg)
	case focusInterval:
		m.interval, cmd = m.interval.Update(msg)
	}
	return m, cmd
}

// focusable elements: two inputs, one checkbox per mode, Start, Stop.
func (m *Model) focusCount() int {
	return focusModes + len(m.modes) + 2
}

func (m *Model) startIndex() int { return focusModes + len(m.modes) }
func (m *Model) stopIndex() int  { return focusModes + len(m.modes) + 1 }

func (m *Model) setFocus(i int) {
	n := m.focusCount()
	m.focus = ((i % n) + n) % n

	m.target.Blur()
	m.interval.Blur()
	switch m.focus {
	case focusTarget:
		m.target.Focus()
	case focusInterval:
		m.interval.Focus()
	}
}

func (m *Model) activate() {
	switch {
	case m.focus == m.startIndex():
		m.startCycle()
	case m.focus == m.stopIndex():
		m.stopCycle()
	default:
		flag := m.modes[m.focus-focusModes].Flag
		m.selected[flag] = !m.selected[flag]
	}
}

func hasMode(modes []scanning.Mode, flag string) bool {
	for _, m := range modes {
		if m.Flag == flag {
			return true
		}
	}
	return false
}

// selectedModes returns the checked flags in display order.
func (m *Model) selectedModes() []string {
	var flags []string
	for _, mode := range m.modes {
		if m.selected[mode.Flag] {
			flags = append(flags, mode.Flag)
		}
	}
	return flags
}

func (m *Model) startCycle() {
	secs, err := strconv.Atoi(strings.TrimSpace(m.interval.Value()))
	if err != nil || secs < 0 {
		m.appendLines(LineBadInterval)
		return
	}

	modes := m.selectedModes()
	if len(modes) == 0 {
		m.appendLines(LineSelectMode)
		return
	}

	req := cycle.Request{
		Target:   m.target.Value(),
		Modes:    modes,
		Interval: time.Duration(secs) * time.Second,
	}
	err = m.ctrl.Start(req, m.sink)

	var cerr *errors.CycleError
	if errors.IsCode(err, errors.CodeValidation) && stderrors.As(err, &cerr) {
		m.appendLines(invalidRequestLabel + cerr.Message)
	}
	if err != nil {
		logging.Debug("Start rejected", "error", err)
	}
}

func (m *Model) stopCycle() {
	if err := m.ctrl.Stop(); errors.IsCode(err, errors.CodeNotRunning) {
		m.appendLines(LineNotRunning)
	}
}

func (m *Model) appendLines(lines ...string) {
	m.log = append(m.log, lines...)
	if over := len(m.log) - maxLogLines; over > 0 {
		m.log = append([]string(nil), m.log[over:]...)
	}
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

// Log returns the lines currently shown.
func (m Model) Log() []string {
	return append([]string(nil), m.log...)
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

func (m Model) formHeight() int {
	// title, target, interval, modes header, modes, buttons, status, borders, help
	return 10 + len(m.modes)
}

func (m Model) statusText() string {
	switch m.ctrl.State() {
	case cycle.StateRunning:
		return m.spinner.View() + runningStyle.Render(" running")
	case cycle.StateStopRequested:
		return stoppingStyle.Render("stopping after the current scan")
	default:
		return idleStyle.Render("idle")
	}
}

func (m Model) checkbox(i int, mode scanning.Mode) string {
	box := "[ ]"
	if m.selected[mode.Flag] {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %-4s %s", box, mode.Flag, dimStyle.Render(mode.Description))
	if m.focus == focusModes+i {
		return focusedStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) button(label string, index int) string {
	if m.focus == index {
		return focusedButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}
