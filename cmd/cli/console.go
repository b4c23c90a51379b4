package cli

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/anstrom/nmapcycle/internal/config"
	"github.com/anstrom/nmapcycle/internal/cycle"
	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/metrics"
	"github.com/anstrom/nmapcycle/internal/output"
	"github.com/anstrom/nmapcycle/internal/scanning"
	"github.com/anstrom/nmapcycle/internal/tui"
)

const consoleHelp = `Commands:
  start [target]            start the cycle (optionally overriding the target)
  stop                      stop after the current scan
  status                    show the cycle state and counters
  set target <host>         change the target
  set interval <seconds>    change the pause between scans
  set modes <m1,m2,...>     change the scan modes
  modes                     list known scan modes
  help                      show this help
  quit                      interrupt any scan and exit`

type consoleController interface {
	Start(req cycle.Request, sink output.Sink) error
	Stop() error
	State() cycle.State
	Active() (cycle.Snapshot, bool)
}

type summarizer interface {
	Summarize() (metrics.Summary, error)
}

// console is the line-oriented control surface. Every reply goes through the
// sink so it is ordered with the scheduler's own lines.
type console struct {
	ctrl     consoleController
	sink     output.Sink
	counters summarizer

	// scan holds the target, interval and modes the next start uses.
	scan config.ScanConfig
}

func newConsole(ctrl consoleController, sink output.Sink, counters summarizer, scan config.ScanConfig) *console {
	return &console{
		ctrl:     ctrl,
		sink:     sink,
		counters: counters,
		scan: config.ScanConfig{
			Target:   scan.Target,
			Interval: scan.Interval,
			Modes:    append([]string(nil), scan.Modes...),
		},
	}
}

// run handles commands from in until quit, EOF or ctx is done. If in is an
// io.Closer it is closed on return so the reader goroutine exits; otherwise
// that goroutine stays blocked until the next line or EOF.
func (c *console) run(ctx context.Context, in io.Reader) error {
	if closer, ok := in.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.sink.AddLine(`Type "help" for commands.`)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || c.handle(line) {
				return nil
			}
		}
	}
}

// handle executes one command line and reports whether to quit.
func (c *console) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "start":
		if len(fields) > 1 {
			c.scan.Target = fields[1]
		}
		c.start()
	case "stop":
		if err := c.ctrl.Stop(); errors.IsCode(err, errors.CodeNotRunning) {
			c.sink.AddLine(tui.LineNotRunning)
		}
	case "status":
		c.status()
	case "set":
		c.set(fields[1:])
	case "modes":
		c.sink.AddLine(renderModes())
	case "help", "?":
		c.sink.AddLine(consoleHelp)
	case "quit", "exit", "q":
		return true
	default:
		c.sink.AddLine(fmt.Sprintf("Unknown command %q, type help for a list.", fields[0]))
	}
	return false
}

func (c *console) start() {
	if len(c.scan.Modes) == 0 {
		c.sink.AddLine(tui.LineSelectMode)
		return
	}

	err := c.ctrl.Start(cycle.Request{
		Target:   c.scan.Target,
		Modes:    c.scan.Modes,
		Interval: c.scan.IntervalDuration(),
	}, c.sink)

	var cerr *errors.CycleError
	if errors.IsCode(err, errors.CodeValidation) && stderrors.As(err, &cerr) {
		c.sink.AddLine("Invalid request: " + cerr.Message)
	}
}

func (c *console) set(args []string) {
	if len(args) < 2 {
		c.sink.AddLine("Usage: set target|interval|modes <value>")
		return
	}

	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "target":
		c.scan.Target = value
	case "interval":
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 0 {
			c.sink.AddLine(tui.LineBadInterval)
			return
		}
		c.scan.Interval = secs
	case "modes":
		c.scan.Modes = parseModes(value)
	default:
		c.sink.AddLine(fmt.Sprintf("Unknown setting %q.", args[0]))
		return
	}
	c.sink.AddLine(fmt.Sprintf("%s = %s", strings.ToLower(args[0]), value))
}

// parseModes splits a comma or space separated mode list, dropping blanks.
func parseModes(s string) []string {
	var modes []string
	for _, m := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		modes = append(modes, strings.TrimSpace(m))
	}
	return modes
}

func (c *console) status() {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.Header("Field", "Value")

	_ = table.Append([]string{"State", c.ctrl.State().String()})
	if snap, ok := c.ctrl.Active(); ok {
		_ = table.Append([]string{"Cycle", snap.ID.String()})
		_ = table.Append([]string{"Target", snap.Request.Target})
		_ = table.Append([]string{"Modes", strings.Join(snap.Request.Modes, " ")})
		_ = table.Append([]string{"Interval", snap.Request.Interval.String()})
		_ = table.Append([]string{"Running for", time.Since(snap.StartedAt).Round(time.Second).String()})
	} else {
		_ = table.Append([]string{"Target", c.scan.Target})
		_ = table.Append([]string{"Modes", strings.Join(c.scan.Modes, " ")})
		_ = table.Append([]string{"Interval", c.scan.IntervalDuration().String()})
	}

	if c.counters != nil {
		if s, err := c.counters.Summarize(); err == nil {
			_ = table.Append([]string{"Passes", strconv.FormatFloat(s.PassesCompleted, 'f', 0, 64)})
			_ = table.Append([]string{"Scans ok", strconv.FormatFloat(s.InvocationsSuccess, 'f', 0, 64)})
			_ = table.Append([]string{"Scans failed", strconv.FormatFloat(s.InvocationsFailure, 'f', 0, 64)})
		}
	}

	_ = table.Render()
	c.sink.AddLine(strings.TrimRight(buf.String(), "\n"))
}

func renderModes() string {
	var buf bytes.Buffer
	writeModesTable(&buf)
	return strings.TrimRight(buf.String(), "\n")
}

func writeModesTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.Header("Flag", "Name", "Description")
	for _, m := range scanning.KnownModes {
		_ = table.Append([]string{m.Flag, m.Name, m.Description})
	}
	_ = table.Render()
}
