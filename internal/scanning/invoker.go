package scanning

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/logging"
)

const (
	// DefaultTool is the scanner executed when none is configured.
	DefaultTool = "nmap"

	// Layout of the timestamp embedded in artifact file names.
	artifactTimeLayout = "20060102_150405"

	artifactPrefix = "scan_"
	artifactExt    = ".txt"

	// Upper bound on collision suffixes tried for one artifact name.
	maxPathSuffix = 1000

	// How long Run waits for output pipes after the process is killed.
	waitDelay = 5 * time.Second
)

// Outcome is the result of one tool invocation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Invoker runs one external-tool invocation for a mode against a target.
type Invoker interface {
	Run(ctx context.Context, mode, target string) Artifact
}

// Artifact records one completed invocation.
type Artifact struct {
	Mode      string
	Target    string
	Timestamp time.Time
	Path      string
	Duration  time.Duration
	Outcome   Outcome
	Message   string
	Err       error
}

// Succeeded reports whether the tool exited 0.
func (a Artifact) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}

// Summary formats the artifact as a single status line.
func (a Artifact) Summary() string {
	if a.Succeeded() {
		return "Done: " + a.Path
	}
	return "Error: " + a.Message
}

// ArtifactPath returns <dir>/scan_<mode without leading dashes>_<YYYYMMDD_HHMMSS>.txt.
func ArtifactPath(dir, mode string, ts time.Time) string {
	name := artifactPrefix + artifactModeName(mode) + "_" + ts.Format(artifactTimeLayout) + artifactExt
	return filepath.Join(dir, name)
}

func artifactModeName(mode string) string {
	name := strings.TrimLeft(mode, "-")
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '_'
		}
		return r
	}, name)
}

// uniquePath returns path, or path with a _<n> suffix before the extension
// when a file of that name already exists.
func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); stderrors.Is(err, os.ErrNotExist) {
		return path, nil
	}

	stem := strings.TrimSuffix(path, artifactExt)
	for n := 2; n <= maxPathSuffix; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, artifactExt)
		if _, err := os.Stat(candidate); stderrors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free artifact name for %s", path)
}

// ExecInvoker runs the scanning tool as a child process:
//
//	<tool> <mode> -oN <path> <target>
type ExecInvoker struct {
	Tool      string
	OutputDir string

	// Now supplies the artifact timestamp; defaults to time.Now.
	Now func() time.Time

	logger *logging.Logger
}

// NewExecInvoker creates an invoker writing artifacts into outputDir.
func NewExecInvoker(tool, outputDir string, logger *logging.Logger) *ExecInvoker {
	if tool == "" {
		tool = DefaultTool
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ExecInvoker{
		Tool:      tool,
		OutputDir: outputDir,
		Now:       time.Now,
		logger:    logger.WithComponent("invoker"),
	}
}

// Run executes the tool and waits for it. Cancelling ctx kills the process.
func (inv *ExecInvoker) Run(ctx context.Context, mode, target string) Artifact {
	now := inv.Now
	if now == nil {
		now = time.Now
	}
	start := now()

	art := Artifact{
		Mode:      mode,
		Target:    target,
		Timestamp: start,
		Outcome:   OutcomeFailure,
	}

	path, err := uniquePath(ArtifactPath(inv.OutputDir, mode, start))
	if err != nil {
		return inv.fail(art, err)
	}
	art.Path = path

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, inv.Tool, mode, "-oN", path, target)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	inv.logger.Debug("Invoking scanner", "tool", inv.Tool, "args", cmd.Args[1:])

	err = cmd.Run()
	art.Duration = time.Since(start)

	if stdout.Len() > 0 || stderr.Len() > 0 {
		inv.logger.Debug("Scanner output",
			"mode", mode,
			"stdout_bytes", stdout.Len(),
			"stderr", lastLine(stderr.String()))
	}

	if err != nil {
		return inv.fail(art, describeRunError(inv.Tool, err, stderr.String()))
	}

	art.Outcome = OutcomeSuccess
	inv.logger.InfoInvocation("Scan finished", mode, target,
		"path", path,
		"duration", art.Duration)
	return art
}

func (inv *ExecInvoker) fail(art Artifact, cause error) Artifact {
	art.Outcome = OutcomeFailure
	art.Err = errors.ErrInvocationFailed(art.Mode, art.Target, cause)
	art.Message = cause.Error()
	inv.logger.ErrorInvocation("Scan failed", art.Mode, art.Target, cause)
	return art
}

// describeRunError turns an exec error into a one-line message, including the
// tool's last stderr line when it exited non-zero.
func describeRunError(tool string, err error, stderr string) error {
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		msg := fmt.Sprintf("%s exited with status %d", tool, exitErr.ExitCode())
		if line := lastLine(stderr); line != "" {
			msg += ": " + line
		}
		return stderrors.New(msg)
	}
	return fmt.Errorf("failed to run %s: %w", tool, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
