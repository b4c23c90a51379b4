// Package cycle implements the scan cycle scheduler: one background worker
// that runs the selected scan modes in order, over and over, pacing the
// invocations by a fixed interval until it is asked to stop.
//
// Start and Stop may be called from any goroutine and never wait for the
// worker. Stop is cooperative. The worker checks for it before each
// invocation and the pacing sleep returns as soon as it is requested, but an
// invocation already in progress runs to completion. The worst case stop
// latency is therefore the remaining time of the current invocation.
package cycle

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/logging"
	"github.com/anstrom/nmapcycle/internal/metrics"
	"github.com/anstrom/nmapcycle/internal/output"
	"github.com/anstrom/nmapcycle/internal/scanning"
)

// Status lines written to the sink.
const (
	LineStarting       = "Starting..."
	LineAlreadyRunning = "Already running!"
	LineStillStopping  = "Still stopping, try again shortly."
	LineStopping       = "Stopping..."
	LineCycleDone      = "Cycle done."
	LineInterrupted    = "Interrupted."
)

// Reasons a worker ends, as reported to metrics.
const (
	endStopped  = "stopped"
	endShutdown = "shutdown"
	endFailed   = "failed"
)

const outputDirPerm = 0o750

// Scheduler owns the cycle state and at most one worker.
type Scheduler struct {
	ctx       context.Context
	invoker   scanning.Invoker
	outputDir string
	metrics   metrics.Recorder
	logger    *logging.Logger

	mu     sync.Mutex
	active *worker
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Scheduler) { s.metrics = r }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates an idle scheduler. Cancelling ctx ends any running cycle
// immediately and kills the in-flight invocation.
func New(ctx context.Context, invoker scanning.Invoker, outputDir string, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:       ctx,
		invoker:   invoker,
		outputDir: outputDir,
		metrics:   metrics.Nop{},
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot describes the active cycle.
type Snapshot struct {
	ID        uuid.UUID
	Request   Request
	State     State
	StartedAt time.Time
}

type worker struct {
	id        uuid.UUID
	req       Request
	sink      output.Sink
	startedAt time.Time

	stopping atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (w *worker) requestStop() {
	w.stopping.Store(true)
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Start validates req and spawns the worker. It returns a VALIDATION error
// for a malformed request and ALREADY_RUNNING while a worker exists, in which
// case a notice is appended to sink and nothing else changes.
func (s *Scheduler) Start(req Request, sink output.Sink) error {
	if sink == nil {
		sink = output.Discard
	}

	if err := req.Validate(); err != nil {
		s.metrics.ControlRequest("start", "invalid")
		return err
	}

	s.mu.Lock()
	if w := s.active; w != nil {
		s.mu.Unlock()
		if w.stopping.Load() {
			sink.AddLine(LineStillStopping)
		} else {
			sink.AddLine(LineAlreadyRunning)
		}
		s.metrics.ControlRequest("start", "already_running")
		return errors.ErrAlreadyRunning().WithContext("cycle_id", w.id.String())
	}

	w := &worker{
		id:        uuid.New(),
		req:       req.clone(),
		sink:      sink,
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.active = w
	// Appended under the lock so it precedes both worker and Stop lines.
	sink.AddLine(LineStarting)
	s.mu.Unlock()

	s.metrics.ControlRequest("start", "started")
	s.metrics.CycleStarted()
	s.logger.InfoCycle("Scan cycle started", w.id.String(),
		"target", w.req.Target,
		"modes", w.req.Modes,
		"interval", w.req.Interval)

	go s.run(w)
	return nil
}

// Stop asks the worker to end at its next checkpoint and returns without
// waiting. It returns NOT_RUNNING when idle. Repeated calls while stopping
// are accepted.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	w := s.active
	if w == nil {
		s.mu.Unlock()
		s.metrics.ControlRequest("stop", "not_running")
		return errors.ErrNotRunning()
	}
	w.requestStop()
	w.sink.AddLine(LineStopping)
	s.mu.Unlock()

	s.metrics.ControlRequest("stop", "stopping")
	s.logger.InfoCycle("Stop requested", w.id.String())
	return nil
}

// State returns the current run state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.active == nil:
		return StateIdle
	case s.active.stopping.Load():
		return StateStopRequested
	default:
		return StateRunning
	}
}

// Active returns a snapshot of the running cycle, if any.
func (s *Scheduler) Active() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.active
	if w == nil {
		return Snapshot{}, false
	}
	state := StateRunning
	if w.stopping.Load() {
		state = StateStopRequested
	}
	return Snapshot{
		ID:        w.id,
		Request:   w.req.clone(),
		State:     state,
		StartedAt: w.startedAt,
	}, true
}

// Done returns a channel closed when the current worker has exited.
// When idle the channel is already closed.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.active.done
}

// Wait blocks until the current worker has exited or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown requests a stop, if a cycle is running, and waits for the worker.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if err := s.Stop(); err != nil && !errors.IsCode(err, errors.CodeNotRunning) {
		return err
	}
	return s.Wait(ctx)
}

func (s *Scheduler) run(w *worker) {
	reason := endStopped
	defer func() { s.finish(w, reason) }()

	if err := os.MkdirAll(s.outputDir, outputDirPerm); err != nil {
		cerr := errors.ErrDirectorySetup(s.outputDir, err)
		s.logger.ErrorCycle("Cannot create output directory", w.id.String(), cerr, "dir", s.outputDir)
		w.sink.AddLine(fmt.Sprintf("Error: cannot create output directory %s: %v", s.outputDir, err))
		reason = endFailed
		return
	}

	for {
		for i, mode := range w.req.Modes {
			if s.cancelled(w) {
				reason = s.endReason()
				return
			}
			s.invoke(w, mode)

			if i < len(w.req.Modes)-1 && !s.pace(w) {
				reason = s.endReason()
				return
			}
		}

		if s.cancelled(w) {
			reason = s.endReason()
			return
		}
		w.sink.AddLine(LineCycleDone)
		s.metrics.PassCompleted()
		s.logger.InfoCycle("Pass completed", w.id.String())

		if !s.pace(w) {
			reason = s.endReason()
			return
		}
	}
}

func (s *Scheduler) invoke(w *worker, mode string) {
	w.sink.AddLine(fmt.Sprintf("Running %s on %s...", mode, w.req.Target))

	art := s.invoker.Run(s.ctx, mode, w.req.Target)

	w.sink.AddLine(art.Summary())
	s.metrics.Invocation(mode, string(art.Outcome), art.Duration)

	log := s.logger.WithCycleID(w.id.String()).WithMode(mode).WithTarget(w.req.Target)
	if !art.Succeeded() {
		log.WithError(art.Err).Warn("Invocation failed", "message", art.Message)
		return
	}
	log.Debug("Invocation finished", "path", art.Path, "duration", art.Duration)
}

// pace sleeps for the request interval. It returns false if the cycle
// should end, waking early on stop or shutdown.
func (s *Scheduler) pace(w *worker) bool {
	if w.req.Interval <= 0 {
		return !s.cancelled(w)
	}

	timer := time.NewTimer(w.req.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return !s.cancelled(w)
	case <-w.stopCh:
		return false
	case <-s.ctx.Done():
		return false
	}
}

func (s *Scheduler) cancelled(w *worker) bool {
	return w.stopping.Load() || s.ctx.Err() != nil
}

func (s *Scheduler) endReason() string {
	if s.ctx.Err() != nil {
		return endShutdown
	}
	return endStopped
}

func (s *Scheduler) finish(w *worker, reason string) {
	// Stop already announced itself; a shutdown did not.
	if reason == endShutdown && !w.stopping.Load() {
		w.sink.AddLine(LineInterrupted)
	}

	s.mu.Lock()
	if s.active == w {
		s.active = nil
	}
	s.mu.Unlock()

	s.metrics.CycleEnded(reason)
	s.logger.InfoCycle("Scan cycle ended", w.id.String(),
		"reason", reason,
		"duration", time.Since(w.startedAt))
	close(w.done)
}
