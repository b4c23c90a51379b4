// Package metrics provides interfaces for metrics collection and monitoring.
package metrics

import "time"

//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks github.com/anstrom/nmapcycle/internal/metrics Recorder

// Recorder defines the metrics the scan cycle scheduler reports.
// This interface allows for easy mocking and testing of metrics functionality.
type Recorder interface {
	// CycleStarted records a worker being spawned.
	CycleStarted()

	// CycleEnded records a worker returning to idle and why.
	CycleEnded(reason string)

	// PassCompleted records a full pass over the requested modes.
	PassCompleted()

	// Invocation records one finished tool invocation.
	Invocation(mode, status string, duration time.Duration)

	// ControlRequest records a Start/Stop call and its result.
	ControlRequest(op, result string)
}

// Ensure that PrometheusMetrics implements Recorder interface.
var _ Recorder = (*PrometheusMetrics)(nil)

// Nop is a Recorder that drops everything.
type Nop struct{}

func (Nop) CycleStarted() {}
func (Nop) CycleEnded(string) {}
func (Nop) PassCompleted() {}
func (Nop) Invocation(string, string, time.Duration) {}
func (Nop) ControlRequest(string, string) {}
