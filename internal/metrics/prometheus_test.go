package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_CycleMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.CycleStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.cyclesStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.cycleActive))

	pm.PassCompleted()
	pm.PassCompleted()
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.passesCompleted))

	pm.CycleEnded("stopped")
	assert.Equal(t, 0.0, testutil.ToFloat64(pm.cycleActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.cyclesEnded.WithLabelValues("stopped")))
}

func TestPrometheusMetrics_InvocationMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.Invocation("-sS", StatusSuccess, 2*time.Second)
	pm.Invocation("-sS", StatusSuccess, 3*time.Second)
	pm.Invocation("-sU", StatusFailure, time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(pm.invocationsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.invocationsTotal.WithLabelValues("-sS", StatusSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(pm.invocationDuration))
}

func TestPrometheusMetrics_ControlRequests(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.ControlRequest("start", "started")
	pm.ControlRequest("start", "already_running")
	pm.ControlRequest("stop", "not_running")

	assert.Equal(t, 3, testutil.CollectAndCount(pm.controlRequests))
}

func TestPrometheusMetrics_Summarize(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.CycleStarted()
	pm.Invocation("-sS", StatusSuccess, time.Second)
	pm.Invocation("-A", StatusSuccess, time.Second)
	pm.Invocation("-sU", StatusFailure, time.Second)
	pm.PassCompleted()

	s, err := pm.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.CyclesStarted)
	assert.Equal(t, 1.0, s.PassesCompleted)
	assert.Equal(t, 2.0, s.InvocationsSuccess)
	assert.Equal(t, 1.0, s.InvocationsFailure)
	assert.True(t, s.Active)
}

func TestPrometheusMetrics_WriteTextfile(t *testing.T) {
	pm := NewPrometheusMetrics()
	pm.Invocation("-sT", StatusSuccess, time.Second)

	path := filepath.Join(t.TempDir(), "nmapcycle.prom")
	require.NoError(t, pm.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `nmapcycle_invocation_total{mode="-sT",status="success"} 1`),
		"unexpected textfile contents: %s", string(data))
}

func TestPrometheusMetrics_StartTextfileUpdates(t *testing.T) {
	pm := NewPrometheusMetrics()
	path := filepath.Join(t.TempDir(), "nmapcycle.prom")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- pm.StartTextfileUpdates(ctx, path, 10*time.Millisecond)
	}()

	pm.CycleStarted()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("textfile updater did not stop after cancel")
	}

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.CycleStarted()
	r.Invocation("-sS", StatusSuccess, time.Second)
	r.PassCompleted()
	r.ControlRequest("stop", "stopping")
	r.CycleEnded("stopped")
}
