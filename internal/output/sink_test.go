package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anstrom/nmapcycle/internal/logging"
)

func TestTee(t *testing.T) {
	var a, b Lines
	sink := Tee(&a, &b, Discard)

	sink.AddLine("Starting...")
	sink.AddLine("Cycle done.")

	assert.Equal(t, []string{"Starting...", "Cycle done."}, a.Snapshot())
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, 2, b.Len())
}

func TestSinkFunc(t *testing.T) {
	var got []string
	var sink Sink = SinkFunc(func(text string) { got = append(got, text) })

	sink.AddLine("Stopping...")
	assert.Equal(t, []string{"Stopping..."}, got)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: logging.LevelInfo}, &buf)

	NewLogSink(logger).AddLine("Done: nmap_scans/scan_sS_20240102_150405.txt")

	assert.Contains(t, buf.String(), "component=sink")
	assert.Contains(t, buf.String(), "scan_sS_20240102_150405.txt")
}

func TestLines_SnapshotIsCopy(t *testing.T) {
	var l Lines
	l.AddLine("a")
	snap := l.Snapshot()
	snap[0] = "changed"

	assert.Equal(t, []string{"a"}, l.Snapshot())
}
