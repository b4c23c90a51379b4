package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapcycle/internal/config"
	"github.com/anstrom/nmapcycle/internal/output"
	"github.com/anstrom/nmapcycle/internal/scanning"
)

func newQueueWith(lines ...string) *output.Queue {
	q := output.NewQueue()
	for _, l := range lines {
		q.AddLine(l)
	}
	return q
}

func TestWriteModesTable(t *testing.T) {
	var buf bytes.Buffer
	writeModesTable(&buf)

	for _, m := range scanning.KnownModes {
		assert.Contains(t, buf.String(), m.Flag)
		assert.Contains(t, buf.String(), m.Description)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nmapcycle.yaml")

	require.NoError(t, writeDefaultConfig(path, false))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nmap", cfg.Scan.Tool)

	err = writeDefaultConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(path, []byte("scan:\n  interval: 5\n"), 0o600))
	require.NoError(t, writeDefaultConfig(path, true))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Scan.Interval)
}

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "modes", "check", "config"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	for _, flag := range []string{"target", "interval", "modes", "tool", "output-dir", "plain"} {
		assert.NotNil(t, runCmd.Flags().Lookup(flag), "missing run flag %s", flag)
	}
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2024-01-02")
	defer SetVersion("dev", "none", "unknown")

	assert.Equal(t, "1.2.3 (commit: abc123, built: 2024-01-02)", rootCmd.Version)
}

func TestCheckConfigFile(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, checkConfigFile(&out, ""))
	assert.Contains(t, out.String(), "Config file: none")

	path := filepath.Join(t.TempDir(), "nmapcycle.yaml")
	require.NoError(t, writeDefaultConfig(path, false))
	out.Reset()
	require.NoError(t, checkConfigFile(&out, path))
	assert.Equal(t, "Config file: "+path+"\n", out.String())

	require.NoError(t, os.WriteFile(path, []byte("scan:\n  interval: -1\n"), 0o600))
	err := checkConfigFile(&out, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
