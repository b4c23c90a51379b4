package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "nmap", cfg.Scan.Tool)
	assert.Equal(t, "nmap_scans", cfg.Scan.OutputDir)
	assert.Equal(t, "127.0.0.1", cfg.Scan.Target)
	assert.Equal(t, 300, cfg.Scan.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Scan.IntervalDuration())
	assert.Empty(t, cfg.Scan.Modes)
	assert.False(t, cfg.Metrics.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		wantCode errors.ErrorCode
		check    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid yaml config",
			content: `
scan:
  tool: /usr/local/bin/nmap
  target: 10.0.0.5
  interval: 60
  modes: ["-sS", "-A"]
logging:
  level: debug
  format: json
metrics:
  enabled: true
  textfile: /var/lib/node_exporter/nmapcycle.prom
  flush_interval: 30s
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/usr/local/bin/nmap", cfg.Scan.Tool)
				assert.Equal(t, "nmap_scans", cfg.Scan.OutputDir)
				assert.Equal(t, "10.0.0.5", cfg.Scan.Target)
				assert.Equal(t, 60, cfg.Scan.Interval)
				assert.Equal(t, []string{"-sS", "-A"}, cfg.Scan.Modes)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, 30*time.Second, cfg.Metrics.FlushInterval)
			},
		},
		{
			name:     "invalid yaml syntax",
			content:  "scan:\n  tool: [nmap\n",
			wantErr:  true,
			wantCode: errors.CodeConfiguration,
		},
		{
			name:     "negative interval",
			content:  "scan:\n  interval: -5\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "duplicate modes",
			content:  "scan:\n  modes: [\"-sS\", \"-sS\"]\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "unknown log level",
			content:  "logging:\n  level: loud\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
		{
			name:     "metrics without textfile",
			content:  "metrics:\n  enabled: true\n  textfile: \"\"\n",
			wantErr:  true,
			wantCode: errors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate_ReportsYAMLFieldName(t *testing.T) {
	cfg := Default()
	cfg.Scan.Tool = ""

	err := cfg.Validate()
	require.Error(t, err)

	var cerr *errors.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "scan.tool", cerr.Field)
	assert.Equal(t, errors.CodeValidation, cerr.Code)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Scan.Modes = []string{"-sT", "-T4"}
	cfg.Metrics.FlushInterval = time.Minute
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flush_interval: 1m0s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoggingFor(t *testing.T) {
	cfg := Default()

	lc := cfg.LoggingFor(DefaultRunLogFile)
	assert.Equal(t, DefaultRunLogFile, lc.Output)
	assert.Equal(t, logging.LevelInfo, lc.Level)
	assert.False(t, lc.AddSource)

	cfg.Logging.Output = "stdout"
	cfg.Logging.Level = "debug"
	lc = cfg.LoggingFor(DefaultRunLogFile)
	assert.Equal(t, "stdout", lc.Output)
	assert.True(t, lc.AddSource)
}
