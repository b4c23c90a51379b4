// Package config defines the nmapcycle configuration file and its defaults.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/logging"
)

const (
	configDirPerm  = 0o750
	configFilePerm = 0o600

	// DefaultRunLogFile receives logs while the controller owns the terminal.
	DefaultRunLogFile = "nmapcycle.log"
)

// Config represents the complete nmapcycle configuration
type Config struct {
	Scan    ScanConfig    `yaml:"scan" json:"scan" mapstructure:"scan"`
	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// ScanConfig holds the scan cycle defaults offered by the control surfaces
type ScanConfig struct {
	// Scanner executable, resolved through $PATH
	Tool string `yaml:"tool" json:"tool" mapstructure:"tool" validate:"required"`

	// Directory receiving one artifact file per invocation
	OutputDir string `yaml:"output_dir" json:"output_dir" mapstructure:"output_dir" validate:"required"`

	// Default target
	Target string `yaml:"target" json:"target" mapstructure:"target"`

	// Seconds between invocations
	Interval int `yaml:"interval" json:"interval" mapstructure:"interval" validate:"gte=0"`

	// Modes preselected in the form
	Modes []string `yaml:"modes" json:"modes" mapstructure:"modes" validate:"unique,dive,required"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" mapstructure:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path). Empty selects DefaultRunLogFile
	// for the run command and stderr for everything else.
	Output string `yaml:"output" json:"output" mapstructure:"output"`
}

// MetricsConfig holds Prometheus textfile export settings
type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Textfile      string        `yaml:"textfile" json:"textfile" mapstructure:"textfile" validate:"required_if=Enabled true"`
	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval" mapstructure:"flush_interval" validate:"gt=0"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Tool:      "nmap",
			OutputDir: "nmap_scans",
			Target:    "127.0.0.1",
			Interval:  300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			Textfile:      "nmapcycle.prom",
			FlushInterval: 15 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file, starting from Default.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeFileNotFound, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to parse YAML config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// YAML returns the configuration encoded as YAML
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.WrapConfigError(errors.CodeValidation, "invalid configuration", err)
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	cerr := errors.ErrConfigInvalid(field, fe.Value())
	cerr.Message = fmt.Sprintf("invalid configuration value %v (%s)", fe.Value(), fe.Tag())
	return cerr
}

// IntervalDuration returns the scan interval as a duration
func (s ScanConfig) IntervalDuration() time.Duration {
	return time.Duration(s.Interval) * time.Second
}

// LoggingFor returns the logging configuration with the output resolved for
// the given default destination.
func (c *Config) LoggingFor(defaultOutput string) logging.Config {
	output := c.Logging.Output
	if output == "" {
		output = defaultOutput
	}
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    output,
		AddSource: c.Logging.Level == "debug",
	}
}
