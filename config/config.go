// Package config loads the YAML-backed configuration for a prune-and-write
// pass: the pass's own options (window, regex, pruning mode, sinks) plus
// the ambient logging and tracing sections every pass carries.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// WindowConfig bounds, and optionally trims, records by wall-clock time.
type WindowConfig struct {
	Start      string `yaml:"start"` // RFC3339, empty disables
	End        string `yaml:"end"`   // RFC3339, empty disables
	SampleTrim bool   `yaml:"sample_trim"`
}

// MatchConfig holds the optional identifier regex filters.
type MatchConfig struct {
	MatchRegex  string `yaml:"match_regex"`
	RejectRegex string `yaml:"reject_regex"`
}

// PruneConfig configures the overlap pruner.
type PruneConfig struct {
	Mode           string  `yaml:"mode"` // "off", "record", "sample"
	BestQuality    bool    `yaml:"best_quality"`
	TimeTolSeconds float64 `yaml:"time_tol_seconds"` // -1 = auto
	SampRateTol    float64 `yaml:"samp_rate_tol"`    // -1 = codec default
}

// ArchiveConfig names one archive sink's path template.
type ArchiveConfig struct {
	Template string `yaml:"template"`
}

// OutputConfig configures the writer's sinks.
type OutputConfig struct {
	File           string          `yaml:"file"` // "" disables the combined sink; "-" is stdout
	Archives       []ArchiveConfig `yaml:"archives"`
	ReplaceInput   bool            `yaml:"replace_input"`
	RemoveBackups  bool            `yaml:"remove_backups"`
	RestampQuality string          `yaml:"restamp_quality"` // single character, empty disables
}

// SplitConfig configures the boundary splitter.
type SplitConfig struct {
	Boundary string `yaml:"boundary"` // "none", "day", "hour", "minute"
}

// ResourcesConfig configures process-level resource discipline ahead of a
// pass: whether and how far to raise the open-file soft limit, and whether
// the diagnostics report is printed after the pass.
type ResourcesConfig struct {
	RaiseOpenFiles    bool `yaml:"raise_open_files"`
	ExpectedOpenFDs   int  `yaml:"expected_open_fds"`
	ReportDiagnostics bool `yaml:"report_diagnostics"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Output string `yaml:"output"` // stdout, file, none
	File   string `yaml:"file"`
}

// TracingConfig holds distributed-tracing configuration.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // "grpc" or "http"
}

// Config is the top-level configuration for one prune-and-write pass.
type Config struct {
	Inputs    []string         `yaml:"inputs"`
	Window    WindowConfig     `yaml:"window"`
	Match     MatchConfig      `yaml:"match"`
	Prune     PruneConfig      `yaml:"prune"`
	Split     SplitConfig      `yaml:"split"`
	Output    OutputConfig     `yaml:"output"`
	Resources ResourcesConfig  `yaml:"resources"`
	Logging   LoggingConfig    `yaml:"logging"`
	Tracing   TracingConfig    `yaml:"tracing"`
}

// Load reads configuration from an io.Reader, applying defaults first and
// overriding only the fields present in the YAML document. A nil reader
// or empty document yields the defaults unchanged.
func Load(r io.Reader) (*Config, error) {
	cfg := &Config{
		Prune: PruneConfig{
			Mode:           "off",
			TimeTolSeconds: -1,
			SampRateTol:    -1,
		},
		Split: SplitConfig{
			Boundary: "none",
		},
		Resources: ResourcesConfig{
			RaiseOpenFiles:    true,
			ExpectedOpenFDs:   64,
			ReportDiagnostics: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
			Protocol: "grpc",
		},
	}

	if r == nil {
		return cfg, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config data: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal config yaml: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads configuration from a YAML file by path. A missing file
// is treated as an empty document (defaults only).
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Load(nil)
		}
		return nil, fmt.Errorf("config: failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	return Load(file)
}
