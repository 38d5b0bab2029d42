package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the gateway.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	CatalogPath string `json:"catalog_path" yaml:"catalog_path" toml:"catalog_path"`

	// Models to load at startup.
	Preload []string `json:"preload" yaml:"preload" toml:"preload"`

	DefaultSTTModel string `json:"default_stt_model" yaml:"default_stt_model" toml:"default_stt_model"`
	DefaultTTSModel string `json:"default_tts_model" yaml:"default_tts_model" toml:"default_tts_model"`

	// Dispatch admission.
	MaxQueueDepth  int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSec     int `json:"max_wait_sec" yaml:"max_wait_sec" toml:"max_wait_sec"`
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" toml:"max_concurrency"`

	// Worker supervision.
	ProbeIntervalSec int `json:"probe_interval_sec" yaml:"probe_interval_sec" toml:"probe_interval_sec"`
	StartTimeoutSec  int `json:"start_timeout_sec" yaml:"start_timeout_sec" toml:"start_timeout_sec"`
	RestartMax       int `json:"restart_max" yaml:"restart_max" toml:"restart_max"`
	GracePeriodSec   int `json:"grace_period_sec" yaml:"grace_period_sec" toml:"grace_period_sec"`

	// Worker processes.
	WorkerHost      string `json:"worker_host" yaml:"worker_host" toml:"worker_host"`
	WorkerPortStart int    `json:"worker_port_start" yaml:"worker_port_start" toml:"worker_port_start"`
	WorkerPortEnd   int    `json:"worker_port_end" yaml:"worker_port_end" toml:"worker_port_end"`
	WorkerBinDir    string `json:"worker_bin_dir" yaml:"worker_bin_dir" toml:"worker_bin_dir"`

	// HTTP surface.
	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	MaxBodyMB   int      `json:"max_body_mb" yaml:"max_body_mb" toml:"max_body_mb"`
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
