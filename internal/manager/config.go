package manager

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth  = 32
	defaultMaxWait        = 30 * time.Second
	defaultMaxConcurrency = 1
	defaultProbeInterval  = 5 * time.Second
	defaultProbeTimeout   = 1 * time.Second
	defaultStartTimeout   = 30 * time.Second
	defaultRestartMax     = 3
	defaultBackoff        = 500 * time.Millisecond
	defaultBackoffCeiling = 8 * time.Second
	defaultGracePeriod    = 5 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Fallback model ids when a request omits one.
	DefaultSTTModel string
	DefaultTTSModel string

	// Dispatch admission.
	MaxQueueDepth  int
	MaxWait        time.Duration
	MaxConcurrency int

	// Supervision.
	ProbeInterval  time.Duration
	ProbeTimeout   time.Duration
	StartTimeout   time.Duration
	RestartMax     int
	RestartBackoff time.Duration
	BackoffCeiling time.Duration
	GracePeriod    time.Duration

	// Worker processes.
	WorkerHost      string
	WorkerPortStart int
	WorkerPortEnd   int
	// Directory holding the engine worker binaries; empty means $PATH lookup.
	WorkerBinDir string
	// Overrides the engine binary entirely. Used by tests.
	WorkerBin string

	Logger *zerolog.Logger
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = defaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = defaultProbeInterval
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	if c.StartTimeout <= 0 {
		c.StartTimeout = defaultStartTimeout
	}
	if c.RestartMax <= 0 {
		c.RestartMax = defaultRestartMax
	}
	if c.RestartBackoff <= 0 {
		c.RestartBackoff = defaultBackoff
	}
	if c.BackoffCeiling <= 0 {
		c.BackoffCeiling = defaultBackoffCeiling
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = defaultGracePeriod
	}
	if c.WorkerHost == "" {
		c.WorkerHost = "127.0.0.1"
	}
	return c
}
