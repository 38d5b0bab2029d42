package types

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of models known to the catalog.
	Models []ModelInfo `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not loaded: kokoro-v1
	Error string `json:"error" example:"model not loaded: kokoro-v1"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Aggregate status: ok, loading or degraded. Any crashed worker wins
	// over loading.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Gateway version string.
	// example: 0.3.0
	Version string `json:"version" example:"0.3.0"`
	// Number of workers currently passing health probes.
	// example: 2
	WorkersReady int `json:"workers_ready" example:"2"`
	// Total number of configured workers.
	// example: 2
	WorkersTotal int `json:"workers_total" example:"2"`
	// Number of models with a live worker (any non-terminal state).
	// example: 2
	ModelsLoaded int `json:"models_loaded" example:"2"`
}

// WorkerStatus summarizes one worker for GET /status.
type WorkerStatus struct {
	// ID of the model this worker serves.
	// example: kokoro-v1
	ModelID string `json:"model_id" example:"kokoro-v1"`
	// Engine family running inside the worker process.
	// example: kokoro
	Engine string `json:"engine" example:"kokoro"`
	// Current lifecycle state (starting, ready, stopping, stopped, crashed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Process ID of the worker, 0 before the first spawn.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Local TCP port the worker listens on.
	// example: 30001
	Port int `json:"port,omitempty" example:"30001"`
	// Number of in-flight requests currently dispatched to this worker.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Current dispatch queue length.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Maximum queued requests before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Restart attempts consumed since the worker last held Ready.
	// example: 0
	Restarts int `json:"restarts" example:"0"`
	// Last successful health probe (unix seconds), 0 if never probed.
	// example: 1700000000
	LastProbeUnix int64 `json:"last_probe_unix,omitempty" example:"1700000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Per-worker detail.
	Workers []WorkerStatus `json:"workers"`
	// Aggregate status, same value as GET /health.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Uptime of the gateway in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total worker crashes observed since start.
	// example: 0
	CrashesTotal uint64 `json:"crashes_total" example:"0"`
	// Total worker restart attempts since start.
	// example: 0
	RestartsTotal uint64 `json:"restarts_total" example:"0"`
}

// LoadRequest asks the gateway to spawn a worker for a catalog model.
type LoadRequest struct {
	// Model identifier to load.
	// example: whisper-base
	Model string `json:"model" example:"whisper-base"`
}

// UnloadRequest asks the gateway to drain and stop a worker.
type UnloadRequest struct {
	// Model identifier to unload.
	// example: whisper-base
	Model string `json:"model" example:"whisper-base"`
}
