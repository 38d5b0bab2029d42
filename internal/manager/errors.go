package manager

// unsupportedEngineError signals an engine name outside the supported set.
type unsupportedEngineError struct{ engine string }

func (e unsupportedEngineError) Error() string { return "unsupported engine: " + e.engine }

// ErrUnsupportedEngine constructs an unsupportedEngineError.
func ErrUnsupportedEngine(engine string) error { return unsupportedEngineError{engine: engine} }

// IsUnsupportedEngine reports whether err names an unknown engine (map to 400).
func IsUnsupportedEngine(err error) bool {
	_, ok := err.(unsupportedEngineError)
	return ok
}

// modelNotLoadedError signals a dispatch against a model with no worker.
type modelNotLoadedError struct{ id string }

func (e modelNotLoadedError) Error() string { return "model not loaded: " + e.id }

// ErrModelNotLoaded constructs a modelNotLoadedError.
func ErrModelNotLoaded(id string) error { return modelNotLoadedError{id: id} }

// IsModelNotLoaded reports whether err indicates a missing worker (return 404).
func IsModelNotLoaded(err error) bool {
	_, ok := err.(modelNotLoadedError)
	return ok
}

// alreadyLoadedError signals a duplicate load for a model that has a worker.
type alreadyLoadedError struct{ id string }

func (e alreadyLoadedError) Error() string { return "model already loaded: " + e.id }

// ErrAlreadyLoaded constructs an alreadyLoadedError.
func ErrAlreadyLoaded(id string) error { return alreadyLoadedError{id: id} }

// IsAlreadyLoaded reports whether err indicates a duplicate load (return 409).
func IsAlreadyLoaded(err error) bool {
	_, ok := err.(alreadyLoadedError)
	return ok
}

// loadError signals that a worker failed to initialize its model.
type loadError struct {
	id    string
	cause error
}

func (e loadError) Error() string { return "load failed: " + e.id + ": " + e.cause.Error() }
func (e loadError) Unwrap() error { return e.cause }

// ErrLoad constructs a loadError wrapping the underlying cause.
func ErrLoad(id string, cause error) error { return loadError{id: id, cause: cause} }

// IsLoadError reports whether err indicates a model initialization failure.
func IsLoadError(err error) bool {
	_, ok := err.(loadError)
	return ok
}

// workerUnavailableError signals a worker that is not Ready, or died mid-request.
type workerUnavailableError struct {
	id     string
	detail string
}

func (e workerUnavailableError) Error() string {
	return "worker unavailable: " + e.id + " (" + e.detail + ")"
}

// ErrWorkerUnavailable constructs a workerUnavailableError.
func ErrWorkerUnavailable(id, detail string) error {
	return workerUnavailableError{id: id, detail: detail}
}

// IsWorkerUnavailable reports whether err indicates a non-Ready or dead worker
// (return 503; callers may retry).
func IsWorkerUnavailable(err error) bool {
	_, ok := err.(workerUnavailableError)
	return ok
}

// saturatedError signals backpressure: concurrency limit hit and no queue slot.
type saturatedError struct{ id string }

func (e saturatedError) Error() string { return "worker saturated: " + e.id }

// ErrSaturated constructs a saturatedError.
func ErrSaturated(id string) error { return saturatedError{id: id} }

// IsSaturated reports whether err indicates backpressure (return 429).
func IsSaturated(err error) bool {
	_, ok := err.(saturatedError)
	return ok
}

// timeoutError signals a bounded wait that elapsed (queue wait or worker call).
type timeoutError struct {
	id string
	op string
}

func (e timeoutError) Error() string { return e.op + " timeout: " + e.id }

// ErrTimeout constructs a timeoutError for the given operation.
func ErrTimeout(id, op string) error { return timeoutError{id: id, op: op} }

// IsTimeout reports whether err indicates an elapsed wait (return 504).
func IsTimeout(err error) bool {
	_, ok := err.(timeoutError)
	return ok
}

// backendError signals an inference-time failure reported by the worker.
type backendError struct {
	id  string
	msg string
}

func (e backendError) Error() string { return "backend error: " + e.id + ": " + e.msg }

// ErrBackend constructs a backendError.
func ErrBackend(id, msg string) error { return backendError{id: id, msg: msg} }

// IsBackendError reports whether err is a worker-reported inference failure
// (return 502).
func IsBackendError(err error) bool {
	_, ok := err.(backendError)
	return ok
}

// invalidRequestError signals caller input the scheduler rejects up front,
// e.g. a TTS request against an STT model.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates rejected input (return 400).
func IsInvalidRequest(err error) bool {
	_, ok := err.(invalidRequestError)
	return ok
}
