// Package manager provides worker supervision, admission, and inference
// dispatch for the voiced gateway. It is structured into small files by
// concern:
//
//   - manager.go: core Manager type, constructor, load/unload/shutdown ops.
//   - config.go: ManagerConfig and package defaults.
//   - types.go: worker handle, lifecycle states, spec, summary.
//   - errors.go: the error taxonomy and its Is* helpers.
//   - backend.go: the closed engine set and worker command construction.
//   - client.go: the HTTP protocol client against one worker process.
//   - supervisor.go: spawn, readiness, probe loop, restart with backoff,
//     drain and termination.
//   - scheduler.go: per-worker FIFO admission and the Transcribe/Synthesize
//     dispatch paths.
//   - health.go: aggregate health derivation (ok/loading/degraded).
//   - status_report.go: detailed status snapshots.
//   - events.go, eventpub_memory.go: lifecycle event publication.
//   - metrics.go: Prometheus instrumentation.
//
// Worker lifecycle: starting -> ready -> stopping -> stopped, with crashed
// reachable from starting and ready. A crashed worker is restarted with
// exponential backoff until its attempt budget is exhausted, after which it
// stays crashed and is reported through health, never hidden.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (New, RequestLoad, RequestUnload, Transcribe,
// Synthesize, Health, Status, Shutdown). Internal types are subject to
// change.
package manager
