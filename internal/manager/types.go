package manager

import (
	"sync"
	"time"

	"voiced/pkg/types"
)

// WorkerState is the lifecycle state of one worker process.
type WorkerState string

const (
	StateStarting WorkerState = "starting"
	StateReady    WorkerState = "ready"
	StateStopping WorkerState = "stopping"
	StateStopped  WorkerState = "stopped"
	StateCrashed  WorkerState = "crashed"
)

// WorkerSpec is the immutable description of a worker: which engine runs
// which model, and how. Built by the caller (normally from the catalog).
type WorkerSpec struct {
	ModelID   string
	Name      string
	Engine    string
	Kind      types.ModelKind
	ModelPath string
	// Opaque engine configuration forwarded to the worker as JSON.
	Config map[string]string
}

// Worker is the mutable handle for one spawned worker process. All state
// mutation goes through the supervising goroutine or the accessors below;
// everyone else reads snapshots. The admission channels double as the
// in-flight and queue accounting: len(genCh) is the in-flight count.
type Worker struct {
	Spec WorkerSpec

	mu        sync.Mutex
	state     WorkerState
	pid       int
	port      int
	baseURL   string
	client    ProtocolClient
	lastProbe time.Time
	failures  int // consecutive crash/restart attempts since the last good probe

	genCh   chan struct{} // concurrency slots
	queueCh chan struct{} // bounded FIFO wait queue

	stopOnce sync.Once
	stopCh   chan struct{} // closed when an explicit stop is requested
	doneCh   chan struct{} // closed when the supervising goroutine exits
}

func newWorker(spec WorkerSpec, queueDepth, concurrency int) *Worker {
	return &Worker{
		Spec:    spec,
		state:   StateStarting,
		genCh:   make(chan struct{}, concurrency),
		queueCh: make(chan struct{}, queueDepth),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (w *Worker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(s WorkerState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Inflight is the number of requests currently dispatched to this worker.
func (w *Worker) Inflight() int { return len(w.genCh) }

// QueueLen is the number of requests waiting in the dispatch queue.
func (w *Worker) QueueLen() int { return len(w.queueCh) }

// requestStop asks the supervising goroutine to drain and terminate the
// worker. Safe to call more than once.
func (w *Worker) requestStop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Worker) stopRequested() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *Worker) setProcess(pid, port int, baseURL string, c ProtocolClient) {
	w.mu.Lock()
	w.pid = pid
	w.port = port
	w.baseURL = baseURL
	w.client = c
	w.mu.Unlock()
}

func (w *Worker) protocol() ProtocolClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client
}

func (w *Worker) markProbe(at time.Time) {
	w.mu.Lock()
	w.lastProbe = at
	w.failures = 0
	w.mu.Unlock()
}

// bumpFailures increments the consecutive failure count and reports it.
func (w *Worker) bumpFailures() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures++
	return w.failures
}

func (w *Worker) status() types.WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := types.WorkerStatus{
		ModelID:       w.Spec.ModelID,
		Engine:        w.Spec.Engine,
		State:         string(w.state),
		PID:           w.pid,
		Port:          w.port,
		Inflight:      len(w.genCh),
		QueueLen:      len(w.queueCh),
		MaxQueueDepth: cap(w.queueCh),
		Restarts:      w.failures,
	}
	if !w.lastProbe.IsZero() {
		st.LastProbeUnix = w.lastProbe.Unix()
	}
	return st
}

// Summary counts workers by lifecycle state for health aggregation.
type Summary struct {
	Total    int
	Ready    int
	Starting int
	Crashed  int
}
