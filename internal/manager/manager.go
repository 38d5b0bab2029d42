package manager

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Manager owns the set of worker processes: it spawns and supervises them,
// admits inference requests against them, and aggregates their health.
// Workers are held in an owned map and exposed only via snapshots; all
// lifecycle mutation is serialized through each worker's supervising
// goroutine.
type Manager struct {
	cfg ManagerConfig
	log zerolog.Logger

	mu      sync.RWMutex
	workers map[string]*Worker

	publisher EventPublisher
	startTime time.Time

	crashesTotal  atomic.Uint64
	restartsTotal atomic.Uint64

	shuttingDown atomic.Bool
	shutdownCh   chan struct{}
	graceNanos   atomic.Int64 // effective drain grace, settable by Shutdown
	wg           sync.WaitGroup

	// newClient is a seam for tests; defaults to NewProtocolClient.
	newClient func(modelID, baseURL string) ProtocolClient
}

// New constructs a Manager from ManagerConfig.
func New(cfg ManagerConfig) *Manager {
	cfg = cfg.withDefaults()
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Manager{
		cfg:        cfg,
		log:        log,
		workers:    make(map[string]*Worker),
		publisher:  noopPublisher{},
		startTime:  time.Now(),
		shutdownCh: make(chan struct{}),
		newClient:  NewProtocolClient,
	}
}

// SetPublisher installs an EventPublisher for lifecycle events.
func (m *Manager) SetPublisher(p EventPublisher) {
	if p == nil {
		m.publisher = noopPublisher{}
		return
	}
	m.publisher = p
}

// RequestLoad spawns and supervises a worker for the given spec. The engine
// name is validated before any process is started. At most one worker exists
// per model id.
func (m *Manager) RequestLoad(spec WorkerSpec) error {
	profile, err := engineFor(spec.Engine)
	if err != nil {
		return err
	}
	if spec.Kind == "" {
		spec.Kind = profile.Kind
	}
	if m.shuttingDown.Load() {
		return ErrWorkerUnavailable(spec.ModelID, "shutting down")
	}
	m.mu.Lock()
	if _, exists := m.workers[spec.ModelID]; exists {
		m.mu.Unlock()
		return alreadyLoadedError{id: spec.ModelID}
	}
	w := newWorker(spec, m.cfg.MaxQueueDepth, m.cfg.MaxConcurrency)
	m.workers[spec.ModelID] = w
	m.mu.Unlock()

	m.publisher.Publish(Event{Name: "load_requested", ModelID: spec.ModelID, Fields: map[string]any{"engine": spec.Engine}})
	m.wg.Add(1)
	go m.runWorker(w)
	return nil
}

// RequestUnload drains and terminates the worker for modelID, then removes it.
func (m *Manager) RequestUnload(modelID string) error {
	w := m.lookup(modelID)
	if w == nil {
		return ErrModelNotLoaded(modelID)
	}
	w.requestStop()
	select {
	case <-w.doneCh:
	case <-time.After(m.cfg.GracePeriod + 5*time.Second):
		m.log.Warn().Str("model", modelID).Msg("unload did not complete in time")
	}
	m.mu.Lock()
	delete(m.workers, modelID)
	m.mu.Unlock()
	m.publisher.Publish(Event{Name: "unload_done", ModelID: modelID, Fields: map[string]any{}})
	return nil
}

// Shutdown terminates every worker concurrently under one shared grace
// period. Idempotent: a second call returns immediately while the first
// sequence runs to completion.
func (m *Manager) Shutdown(grace time.Duration) {
	if !m.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	if grace <= 0 {
		grace = m.cfg.GracePeriod
	}
	m.graceNanos.Store(int64(grace))
	m.log.Info().Dur("grace", grace).Msg("shutdown start")
	close(m.shutdownCh)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace + 5*time.Second):
		// Grace exhausted: no worker may outlive the shutdown sequence.
		m.log.Warn().Msg("shutdown grace elapsed; killing remaining workers")
		for _, w := range m.snapshot() {
			select {
			case <-w.doneCh:
			default:
				if pid := w.status().PID; pid > 0 {
					if p, err := os.FindProcess(pid); err == nil {
						_ = p.Kill()
					}
				}
			}
		}
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			m.log.Error().Msg("workers still terminating after kill")
		}
	}
	m.log.Info().Msg("shutdown complete")
}

func (m *Manager) lookup(modelID string) *Worker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workers[modelID]
}

// snapshot returns the current workers in a stable order-free copy.
func (m *Manager) snapshot() []*Worker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Worker, 0, len(m.workers))
	for _, w := range m.workers {
		out = append(out, w)
	}
	return out
}
