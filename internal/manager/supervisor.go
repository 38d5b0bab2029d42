package manager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voiced/pkg/types"
)

// runWorker supervises one worker across its restarts. It is the only
// goroutine that moves the handle through its lifecycle; everyone else sees
// state via snapshots. Exits when the worker reaches a terminal state.
func (m *Manager) runWorker(w *Worker) {
	defer m.wg.Done()
	defer close(w.doneCh)

	backoff := m.cfg.RestartBackoff
	for {
		crashed := m.superviseOnce(w)
		if !crashed {
			// Expected stop: state is already Stopped.
			return
		}
		w.setState(StateCrashed)
		m.crashesTotal.Add(1)
		crashCounter.WithLabelValues(w.Spec.ModelID).Inc()
		failures := w.bumpFailures()
		m.publisher.Publish(Event{Name: "worker_crashed", ModelID: w.Spec.ModelID, Fields: map[string]any{"failures": failures}})

		if failures >= m.cfg.RestartMax {
			// Budget exhausted: the worker stays Crashed and receives no
			// further dispatch. Reported via health, never hidden.
			m.log.Error().Str("model", w.Spec.ModelID).Int("failures", failures).Msg("restart budget exhausted")
			m.publisher.Publish(Event{Name: "worker_abandoned", ModelID: w.Spec.ModelID, Fields: map[string]any{}})
			// Remain supervising only for an explicit stop request.
			select {
			case <-w.stopCh:
				w.setState(StateStopped)
			case <-m.shutdownCh:
				w.setState(StateStopped)
			}
			return
		}

		m.restartsTotal.Add(1)
		restartCounter.WithLabelValues(w.Spec.ModelID).Inc()
		m.log.Warn().Str("model", w.Spec.ModelID).Dur("backoff", backoff).Int("attempt", failures).Msg("restarting worker")
		select {
		case <-time.After(backoff):
		case <-w.stopCh:
			w.setState(StateStopped)
			return
		case <-m.shutdownCh:
			w.setState(StateStopped)
			return
		}
		backoff *= 2
		if backoff > m.cfg.BackoffCeiling {
			backoff = m.cfg.BackoffCeiling
		}
		w.setState(StateStarting)
	}
}

// superviseOnce runs one process lifetime: spawn, load, warmup, serve probes.
// Returns true when the process ended unexpectedly (crash), false when it was
// stopped on request and the handle is Stopped.
func (m *Manager) superviseOnce(w *Worker) (crashed bool) {
	profile, err := engineFor(w.Spec.Engine)
	if err != nil {
		// Spec engines are validated on load; a failure here means the
		// profile table changed underneath us.
		m.log.Error().Err(err).Str("model", w.Spec.ModelID).Msg("engine lookup failed")
		return true
	}

	host := m.cfg.WorkerHost
	var port int
	if m.cfg.WorkerPortStart > 0 && m.cfg.WorkerPortEnd >= m.cfg.WorkerPortStart {
		port, err = pickPortInRange(host, m.cfg.WorkerPortStart, m.cfg.WorkerPortEnd)
	} else {
		port, err = pickFreePort(host)
	}
	if err != nil {
		m.log.Error().Err(err).Str("model", w.Spec.ModelID).Msg("no port for worker")
		return true
	}

	args, err := workerArgs(w.Spec, host, port)
	if err != nil {
		m.log.Error().Err(err).Str("model", w.Spec.ModelID).Msg("bad worker args")
		return true
	}
	cmd := exec.Command(m.cfg.workerBinary(profile), args...)
	// Keep a stderr tail in memory for crash diagnostics.
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		m.log.Error().Err(err).Str("model", w.Spec.ModelID).Msg("spawn failed")
		return true
	}
	baseURL := fmt.Sprintf("http://%s:%d", host, port)
	w.setProcess(cmd.Process.Pid, port, baseURL, m.newClient(w.Spec.ModelID, baseURL))
	spawnCounter.WithLabelValues(w.Spec.Engine).Inc()
	m.publisher.Publish(Event{Name: "worker_spawned", ModelID: w.Spec.ModelID, Fields: map[string]any{"pid": cmd.Process.Pid, "port": port}})

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	if stopped, ok := m.awaitReadiness(w, cmd, waitCh, stderr.Bytes); !ok {
		if stopped {
			m.terminate(w, cmd, waitCh, false)
			w.setState(StateStopped)
			return false
		}
		return true
	}

	client := w.protocol()
	loadCtx, cancel := m.stopAwareContext(w, m.cfg.StartTimeout)
	err = client.Load(loadCtx, w.Spec.ModelPath, w.Spec.Config)
	cancel()
	if err != nil {
		// A stop or shutdown that arrived mid-load canceled the call; that is
		// an orderly stop, not a crash.
		if w.stopRequested() || m.shuttingDown.Load() {
			m.terminate(w, cmd, waitCh, true)
			w.setState(StateStopped)
			return false
		}
		m.log.Error().Err(err).Str("model", w.Spec.ModelID).Msg("model load failed")
		m.publisher.Publish(Event{Name: "load_failed", ModelID: w.Spec.ModelID, Fields: map[string]any{"error": err.Error()}})
		m.terminate(w, cmd, waitCh, true)
		return true
	}

	// Warmup is an optimization, not a correctness gate: a failure is logged
	// and the worker still becomes Ready.
	m.warmup(w)

	if w.stopRequested() || m.shuttingDown.Load() {
		m.stopWorker(w, cmd, waitCh)
		return false
	}

	w.setState(StateReady)
	m.publisher.Publish(Event{Name: "worker_ready", ModelID: w.Spec.ModelID, Fields: map[string]any{"pid": cmd.Process.Pid}})
	m.log.Info().Str("model", w.Spec.ModelID).Int("pid", cmd.Process.Pid).Int("port", port).Msg("worker ready")

	return m.serveProbes(w, cmd, waitCh, stderr.Bytes)
}

// awaitReadiness polls the worker's health endpoint until it answers, the
// start deadline passes, or the process exits early. Returns ok=false with
// stopped=true when a stop arrived mid-start.
func (m *Manager) awaitReadiness(w *Worker, cmd *exec.Cmd, waitCh chan error, stderrTail func() []byte) (stopped, ok bool) {
	deadline := time.Now().Add(m.cfg.StartTimeout)
	client := w.protocol()
	for {
		if time.Now().After(deadline) {
			m.log.Error().Str("model", w.Spec.ModelID).Msg("worker not ready in time")
			m.terminate(w, cmd, waitCh, true)
			return false, false
		}
		select {
		case werr := <-waitCh:
			tail := stderrTail()
			if len(tail) > 4096 {
				tail = tail[len(tail)-4096:]
			}
			m.log.Error().Str("model", w.Spec.ModelID).AnErr("exit", werr).Str("stderr", string(tail)).Msg("worker exited before ready")
			return false, false
		case <-w.stopCh:
			return true, false
		case <-m.shutdownCh:
			return true, false
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ProbeTimeout)
		state, err := client.Probe(ctx)
		cancel()
		if err == nil && state == ProbeReady {
			return false, true
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// serveProbes is the Ready-state loop: periodic health probes, crash
// detection, stop handling. Returns true on crash.
func (m *Manager) serveProbes(w *Worker, cmd *exec.Cmd, waitCh chan error, stderrTail func() []byte) (crashed bool) {
	ticker := time.NewTicker(m.cfg.ProbeInterval)
	defer ticker.Stop()
	client := w.protocol()
	for {
		select {
		case werr := <-waitCh:
			tail := stderrTail()
			if len(tail) > 4096 {
				tail = tail[len(tail)-4096:]
			}
			m.log.Error().Str("model", w.Spec.ModelID).AnErr("exit", werr).Str("stderr", string(tail)).Msg("worker exited unexpectedly")
			return true
		case <-w.stopCh:
			m.stopWorker(w, cmd, waitCh)
			return false
		case <-m.shutdownCh:
			m.stopWorker(w, cmd, waitCh)
			return false
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ProbeTimeout)
			state, err := client.Probe(ctx)
			cancel()
			if err != nil || state != ProbeReady {
				m.log.Warn().Str("model", w.Spec.ModelID).AnErr("probe", err).Str("state", string(state)).Msg("health probe failed")
				m.terminate(w, cmd, waitCh, true)
				return true
			}
			w.markProbe(time.Now())
		}
	}
}

// stopWorker executes the Stopping transition: refuse new dispatch, drain
// in-flight work up to the grace period, best-effort Unload, terminate.
func (m *Manager) stopWorker(w *Worker, cmd *exec.Cmd, waitCh chan error) {
	w.setState(StateStopping)
	m.publisher.Publish(Event{Name: "worker_stopping", ModelID: w.Spec.ModelID, Fields: map[string]any{}})

	grace := m.cfg.GracePeriod
	if v := m.graceNanos.Load(); v > 0 {
		grace = time.Duration(v)
	}
	deadline := time.Now().Add(grace)
	for w.Inflight() > 0 || w.QueueLen() > 0 {
		if time.Now().After(deadline) {
			m.log.Warn().Str("model", w.Spec.ModelID).Int("inflight", w.Inflight()).Int("queued", w.QueueLen()).Msg("drain grace elapsed")
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Unload failures never block termination.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := w.protocol().Unload(ctx); err != nil {
		m.log.Warn().Err(err).Str("model", w.Spec.ModelID).Msg("unload failed")
	}
	cancel()

	m.terminate(w, cmd, waitCh, false)
	w.setState(StateStopped)
	m.publisher.Publish(Event{Name: "worker_stopped", ModelID: w.Spec.ModelID, Fields: map[string]any{}})
}

// terminate sends SIGTERM and escalates to SIGKILL after a short wait.
func (m *Manager) terminate(w *Worker, cmd *exec.Cmd, waitCh chan error, quick bool) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(syscall.SIGTERM)
	killAfter := 2 * time.Second
	if quick {
		killAfter = 500 * time.Millisecond
	}
	select {
	case <-waitCh:
	case <-time.After(killAfter):
		_ = cmd.Process.Kill()
		<-waitCh
	}
}

// stopAwareContext returns a context bounded by timeout that is also canceled
// by a worker stop request or manager shutdown, so no startup-phase call can
// outlive the shutdown grace.
func (m *Manager) stopAwareContext(w *Worker, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-m.shutdownCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// warmup issues one throwaway inference to prime caches and lazy kernels.
// The first real request otherwise pays that one-time cost.
func (m *Manager) warmup(w *Worker) {
	ctx, cancel := m.stopAwareContext(w, m.cfg.StartTimeout)
	defer cancel()
	client := w.protocol()
	var err error
	switch w.Spec.Kind {
	case types.KindTTS:
		var rc io.ReadCloser
		rc, err = client.Synthesize(ctx, SynthesizeCall{Input: "warmup", RequestID: "warmup"})
		if err == nil {
			// First chunk is enough to prime the pipeline.
			buf := make([]byte, 4096)
			_, _ = rc.Read(buf)
			_ = rc.Close()
		}
	default:
		// A short run of silence for STT engines.
		_, err = client.Transcribe(ctx, TranscribeCall{RequestID: "warmup"}, make([]byte, 3200))
	}
	if err != nil {
		m.log.Warn().Err(err).Str("model", w.Spec.ModelID).Msg("warmup failed")
		m.publisher.Publish(Event{Name: "warmup_failed", ModelID: w.Spec.ModelID, Fields: map[string]any{"error": err.Error()}})
		return
	}
	m.publisher.Publish(Event{Name: "warmup_complete", ModelID: w.Spec.ModelID, Fields: map[string]any{}})
}

func pickPortInRange(host string, start, end int) (int, error) {
	for p := start; p <= end; p++ {
		l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, p))
		if err != nil {
			continue
		}
		_ = l.Close()
		return p, nil
	}
	return 0, fmt.Errorf("no free port in range %d-%d", start, end)
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", host+":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	addr := l.Addr().String()
	lastColon := strings.LastIndex(addr, ":")
	if lastColon < 0 {
		return 0, fmt.Errorf("unexpected addr: %s", addr)
	}
	return strconv.Atoi(addr[lastColon+1:])
}
