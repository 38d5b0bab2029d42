package manager

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"voiced/pkg/types"
)

// acquire admits a request against the worker for modelID: a bounded FIFO
// queue slot first, then an execution slot. The returned release func must be
// deferred; it runs exactly once on every exit path.
func (m *Manager) acquire(ctx context.Context, modelID string) (*Worker, func(), error) {
	w := m.lookup(modelID)
	if w == nil {
		return nil, nil, ErrModelNotLoaded(modelID)
	}
	if st := w.State(); st != StateReady {
		rejectionCounter.WithLabelValues("unavailable").Inc()
		return nil, nil, ErrWorkerUnavailable(modelID, string(st))
	}

	// Fast path: respect an already-canceled context.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Queue admission is immediate: a full queue means saturation, not a wait.
	select {
	case w.queueCh <- struct{}{}:
	default:
		rejectionCounter.WithLabelValues("saturated").Inc()
		return nil, nil, saturatedError{id: modelID}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-w.queueCh
		}
	}()

	timer := time.NewTimer(m.cfg.MaxWait)
	defer timer.Stop()
	select {
	case w.genCh <- struct{}{}:
		acquired = true
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-timer.C:
		rejectionCounter.WithLabelValues("timeout").Inc()
		return nil, nil, timeoutError{id: modelID, op: "queue wait"}
	}

	// The worker may have crashed while we waited. Its state is the single
	// source of truth; never dispatch against a stale Ready.
	if st := w.State(); st != StateReady {
		<-w.genCh
		rejectionCounter.WithLabelValues("unavailable").Inc()
		return nil, nil, ErrWorkerUnavailable(modelID, string(st))
	}

	dispatchInflight.WithLabelValues(modelID).Inc()
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		dispatchInflight.WithLabelValues(modelID).Dec()
		<-w.genCh
		<-w.queueCh
	}
	return w, release, nil
}

// Transcribe dispatches a unary STT request to the worker serving the model.
func (m *Manager) Transcribe(ctx context.Context, opts types.TranscribeOptions, audio []byte) (*types.Transcription, error) {
	modelID := opts.Model
	if modelID == "" {
		modelID = m.cfg.DefaultSTTModel
		if modelID == "" {
			return nil, ErrModelNotLoaded("(unspecified)")
		}
	}
	if opts.RequestID == "" {
		opts.RequestID = uuid.NewString()
	}

	w, release, err := m.acquire(ctx, modelID)
	if err != nil {
		return nil, err
	}
	defer release()

	if w.Spec.Kind != types.KindSTT {
		return nil, ErrInvalidRequest("model " + modelID + " is not a speech-to-text model")
	}

	res, err := w.protocol().Transcribe(ctx, TranscribeCall{
		Language:  opts.Language,
		Detail:    opts.Detail,
		RequestID: opts.RequestID,
	}, audio)
	if err != nil {
		return nil, m.mapDispatchErr(w, err)
	}

	out := &types.Transcription{
		Text:     res.Text,
		Language: res.Language,
		Duration: res.Duration,
	}
	for _, s := range res.Segments {
		out.Segments = append(out.Segments, types.Segment{ID: s.ID, Start: s.Start, End: s.End, Text: s.Text})
	}
	return out, nil
}

// Synthesize dispatches a streaming TTS request and copies the audio chunks
// to out as they arrive. The stream is finite and consumed exactly once;
// caller cancellation aborts the worker-side synthesis.
func (m *Manager) Synthesize(ctx context.Context, req types.SpeechRequest, out io.Writer, flush func()) error {
	modelID := req.Model
	if modelID == "" {
		modelID = m.cfg.DefaultTTSModel
		if modelID == "" {
			return ErrModelNotLoaded("(unspecified)")
		}
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	w, release, err := m.acquire(ctx, modelID)
	if err != nil {
		return err
	}
	defer release()

	if w.Spec.Kind != types.KindTTS {
		return ErrInvalidRequest("model " + modelID + " is not a text-to-speech model")
	}

	rc, err := w.protocol().Synthesize(ctx, SynthesizeCall{
		Input:     req.Input,
		Voice:     req.Voice,
		Format:    req.Format,
		RequestID: req.RequestID,
	})
	if err != nil {
		return m.mapDispatchErr(w, err)
	}
	defer rc.Close()

	buf := make([]byte, 32*1024)
	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			if flush != nil {
				flush()
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return m.mapDispatchErr(w, rerr)
		}
	}
}

// mapDispatchErr reconciles a failed call with worker state: a worker that
// died mid-request surfaces as WorkerUnavailable, never a silent retry
// against a different worker.
func (m *Manager) mapDispatchErr(w *Worker, err error) error {
	if IsWorkerUnavailable(err) || IsTimeout(err) || IsBackendError(err) {
		return err
	}
	if st := w.State(); st != StateReady {
		return ErrWorkerUnavailable(w.Spec.ModelID, string(st))
	}
	return ErrWorkerUnavailable(w.Spec.ModelID, err.Error())
}
