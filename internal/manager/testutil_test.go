package manager

import (
	"bytes"
	"context"
	"io"
	"sync"

	"voiced/pkg/types"
)

// stubClient is an in-memory ProtocolClient for scheduler and health tests.
type stubClient struct {
	mu sync.Mutex

	loadErr error

	transcribeFn func(ctx context.Context, call TranscribeCall, audio []byte) (*TranscribeResult, error)
	synthesizeFn func(ctx context.Context, call SynthesizeCall) (io.ReadCloser, error)

	transcribeCalls int
	synthesizeCalls int
}

func (s *stubClient) Load(ctx context.Context, modelPath string, config map[string]string) error {
	return s.loadErr
}

func (s *stubClient) Unload(ctx context.Context) error { return nil }

func (s *stubClient) Probe(ctx context.Context) (ProbeState, error) {
	return ProbeReady, nil
}

func (s *stubClient) Transcribe(ctx context.Context, call TranscribeCall, audio []byte) (*TranscribeResult, error) {
	s.mu.Lock()
	s.transcribeCalls++
	fn := s.transcribeFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, call, audio)
	}
	return &TranscribeResult{Text: "hello"}, nil
}

func (s *stubClient) Synthesize(ctx context.Context, call SynthesizeCall) (io.ReadCloser, error) {
	s.mu.Lock()
	s.synthesizeCalls++
	fn := s.synthesizeFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, call)
	}
	return io.NopCloser(bytes.NewReader([]byte("RIFFaudio"))), nil
}

func (s *stubClient) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcribeCalls, s.synthesizeCalls
}

// addWorker fabricates a worker handle in the given state, bypassing process
// supervision. The admission channels use the manager's configured sizes.
func addWorker(m *Manager, id string, kind types.ModelKind, state WorkerState, c ProtocolClient) *Worker {
	w := newWorker(WorkerSpec{ModelID: id, Engine: "faster-whisper", Kind: kind}, m.cfg.MaxQueueDepth, m.cfg.MaxConcurrency)
	if kind == types.KindTTS {
		w.Spec.Engine = "kokoro"
	}
	w.setState(state)
	w.setProcess(1234, 9000, "http://127.0.0.1:9000", c)
	m.mu.Lock()
	m.workers[id] = w
	m.mu.Unlock()
	return w
}
