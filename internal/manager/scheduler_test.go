package manager

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voiced/pkg/types"
)

func TestTranscribe_ModelNotLoaded(t *testing.T) {
	m := New(ManagerConfig{})
	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "missing"}, []byte("a"))
	if !IsModelNotLoaded(err) {
		t.Fatalf("expected ModelNotLoaded, got %v", err)
	}
}

func TestTranscribe_NoDefaultModel(t *testing.T) {
	m := New(ManagerConfig{})
	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{}, []byte("a"))
	if !IsModelNotLoaded(err) {
		t.Fatalf("expected ModelNotLoaded for unset default, got %v", err)
	}
}

func TestTranscribe_DefaultModelFallback(t *testing.T) {
	m := New(ManagerConfig{DefaultSTTModel: "whisper"})
	addWorker(m, "whisper", types.KindSTT, StateReady, &stubClient{})
	res, err := m.Transcribe(context.Background(), types.TranscribeOptions{}, []byte("a"))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Text != "hello" {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestAcquire_WorkerNotReady(t *testing.T) {
	for _, state := range []WorkerState{StateStarting, StateStopping, StateStopped, StateCrashed} {
		m := New(ManagerConfig{})
		addWorker(m, "w", types.KindSTT, state, &stubClient{})
		_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a"))
		if !IsWorkerUnavailable(err) {
			t.Fatalf("state %s: expected WorkerUnavailable, got %v", state, err)
		}
	}
}

func TestAcquire_Saturated(t *testing.T) {
	m := New(ManagerConfig{MaxConcurrency: 1, MaxQueueDepth: 1, MaxWait: 50 * time.Millisecond})
	w := addWorker(m, "w", types.KindSTT, StateReady, &stubClient{})
	// Occupy the only execution slot and the only queue slot.
	w.genCh <- struct{}{}
	w.queueCh <- struct{}{}

	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a"))
	if !IsSaturated(err) {
		t.Fatalf("expected Saturated, got %v", err)
	}
}

func TestAcquire_QueueWaitTimeout(t *testing.T) {
	m := New(ManagerConfig{MaxConcurrency: 1, MaxQueueDepth: 4, MaxWait: 30 * time.Millisecond})
	w := addWorker(m, "w", types.KindSTT, StateReady, &stubClient{})
	w.genCh <- struct{}{}

	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a"))
	if !IsTimeout(err) {
		t.Fatalf("expected Timeout, got %v", err)
	}
	// The queue slot taken during the wait must be released on the error path.
	if got := w.QueueLen(); got != 0 {
		t.Fatalf("queue slot leaked: %d", got)
	}
}

func TestAcquire_CancellationReleasesSlots(t *testing.T) {
	m := New(ManagerConfig{MaxConcurrency: 1, MaxQueueDepth: 4, MaxWait: time.Second})
	w := addWorker(m, "w", types.KindSTT, StateReady, &stubClient{})
	w.genCh <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := m.Transcribe(ctx, types.TranscribeOptions{Model: "w"}, []byte("a"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := w.QueueLen(); got != 0 {
		t.Fatalf("queue slot leaked: %d", got)
	}

	// Releasing the held slot makes the worker dispatchable again.
	<-w.genCh
	if _, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a")); err != nil {
		t.Fatalf("dispatch after release: %v", err)
	}
}

func TestAcquire_PreCanceledContext(t *testing.T) {
	m := New(ManagerConfig{})
	addWorker(m, "w", types.KindSTT, StateReady, &stubClient{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Transcribe(ctx, types.TranscribeOptions{Model: "w"}, []byte("a"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConcurrencyLimitNeverExceeded(t *testing.T) {
	const limit = 2
	m := New(ManagerConfig{MaxConcurrency: limit, MaxQueueDepth: 16, MaxWait: 5 * time.Second})

	var current, peak atomic.Int64
	client := &stubClient{
		transcribeFn: func(ctx context.Context, call TranscribeCall, audio []byte) (*TranscribeResult, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return &TranscribeResult{Text: "ok"}, nil
		},
	}
	w := addWorker(m, "w", types.KindSTT, StateReady, client)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a")); err != nil {
				t.Errorf("transcribe: %v", err)
			}
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > limit {
		t.Fatalf("concurrency limit exceeded: peak %d > %d", p, limit)
	}
	if w.Inflight() != 0 || w.QueueLen() != 0 {
		t.Fatalf("slots leaked: inflight=%d queued=%d", w.Inflight(), w.QueueLen())
	}
}

func TestDispatch_WorkerDiedMidRequest(t *testing.T) {
	m := New(ManagerConfig{})
	var w *Worker
	client := &stubClient{
		transcribeFn: func(ctx context.Context, call TranscribeCall, audio []byte) (*TranscribeResult, error) {
			// The process dies while serving: state flips before the call fails.
			w.setState(StateCrashed)
			return nil, errors.New("connection reset by peer")
		},
	}
	w = addWorker(m, "w", types.KindSTT, StateReady, client)

	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a"))
	if !IsWorkerUnavailable(err) {
		t.Fatalf("expected WorkerUnavailable, got %v", err)
	}
	// The failure must not be retried against anything.
	if tc, _ := client.calls(); tc != 1 {
		t.Fatalf("expected exactly 1 dispatch, got %d", tc)
	}
	if w.Inflight() != 0 {
		t.Fatalf("inflight not released: %d", w.Inflight())
	}
}

func TestAcquire_StaleReadyAfterWait(t *testing.T) {
	m := New(ManagerConfig{MaxConcurrency: 1, MaxQueueDepth: 4, MaxWait: time.Second})
	w := addWorker(m, "w", types.KindSTT, StateReady, &stubClient{})
	w.genCh <- struct{}{}

	// While a request waits for the slot, the worker crashes.
	go func() {
		time.Sleep(20 * time.Millisecond)
		w.setState(StateCrashed)
		<-w.genCh
	}()
	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "w"}, []byte("a"))
	if !IsWorkerUnavailable(err) {
		t.Fatalf("expected WorkerUnavailable after crash during wait, got %v", err)
	}
	if w.Inflight() != 0 || w.QueueLen() != 0 {
		t.Fatalf("slots leaked: inflight=%d queued=%d", w.Inflight(), w.QueueLen())
	}
}

func TestTranscribe_KindMismatch(t *testing.T) {
	m := New(ManagerConfig{})
	addWorker(m, "voice", types.KindTTS, StateReady, &stubClient{})
	_, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "voice"}, []byte("a"))
	if !IsInvalidRequest(err) {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}

func TestSynthesize_KindMismatch(t *testing.T) {
	m := New(ManagerConfig{})
	addWorker(m, "whisper", types.KindSTT, StateReady, &stubClient{})
	var buf bytes.Buffer
	err := m.Synthesize(context.Background(), types.SpeechRequest{Model: "whisper", Input: "hi"}, &buf, nil)
	if !IsInvalidRequest(err) {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}

func TestSynthesize_StreamsChunks(t *testing.T) {
	audio := bytes.Repeat([]byte("wavdata."), 10000)
	m := New(ManagerConfig{})
	client := &stubClient{
		synthesizeFn: func(ctx context.Context, call SynthesizeCall) (io.ReadCloser, error) {
			if call.Input != "hello world" {
				t.Errorf("unexpected input %q", call.Input)
			}
			return io.NopCloser(bytes.NewReader(audio)), nil
		},
	}
	addWorker(m, "voice", types.KindTTS, StateReady, client)

	var buf bytes.Buffer
	flushes := 0
	err := m.Synthesize(context.Background(), types.SpeechRequest{Model: "voice", Input: "hello world"}, &buf, func() { flushes++ })
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), audio) {
		t.Fatalf("stream mismatch: got %d bytes, want %d", buf.Len(), len(audio))
	}
	if flushes == 0 {
		t.Fatalf("expected at least one flush")
	}
}

func TestSynthesize_DefaultModelFallback(t *testing.T) {
	m := New(ManagerConfig{DefaultTTSModel: "voice"})
	addWorker(m, "voice", types.KindTTS, StateReady, &stubClient{})
	var buf bytes.Buffer
	if err := m.Synthesize(context.Background(), types.SpeechRequest{Input: "hi"}, &buf, nil); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("no audio written")
	}
}

func TestTranscribe_SegmentsConverted(t *testing.T) {
	m := New(ManagerConfig{})
	client := &stubClient{
		transcribeFn: func(ctx context.Context, call TranscribeCall, audio []byte) (*TranscribeResult, error) {
			var res TranscribeResult
			res.Text = "one two"
			res.Language = "en"
			res.Duration = 2.5
			res.Segments = append(res.Segments, struct {
				ID    int     `json:"id"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
				Text  string  `json:"text"`
			}{ID: 0, Start: 0, End: 1.2, Text: "one"})
			return &res, nil
		},
	}
	addWorker(m, "whisper", types.KindSTT, StateReady, client)

	res, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "whisper", Detail: "segments"}, []byte("a"))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Language != "en" || res.Duration != 2.5 {
		t.Fatalf("metadata lost: %+v", res)
	}
	if len(res.Segments) != 1 || res.Segments[0].Text != "one" {
		t.Fatalf("segments not converted: %+v", res.Segments)
	}
}

func TestTranscribe_GeneratesRequestID(t *testing.T) {
	m := New(ManagerConfig{})
	var seen string
	client := &stubClient{
		transcribeFn: func(ctx context.Context, call TranscribeCall, audio []byte) (*TranscribeResult, error) {
			seen = call.RequestID
			return &TranscribeResult{Text: "ok"}, nil
		},
	}
	addWorker(m, "whisper", types.KindSTT, StateReady, client)
	if _, err := m.Transcribe(context.Background(), types.TranscribeOptions{Model: "whisper"}, []byte("a")); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if seen == "" {
		t.Fatalf("expected a generated request id")
	}
}
