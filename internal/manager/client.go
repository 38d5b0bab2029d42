package manager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
)

// ProbeState is the worker's self-reported condition.
type ProbeState string

const (
	ProbeReady     ProbeState = "ready"
	ProbeStarting  ProbeState = "starting"
	ProbeUnhealthy ProbeState = "unhealthy"
)

// ProtocolClient is the narrow RPC contract against one worker process.
// Implementations must support concurrent outstanding calls; cancellation of
// the passed context aborts the underlying call and frees worker resources.
type ProtocolClient interface {
	Load(ctx context.Context, modelPath string, config map[string]string) error
	Unload(ctx context.Context) error
	Probe(ctx context.Context) (ProbeState, error)
	Transcribe(ctx context.Context, opts TranscribeCall, audio []byte) (*TranscribeResult, error)
	// Synthesize returns the audio stream. The stream is finite, consumed at
	// most once; Close releases the worker-side synthesis.
	Synthesize(ctx context.Context, call SynthesizeCall) (io.ReadCloser, error)
}

// TranscribeCall carries the per-request STT parameters on the wire.
type TranscribeCall struct {
	Language  string
	Detail    string
	RequestID string
}

// TranscribeResult is the worker's unary STT response body.
type TranscribeResult struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments,omitempty"`
}

// SynthesizeCall carries the per-request TTS parameters on the wire.
type SynthesizeCall struct {
	Input     string `json:"input"`
	Voice     string `json:"voice,omitempty"`
	Format    string `json:"format,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type probeResponse struct {
	State string `json:"state"`
}

type workerErrorBody struct {
	Error string `json:"error"`
}

// httpProtocolClient talks to a worker subprocess over local HTTP.
type httpProtocolClient struct {
	modelID string
	baseURL string
	cli     *http.Client
}

// NewProtocolClient builds the HTTP-backed protocol client for one worker.
// Intentionally Timeout=0 on the shared client: every call carries a context
// with its own deadline, and synthesis streams may be long-lived.
func NewProtocolClient(modelID, baseURL string) ProtocolClient {
	return &httpProtocolClient{modelID: modelID, baseURL: baseURL, cli: &http.Client{Timeout: 0}}
}

func (c *httpProtocolClient) Load(ctx context.Context, modelPath string, config map[string]string) error {
	body, err := json.Marshal(map[string]any{"model_path": modelPath, "config": config})
	if err != nil {
		return ErrLoad(c.modelID, err)
	}
	resp, err := c.post(ctx, "/load", "application/json", bytes.NewReader(body))
	if err != nil {
		return ErrLoad(c.modelID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrLoad(c.modelID, errors.New(readWorkerError(resp)))
	}
	return nil
}

func (c *httpProtocolClient) Unload(ctx context.Context) error {
	resp, err := c.post(ctx, "/unload", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unload: %s", readWorkerError(resp))
	}
	return nil
}

func (c *httpProtocolClient) Probe(ctx context.Context) (ProbeState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return ProbeUnhealthy, err
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return ProbeUnhealthy, c.mapTransportErr(ctx, err)
	}
	defer resp.Body.Close()
	var pr probeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&pr); err != nil {
		return ProbeUnhealthy, fmt.Errorf("probe decode: %w", err)
	}
	switch ProbeState(pr.State) {
	case ProbeReady, ProbeStarting:
		return ProbeState(pr.State), nil
	default:
		return ProbeUnhealthy, nil
	}
}

func (c *httpProtocolClient) Transcribe(ctx context.Context, opts TranscribeCall, audio []byte) (*TranscribeResult, error) {
	q := url.Values{}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Detail != "" {
		q.Set("detail", opts.Detail)
	}
	if opts.RequestID != "" {
		q.Set("request_id", opts.RequestID)
	}
	path := "/transcribe"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := c.post(ctx, path, "application/octet-stream", bytes.NewReader(audio))
	if err != nil {
		return nil, c.mapTransportErr(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrBackend(c.modelID, readWorkerError(resp))
	}
	var out TranscribeResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, ErrBackend(c.modelID, "decode response: "+err.Error())
	}
	return &out, nil
}

func (c *httpProtocolClient) Synthesize(ctx context.Context, call SynthesizeCall) (io.ReadCloser, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, ErrBackend(c.modelID, "encode request: "+err.Error())
	}
	resp, err := c.post(ctx, "/speak", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, c.mapTransportErr(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readWorkerError(resp)
		resp.Body.Close()
		return nil, ErrBackend(c.modelID, msg)
	}
	return resp.Body, nil
}

func (c *httpProtocolClient) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.cli.Do(req)
}

// mapTransportErr folds connection-level failures into the error taxonomy:
// a dead or unreachable worker is WorkerUnavailable, an elapsed deadline is
// Timeout, caller cancellation passes through unchanged.
func (c *httpProtocolClient) mapTransportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return timeoutError{id: c.modelID, op: "worker call"}
		}
		return ctx.Err()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeoutError{id: c.modelID, op: "worker call"}
	}
	return ErrWorkerUnavailable(c.modelID, err.Error())
}

// readWorkerError extracts the worker's error message, falling back to the
// raw body tail.
func readWorkerError(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var we workerErrorBody
	if err := json.Unmarshal(b, &we); err == nil && we.Error != "" {
		return we.Error
	}
	if len(b) > 0 {
		return resp.Status + ": " + string(b)
	}
	return resp.Status
}
