package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voiced/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.ModelInfo
	Health() types.HealthResponse
	Status() types.StatusResponse
	Ready() bool
	Load(modelID string) error
	Unload(modelID string) error
	Transcribe(ctx context.Context, opts types.TranscribeOptions, audio []byte) (*types.Transcription, error)
	Synthesize(ctx context.Context, req types.SpeechRequest, w io.Writer, flush func()) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(AccessLog)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", handleModels(svc))
	r.Get("/health", handleHealth(svc))
	r.Get("/status", handleStatus(svc))
	r.Post("/models/load", handleLoad(svc))
	r.Post("/models/unload", handleUnload(svc))
	r.Post("/v1/audio/transcriptions", handleTranscriptions(svc))
	r.Post("/v1/audio/speech", handleSpeech(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleModels godoc
// @Summary List catalog models
// @Produce json
// @Success 200 {object} types.ModelsResponse
// @Router /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: svc.ListModels()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// handleHealth godoc
// @Summary Aggregate gateway health
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Router /health [get]
func handleHealth(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Health()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// handleLoad godoc
// @Summary Spawn a worker for a catalog model
// @Accept json
// @Produce json
// @Param request body types.LoadRequest true "model to load"
// @Success 202
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /models/load [post]
func handleLoad(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		if err := svc.Load(req.Model); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func handleUnload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.UnloadRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Model) == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		if err := svc.Unload(req.Model); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// handleTranscriptions godoc
// @Summary Transcribe an uploaded audio file
// @Accept mpfd
// @Produce json
// @Param file formData file true "audio payload"
// @Param model formData string false "model id"
// @Success 200 {object} types.Transcription
// @Failure 404 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Router /v1/audio/transcriptions [post]
func handleTranscriptions(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
		if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()
		audio, err := io.ReadAll(file)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to read file")
			return
		}
		if len(audio) == 0 {
			writeJSONError(w, http.StatusBadRequest, "file is empty")
			return
		}
		opts := types.TranscribeOptions{
			Model:    r.FormValue("model"),
			Language: r.FormValue("language"),
			Detail:   r.FormValue("detail"),
		}

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		start := time.Now()
		res, err := svc.Transcribe(ctx, opts, audio)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeError(w, err)
			return
		}
		if zlog != nil {
			zlog.Info().Str("model", opts.Model).Dur("dur", time.Since(start)).Msg("transcription complete")
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	}
}

// handleSpeech godoc
// @Summary Synthesize speech, streamed as audio
// @Accept json
// @Produce octet-stream
// @Param request body types.SpeechRequest true "synthesis request"
// @Success 200
// @Failure 404 {object} types.ErrorResponse
// @Failure 429 {object} types.ErrorResponse
// @Router /v1/audio/speech [post]
func handleSpeech(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SpeechRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Input) == "" {
			writeJSONError(w, http.StatusBadRequest, "input is required")
			return
		}

		// Headers are committed on first write; errors before that still
		// produce a JSON status.
		w.Header().Set("Content-Type", speechContentType(req.Format))
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		sw := &countingWriter{w: w}
		if err := svc.Synthesize(ctx, req, sw, flush); err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if sw.n == 0 {
				w.Header().Del("Content-Type")
				writeError(w, err)
				return
			}
			// Mid-stream failure: the status line is gone; log and cut.
			if zlog != nil {
				zlog.Error().Err(err).Str("model", req.Model).Msg("synthesis aborted mid-stream")
			}
		}
	}
}

// countingWriter tracks whether any audio bytes were committed.
type countingWriter struct {
	w http.ResponseWriter
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func speechContentType(format string) string {
	switch strings.ToLower(format) {
	case "", "wav":
		return "audio/wav"
	case "pcm":
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}

// decodeJSONBody enforces content type and size, decoding into dst.
// Writes the error response itself and reports success.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
