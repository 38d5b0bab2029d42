package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"
)

// Fake voice worker for supervisor tests. Speaks the same flag and HTTP
// surface as the real engine workers. Failure modes are injected via env:
//
//	FAKE_WORKER_FAIL_LOAD=1          /load returns 500
//	FAKE_WORKER_LOAD_DELAY_MS        /load stalls for N ms before answering
//	FAKE_WORKER_EXIT_AFTER_READY_MS  process exits abruptly after N ms
//	FAKE_WORKER_PROBE_FAIL_AFTER     /healthz turns unhealthy after N probes
func main() {
	var host, port, engine, modelPath, engineConfig string
	flag.StringVar(&host, "host", "127.0.0.1", "host")
	flag.StringVar(&port, "port", "0", "port")
	flag.StringVar(&engine, "engine", "", "engine name")
	flag.StringVar(&modelPath, "model-path", "", "model path")
	flag.StringVar(&engineConfig, "engine-config", "{}", "engine config JSON")
	flag.Parse()

	failLoad := os.Getenv("FAKE_WORKER_FAIL_LOAD") == "1"
	loadDelayMS, _ := strconv.Atoi(os.Getenv("FAKE_WORKER_LOAD_DELAY_MS"))
	probeFailAfter, _ := strconv.Atoi(os.Getenv("FAKE_WORKER_PROBE_FAIL_AFTER"))

	var probes atomic.Int64
	var loaded atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		n := probes.Add(1)
		state := "ready"
		if probeFailAfter > 0 && n > int64(probeFailAfter) {
			state = "unhealthy"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"state": state})
	})
	mux.HandleFunc("/load", func(w http.ResponseWriter, r *http.Request) {
		if loadDelayMS > 0 {
			select {
			case <-time.After(time.Duration(loadDelayMS) * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		if failLoad {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"injected load failure"}`)
			return
		}
		loaded.Store(true)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/unload", func(w http.ResponseWriter, r *http.Request) {
		loaded.Store(false)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "fake transcript", "language": "en"})
	})
	mux.HandleFunc("/speak", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte("RIFFfakewav"))
	})

	srv := &http.Server{Addr: fmt.Sprintf("%s:%s", host, port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	if ms, _ := strconv.Atoi(os.Getenv("FAKE_WORKER_EXIT_AFTER_READY_MS")); ms > 0 {
		go func() {
			time.Sleep(time.Duration(ms) * time.Millisecond)
			os.Exit(3)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
