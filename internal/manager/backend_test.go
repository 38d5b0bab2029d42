package manager

import (
	"path/filepath"
	"reflect"
	"testing"

	"voiced/pkg/types"
)

func TestEngineFor(t *testing.T) {
	p, err := engineFor("faster-whisper")
	if err != nil {
		t.Fatalf("faster-whisper: %v", err)
	}
	if p.Kind != types.KindSTT {
		t.Fatalf("faster-whisper kind = %s", p.Kind)
	}
	if _, err := engineFor("gpt4all"); !IsUnsupportedEngine(err) {
		t.Fatalf("expected UnsupportedEngine, got %v", err)
	}
}

func TestSupportedEngines(t *testing.T) {
	want := []string{"faster-whisper", "kokoro", "qwen3-tts"}
	if got := SupportedEngines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("engines = %v, want %v", got, want)
	}
}

func TestWorkerBinaryResolution(t *testing.T) {
	p := engineProfiles["kokoro"]
	if got := (ManagerConfig{}).workerBinary(p); got != "voiced-kokoro-worker" {
		t.Fatalf("bare lookup = %q", got)
	}
	if got := (ManagerConfig{WorkerBinDir: "/opt/voiced/bin"}).workerBinary(p); got != filepath.Join("/opt/voiced/bin", "voiced-kokoro-worker") {
		t.Fatalf("bin dir lookup = %q", got)
	}
	if got := (ManagerConfig{WorkerBinDir: "/opt", WorkerBin: "/tmp/fake"}).workerBinary(p); got != "/tmp/fake" {
		t.Fatalf("override lookup = %q", got)
	}
}

func TestWorkerArgs(t *testing.T) {
	spec := WorkerSpec{
		ModelID:   "kokoro-v1",
		Engine:    "kokoro",
		ModelPath: "/models/kokoro",
		Config:    map[string]string{"voice": "af_heart"},
	}
	args, err := workerArgs(spec, "127.0.0.1", 9100)
	if err != nil {
		t.Fatalf("workerArgs: %v", err)
	}
	want := []string{
		"--host", "127.0.0.1",
		"--port", "9100",
		"--engine", "kokoro",
		"--model-path", "/models/kokoro",
		"--engine-config", `{"voice":"af_heart"}`,
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestWorkerArgs_EmptyConfig(t *testing.T) {
	args, err := workerArgs(WorkerSpec{Engine: "faster-whisper", ModelPath: "/m"}, "127.0.0.1", 9000)
	if err != nil {
		t.Fatalf("workerArgs: %v", err)
	}
	if args[len(args)-1] != "{}" {
		t.Fatalf("empty config not serialized as {}: %v", args)
	}
}

func TestRequestLoad_UnknownEngineFailsBeforeSpawn(t *testing.T) {
	m := New(ManagerConfig{})
	err := m.RequestLoad(WorkerSpec{ModelID: "m", Engine: "unknown-engine"})
	if !IsUnsupportedEngine(err) {
		t.Fatalf("expected UnsupportedEngine, got %v", err)
	}
	if s := m.Summary(); s.Total != 0 {
		t.Fatalf("no worker must be registered, got %d", s.Total)
	}
}

func TestRequestLoad_Duplicate(t *testing.T) {
	m := New(ManagerConfig{})
	addWorker(m, "m", types.KindSTT, StateReady, &stubClient{})
	err := m.RequestLoad(WorkerSpec{ModelID: "m", Engine: "faster-whisper"})
	if !IsAlreadyLoaded(err) {
		t.Fatalf("expected AlreadyLoaded, got %v", err)
	}
}
