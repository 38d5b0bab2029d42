package manager

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"voiced/pkg/types"
)

// engineProfile describes one supported engine family: the worker binary that
// hosts it and the kind of inference it serves. The set is closed; dispatch
// happens by name lookup with a typed failure for unknown names.
type engineProfile struct {
	Kind   types.ModelKind
	Binary string
}

var engineProfiles = map[string]engineProfile{
	"faster-whisper": {Kind: types.KindSTT, Binary: "voiced-whisper-worker"},
	"kokoro":         {Kind: types.KindTTS, Binary: "voiced-kokoro-worker"},
	"qwen3-tts":      {Kind: types.KindTTS, Binary: "voiced-qwen3-worker"},
}

// engineFor resolves an engine name to its profile.
func engineFor(name string) (engineProfile, error) {
	p, ok := engineProfiles[name]
	if !ok {
		return engineProfile{}, ErrUnsupportedEngine(name)
	}
	return p, nil
}

// SupportedEngines lists the known engine names, sorted.
func SupportedEngines() []string {
	out := make([]string, 0, len(engineProfiles))
	for name := range engineProfiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// workerBinary resolves the executable for a profile, honoring the config
// overrides (single test binary, or a bin directory).
func (c ManagerConfig) workerBinary(p engineProfile) string {
	if c.WorkerBin != "" {
		return c.WorkerBin
	}
	if c.WorkerBinDir != "" {
		return filepath.Join(c.WorkerBinDir, p.Binary)
	}
	return p.Binary
}

// workerArgs builds the argv shared by all worker binaries.
func workerArgs(spec WorkerSpec, host string, port int) ([]string, error) {
	cfgJSON := []byte("{}")
	if len(spec.Config) > 0 {
		b, err := json.Marshal(spec.Config)
		if err != nil {
			return nil, fmt.Errorf("marshal engine config: %w", err)
		}
		cfgJSON = b
	}
	return []string{
		"--host", host,
		"--port", fmt.Sprint(port),
		"--engine", spec.Engine,
		"--model-path", spec.ModelPath,
		"--engine-config", string(cfgJSON),
	}, nil
}
