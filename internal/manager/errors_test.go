package manager

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	cause := errors.New("boom")
	all := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"unsupported engine", ErrUnsupportedEngine("x"), IsUnsupportedEngine},
		{"model not loaded", ErrModelNotLoaded("m"), IsModelNotLoaded},
		{"already loaded", alreadyLoadedError{id: "m"}, IsAlreadyLoaded},
		{"load", ErrLoad("m", cause), IsLoadError},
		{"worker unavailable", ErrWorkerUnavailable("m", "crashed"), IsWorkerUnavailable},
		{"saturated", saturatedError{id: "m"}, IsSaturated},
		{"timeout", timeoutError{id: "m", op: "queue wait"}, IsTimeout},
		{"backend", ErrBackend("m", "oom"), IsBackendError},
		{"invalid request", ErrInvalidRequest("bad"), IsInvalidRequest},
	}
	for i, tc := range all {
		if !tc.pred(tc.err) {
			t.Errorf("%s: predicate rejected its own error", tc.name)
		}
		if tc.err.Error() == "" {
			t.Errorf("%s: empty message", tc.name)
		}
		// Each predicate must match only its own type.
		for j, other := range all {
			if i != j && tc.pred(other.err) {
				t.Errorf("%s predicate matched %s error", tc.name, other.name)
			}
		}
	}
}

func TestLoadErrorUnwrap(t *testing.T) {
	cause := errors.New("model file corrupt")
	err := ErrLoad("m", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("load error must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "model file corrupt") {
		t.Fatalf("cause missing from message: %v", err)
	}
}

func TestPredicatesRejectForeignErrors(t *testing.T) {
	err := errors.New("plain")
	for name, pred := range map[string]func(error) bool{
		"IsUnsupportedEngine": IsUnsupportedEngine,
		"IsModelNotLoaded":    IsModelNotLoaded,
		"IsAlreadyLoaded":     IsAlreadyLoaded,
		"IsLoadError":         IsLoadError,
		"IsWorkerUnavailable": IsWorkerUnavailable,
		"IsSaturated":         IsSaturated,
		"IsTimeout":           IsTimeout,
		"IsBackendError":      IsBackendError,
		"IsInvalidRequest":    IsInvalidRequest,
	} {
		if pred(err) {
			t.Errorf("%s matched a plain error", name)
		}
		if pred(nil) {
			t.Errorf("%s matched nil", name)
		}
	}
}
