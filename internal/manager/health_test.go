package manager

import (
	"testing"

	"voiced/pkg/types"
)

func TestAggregateStatus(t *testing.T) {
	cases := []struct {
		name string
		s    Summary
		want string
	}{
		{"empty", Summary{}, HealthOK},
		{"all ready", Summary{Total: 2, Ready: 2}, HealthOK},
		{"one starting", Summary{Total: 2, Ready: 1, Starting: 1}, HealthLoading},
		{"crashed wins over starting", Summary{Total: 3, Ready: 1, Starting: 1, Crashed: 1}, HealthDegraded},
		{"crashed only", Summary{Total: 1, Crashed: 1}, HealthDegraded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := aggregateStatus(tc.s); got != tc.want {
				t.Fatalf("aggregateStatus(%+v) = %q, want %q", tc.s, got, tc.want)
			}
		})
	}
}

func TestHealth_CountsWorkers(t *testing.T) {
	m := New(ManagerConfig{})
	addWorker(m, "a", types.KindSTT, StateReady, &stubClient{})
	addWorker(m, "b", types.KindTTS, StateStarting, &stubClient{})
	addWorker(m, "c", types.KindTTS, StateCrashed, &stubClient{})

	h := m.Health()
	if h.Status != HealthDegraded {
		t.Fatalf("status = %q, want degraded", h.Status)
	}
	if h.WorkersReady != 1 || h.WorkersTotal != 3 || h.ModelsLoaded != 3 {
		t.Fatalf("unexpected counts: %+v", h)
	}
}

func TestReady(t *testing.T) {
	m := New(ManagerConfig{})
	if !m.Ready() {
		t.Fatalf("empty gateway must be ready")
	}
	w := addWorker(m, "a", types.KindSTT, StateStarting, &stubClient{})
	if m.Ready() {
		t.Fatalf("gateway with only a starting worker must not be ready")
	}
	w.setState(StateReady)
	if !m.Ready() {
		t.Fatalf("gateway with a ready worker must be ready")
	}
}

func TestStatus_SortedAndCounted(t *testing.T) {
	m := New(ManagerConfig{})
	addWorker(m, "zeta", types.KindSTT, StateReady, &stubClient{})
	addWorker(m, "alpha", types.KindTTS, StateCrashed, &stubClient{})

	st := m.Status()
	if len(st.Workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(st.Workers))
	}
	if st.Workers[0].ModelID != "alpha" || st.Workers[1].ModelID != "zeta" {
		t.Fatalf("workers not sorted: %+v", st.Workers)
	}
	if st.Status != HealthDegraded {
		t.Fatalf("status = %q, want degraded", st.Status)
	}
}
