package manager

import "voiced/pkg/types"

// Health status values reported by the gateway.
const (
	HealthOK       = "ok"
	HealthLoading  = "loading"
	HealthDegraded = "degraded"
)

// Summary counts the current workers by state.
func (m *Manager) Summary() Summary {
	var s Summary
	for _, w := range m.snapshot() {
		s.Total++
		switch w.State() {
		case StateReady:
			s.Ready++
		case StateStarting:
			s.Starting++
		case StateCrashed:
			s.Crashed++
		}
	}
	return s
}

// aggregateStatus folds a worker summary into one status. Any crashed worker
// wins over loading; a gateway with no workers is trivially healthy.
func aggregateStatus(s Summary) string {
	switch {
	case s.Crashed > 0:
		return HealthDegraded
	case s.Starting > 0:
		return HealthLoading
	default:
		return HealthOK
	}
}

// Health builds the aggregate health snapshot. Version is filled by the
// serving layer.
func (m *Manager) Health() types.HealthResponse {
	s := m.Summary()
	return types.HealthResponse{
		Status:       aggregateStatus(s),
		WorkersReady: s.Ready,
		WorkersTotal: s.Total,
		ModelsLoaded: s.Total,
	}
}

// Ready reports whether the gateway can serve at least one model. A gateway
// with no workers is ready (nothing to wait for).
func (m *Manager) Ready() bool {
	s := m.Summary()
	return s.Total == 0 || s.Ready > 0
}
