package manager

import (
	"sort"
	"time"

	"voiced/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	workers := m.snapshot()
	resp := types.StatusResponse{
		Workers:        make([]types.WorkerStatus, 0, len(workers)),
		Status:         aggregateStatus(m.Summary()),
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		CrashesTotal:   m.crashesTotal.Load(),
		RestartsTotal:  m.restartsTotal.Load(),
	}
	for _, w := range workers {
		resp.Workers = append(resp.Workers, w.status())
	}
	sort.Slice(resp.Workers, func(i, j int) bool {
		return resp.Workers[i].ModelID < resp.Workers[j].ModelID
	})
	return resp
}

// ListWorkers returns the specs of all live workers.
func (m *Manager) ListWorkers() []WorkerSpec {
	workers := m.snapshot()
	out := make([]WorkerSpec, 0, len(workers))
	for _, w := range workers {
		out = append(out, w.Spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}
