package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	spawnCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voiced",
			Subsystem: "worker",
			Name:      "spawns_total",
			Help:      "Total worker process spawns",
		},
		[]string{"engine"},
	)

	crashCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voiced",
			Subsystem: "worker",
			Name:      "crashes_total",
			Help:      "Total unexpected worker terminations",
		},
		[]string{"model"},
	)

	restartCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voiced",
			Subsystem: "worker",
			Name:      "restarts_total",
			Help:      "Total worker restart attempts",
		},
		[]string{"model"},
	)

	rejectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voiced",
			Subsystem: "dispatch",
			Name:      "rejections_total",
			Help:      "Dispatch rejections by reason (saturated, timeout, unavailable)",
		},
		[]string{"reason"},
	)

	dispatchInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "voiced",
			Subsystem: "dispatch",
			Name:      "inflight",
			Help:      "In-flight inference requests per model",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(spawnCounter, crashCounter, restartCounter, rejectionCounter, dispatchInflight)
}
