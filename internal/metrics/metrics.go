// Package metrics exposes the process counters served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpenStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crisisdrill_open_streams",
		Help: "Open SSE connections by stream kind.",
	}, []string{"stream"})

	FramesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crisisdrill_frames_sent_total",
		Help: "SSE frames written, by stream kind and event name.",
	}, []string{"stream", "event"})

	ScenarioLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crisisdrill_scenario_loads_total",
		Help: "Timetable load attempts by result.",
	}, []string{"result"})
)
