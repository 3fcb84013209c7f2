// Package metrics exposes scheduling outcomes to prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry     *prometheus.Registry
	proposals    *prometheus.CounterVec
	commits      *prometheus.CounterVec
	version      prometheus.Gauge
	openSessions prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "simulation_proposals_total",
			Help:      "Proposed simulation changes by result.",
		}, []string{"result"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "simulation_commits_total",
			Help:      "Simulation commit attempts by result.",
		}, []string{"result"}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dispatch",
			Name:      "schedule_version",
			Help:      "Version of the committed schedule.",
		}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dispatch",
			Name:      "simulation_open_sessions",
			Help:      "Draft simulation sessions held by this process.",
		}),
	}
	r.registry.MustRegister(
		r.proposals,
		r.commits,
		r.version,
		r.openSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveProposal(kind string) {
	r.proposals.WithLabelValues(kind).Inc()
}

func (r *Recorder) ObserveCommit(kind string) {
	r.commits.WithLabelValues(kind).Inc()
}

func (r *Recorder) SetVersion(version int64) {
	r.version.Set(float64(version))
}

func (r *Recorder) SetOpenSessions(n int) {
	r.openSessions.Set(float64(n))
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
