package backend

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	nodes    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_parse_requests_total",
			Help: "Parse requests by result (dag, cyclic, invalid).",
		}, []string{"result"}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_parse_nodes",
			Help:    "Node count of successfully parsed pipelines.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.requests, m.nodes)
	return m
}

func (m *metrics) observe(out resultLabel, nodes int) {
	m.requests.WithLabelValues(string(out)).Inc()
	if out != resultInvalid {
		m.nodes.Observe(float64(nodes))
	}
}

type resultLabel string

const (
	resultDAG     resultLabel = "dag"
	resultCyclic  resultLabel = "cyclic"
	resultInvalid resultLabel = "invalid"
)
