// Package metrics exposes Prometheus counters for logins and record changes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	logins    *prometheus.CounterVec
	mutations *prometheus.CounterVec
	records   prometheus.Gauge
}

// NewCollector registers the metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_record_mutations_total",
			Help: "Record mutations by action.",
		}, []string{"action"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_records",
			Help: "Records after the last create or delete.",
		}),
	}

	reg.MustRegister(c.logins, c.mutations, c.records)
	return c
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordMutation(action string) {
	c.mutations.WithLabelValues(action).Inc()
}

func (c *Collector) SetRecordCount(n int) {
	c.records.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
