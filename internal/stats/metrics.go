package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes run progress as Prometheus metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	events  prometheus.Counter
	bytes   prometheus.Counter
	dropped prometheus.Counter
	eps     prometheus.Gauge
	target  prometheus.Gauge
	seconds prometheus.Gauge

	lastEvents  int64
	lastBytes   int64
	lastDropped int64
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsender_events_sent_total",
			Help: "Records sent",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsender_bytes_sent_total",
			Help: "Record bytes sent",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsender_records_dropped_total",
			Help: "Records dropped because they could not be framed",
		}),
		eps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netsender_eps",
			Help: "Events per second over the last reporting window",
		}),
		target: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netsender_target_eps",
			Help: "Current target rate, 0 when unthrottled",
		}),
		seconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netsender_run_seconds",
			Help: "Duration of the finished run",
		}),
	}
	m.registry.MustRegister(m.events, m.bytes, m.dropped, m.eps, m.target, m.seconds)
	return m
}

// Registry returns the registry to serve.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Window(s Snapshot) error {
	m.advance(s.TotalEvents, s.TotalBytes, s.Dropped)
	m.eps.Set(s.EPS)
	m.target.Set(s.TargetRate)
	return nil
}

func (m *Metrics) Final(s Summary) error {
	m.advance(s.Events, s.Bytes, s.Dropped)
	m.eps.Set(s.EPS)
	m.seconds.Set(s.Seconds)
	return nil
}

func (m *Metrics) advance(events, bytes, dropped int64) {
	if d := events - m.lastEvents; d > 0 {
		m.events.Add(float64(d))
		m.lastEvents = events
	}
	if d := bytes - m.lastBytes; d > 0 {
		m.bytes.Add(float64(d))
		m.lastBytes = bytes
	}
	if d := dropped - m.lastDropped; d > 0 {
		m.dropped.Add(float64(d))
		m.lastDropped = dropped
	}
}
