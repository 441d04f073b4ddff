// Package metrics holds the Prometheus collectors of a desktop process.
// Every method is safe on a nil *Metrics, so components can take one
// optionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Render loop
	Frames        prometheus.Counter
	FrameDuration prometheus.Histogram
	DrawCalls     *prometheus.CounterVec

	// Terminal
	PTYBytes    *prometheus.CounterVec
	ChildExits  prometheus.Counter
	KeysHandled prometheus.Counter

	// Dispatch
	Commands       *prometheus.CounterVec
	QueueRejected  prometheus.Counter
	ResultsDropped prometheus.Counter
	Listeners      prometheus.Gauge
	EventsDropped  prometheus.Counter

	// Websocket transport
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "termdesk_frames_total",
			Help: "Total number of rendered frames",
		}),
		FrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "termdesk_frame_duration_seconds",
			Help:    "Time spent updating and drawing one frame",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .016, .025, .05, .1},
		}),
		DrawCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "termdesk_layer_draws_total",
			Help: "Layer draw passes by layer",
		}, []string{"layer"}),

		PTYBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "termdesk_pty_bytes_total",
			Help: "Bytes moved through child pseudo-terminals",
		}, []string{"direction"}),
		ChildExits: factory.NewCounter(prometheus.CounterOpts{
			Name: "termdesk_child_exits_total",
			Help: "Child processes that went away",
		}),
		KeysHandled: factory.NewCounter(prometheus.CounterOpts{
			Name: "termdesk_keys_total",
			Help: "Key events handled",
		}),

		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "termdesk_commands_total",
			Help: "Dispatched commands by name and status",
		}, []string{"name", "status"}),
		QueueRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "termdesk_queue_rejected_total",
			Help: "Commands rejected because the queue was full",
		}),
		ResultsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "termdesk_results_dropped_total",
			Help: "Results dropped because nobody read them",
		}),
		Listeners: factory.NewGauge(prometheus.GaugeOpts{
			Name: "termdesk_event_listeners",
			Help: "Registered event listeners",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "termdesk_events_dropped_total",
			Help: "Events dropped for slow listeners",
		}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "termdesk_ws_connections",
			Help: "Open websocket connections",
		}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "termdesk_ws_messages_total",
			Help: "Websocket messages by endpoint and direction",
		}, []string{"endpoint", "direction"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	m.FrameDuration.Observe(d.Seconds())
}

func (m *Metrics) LayerDrawn(layer string) {
	if m == nil {
		return
	}
	m.DrawCalls.WithLabelValues(layer).Inc()
}

func (m *Metrics) PTYRead(n int) {
	if m == nil {
		return
	}
	m.PTYBytes.WithLabelValues("read").Add(float64(n))
}

func (m *Metrics) PTYWritten(n int) {
	if m == nil {
		return
	}
	m.PTYBytes.WithLabelValues("write").Add(float64(n))
}

func (m *Metrics) ChildExited() {
	if m == nil {
		return
	}
	m.ChildExits.Inc()
}

func (m *Metrics) KeyHandled() {
	if m == nil {
		return
	}
	m.KeysHandled.Inc()
}

// Command records one dispatched command. status is "ok", "error" or
// "unknown".
func (m *Metrics) Command(name, status string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name, status).Inc()
}

func (m *Metrics) QueueFull() {
	if m == nil {
		return
	}
	m.QueueRejected.Inc()
}

func (m *Metrics) ResultDropped() {
	if m == nil {
		return
	}
	m.ResultsDropped.Inc()
}

func (m *Metrics) SetListeners(n int) {
	if m == nil {
		return
	}
	m.Listeners.Set(float64(n))
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

func (m *Metrics) WSConnected() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

func (m *Metrics) WSDisconnected() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// WSMessage records a message on endpoint; direction is "in" or "out".
func (m *Metrics) WSMessage(endpoint, direction string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(endpoint, direction).Inc()
}
