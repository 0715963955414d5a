// Package metrics exposes Prometheus metrics for streams and overlays.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smazurov/hlsrelay/internal/events"
)

const namespace = "hlsrelay"

// Recorder owns the collectors and keeps them fed from the event bus.
type Recorder struct {
	registry *prometheus.Registry

	streamStarts   prometheus.Counter
	startFailures  prometheus.Counter
	streamStops    *prometheus.CounterVec
	overlayChanges *prometheus.CounterVec

	unsubs []func()
}

// New creates a Recorder on its own registry. active reports the number of
// registered streams and is sampled on every scrape.
func New(active func() int) *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "streams_active",
		Help:      "Streams currently registered",
	}, func() float64 {
		if active == nil {
			return 0
		}
		return float64(active())
	})

	return &Recorder{
		registry: reg,
		streamStarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_starts_total",
			Help:      "Transcoders started",
		}),
		startFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_start_failures_total",
			Help:      "Transcoders that failed to spawn",
		}),
		streamStops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_stops_total",
			Help:      "Streams stopped, by whether the transcoder had already exited",
		}, []string{"exited"}),
		overlayChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlay_changes_total",
			Help:      "Overlay documents changed, by action",
		}, []string{"action"}),
	}
}

// Attach subscribes the Recorder to bus. Call Detach to stop counting.
func (r *Recorder) Attach(bus *events.Bus) {
	r.unsubs = append(r.unsubs,
		bus.Subscribe(func(events.StreamStartedEvent) { r.streamStarts.Inc() }),
		bus.Subscribe(func(events.StreamStartFailedEvent) { r.startFailures.Inc() }),
		bus.Subscribe(func(e events.StreamStoppedEvent) { r.observeStop(e) }),
		bus.Subscribe(func(e events.OverlayChangedEvent) { r.overlayChanges.WithLabelValues(e.Action).Inc() }),
	)
}

// Detach removes all bus subscriptions.
func (r *Recorder) Detach() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *Recorder) observeStop(e events.StreamStoppedEvent) {
	exited := "false"
	if e.Exited {
		exited = "true"
	}
	r.streamStops.WithLabelValues(exited).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the Prometheus exposition handler for this Recorder.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
