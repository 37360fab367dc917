// Package metrics exposes prometheus collectors for native handle lifetimes,
// blocking waits and event emission. The collectors always count; they are
// only exported once registered on a prometheus.Registerer.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spgo"

var (
	// HandlesLive is the number of native handles currently owned.
	HandlesLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "handles_live",
		Help:      "Native handles currently owned by a Go wrapper.",
	})

	// HandlesReleased counts releases, split by what triggered them.
	HandlesReleased = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handles_released_total",
		Help:      "Native handles released, by trigger (close or finalizer).",
	}, []string{"via"})

	// LoadTimeouts counts waits that gave up before the object loaded.
	LoadTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "load_timeouts_total",
		Help:      "Blocking waits that timed out before the object loaded.",
	})

	// EventsEmitted counts emissions per event name.
	EventsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_emitted_total",
		Help:      "Events emitted, by event name.",
	}, []string{"event"})
)

// Collectors returns every spgo collector.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{HandlesLive, HandlesReleased, LoadTimeouts, EventsEmitted}
}

// Register registers all collectors on reg. Registering twice on the same
// registry is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
