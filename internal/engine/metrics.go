package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "verse"

type metrics struct {
	Commands        *prometheus.CounterVec
	DroppedCommands *prometheus.CounterVec
	EventsSent      prometheus.Counter
	Conversions     prometheus.Counter
	Nodes           prometheus.Gauge
	Sessions        prometheus.Gauge
}

func newMetrics() metrics {
	subsystem := "engine"

	return metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_total",
			Help:      "Commands dispatched, by command name.",
		}, []string{"command"}),
		DroppedCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_commands_total",
			Help:      "Commands dropped by a guard, by reason.",
		}, []string{"reason"}),
		EventsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_sent_total",
			Help:      "Commands sent to sessions.",
		}),
		Conversions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "precision_conversions_total",
			Help:      "Real value precision conversions performed for fan-out.",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "nodes",
			Help:      "Live nodes.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions",
			Help:      "Sessions past the connect handshake.",
		}),
	}
}

// Metrics returns the engine's collectors for registration.
func (e *Engine) Metrics() []prometheus.Collector {
	m := e.metrics
	return []prometheus.Collector{
		m.Commands,
		m.DroppedCommands,
		m.EventsSent,
		m.Conversions,
		m.Nodes,
		m.Sessions,
	}
}
