package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	packets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vdplay",
			Subsystem: "decoder",
			Name:      "packets_total",
			Help:      "Packets seen, by transport and classifier verdict.",
		},
		[]string{"transport", "verdict"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vdplay",
			Subsystem: "decoder",
			Name:      "commands_total",
			Help:      "Decoded messages by command.",
		},
		[]string{"transport", "command"},
	)
	diagnostics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vdplay",
			Subsystem: "decoder",
			Name:      "diagnostics_total",
			Help:      "Decode diagnostics by kind.",
		},
		[]string{"transport", "kind"},
	)
	abandoned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vdplay",
			Subsystem: "framing",
			Name:      "abandoned_bytes_total",
			Help:      "Bytes dropped while resynchronising a stream.",
		},
		[]string{"transport"},
	)
	connections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vdplay",
			Subsystem: "listener",
			Name:      "connections",
			Help:      "Open connections.",
		},
		[]string{"transport"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(packets, commands, diagnostics, abandoned, connections)
	})
}

func RecordPacket(transport, verdict string) {
	RegisterMetrics()
	packets.WithLabelValues(transport, verdict).Inc()
}

func RecordCommand(transport, command string) {
	RegisterMetrics()
	commands.WithLabelValues(transport, command).Inc()
}

func RecordDiagnostic(transport, kind string) {
	RegisterMetrics()
	diagnostics.WithLabelValues(transport, kind).Inc()
}

func RecordAbandoned(transport string, n int) {
	RegisterMetrics()
	abandoned.WithLabelValues(transport).Add(float64(n))
}

func ConnectionOpened(transport string) {
	RegisterMetrics()
	connections.WithLabelValues(transport).Inc()
}

func ConnectionClosed(transport string) {
	RegisterMetrics()
	connections.WithLabelValues(transport).Dec()
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
