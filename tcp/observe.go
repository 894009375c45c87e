package tcp

import (
	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
	"github.com/vuuvv/vdplay/metrics"
)

const (
	TransportTCP = "tcp"
	TransportUDP = "udp"
)

// Observe feeds one scan result into the prometheus counters.
func Observe(transport string, result *core.ScanResult) {
	if result.Abandoned {
		metrics.RecordAbandoned(transport, len(result.Packet))
		return
	}
	m, ok := result.Data.(*dplay.Message)
	if !ok {
		metrics.RecordPacket(transport, dplay.NoMatch.String())
		return
	}
	metrics.RecordPacket(transport, m.Verdict.String())
	if m.Header != nil && m.Verdict == dplay.FullMessage {
		metrics.RecordCommand(transport, m.Header.Command.String())
	}
	for _, d := range m.Diagnostics {
		metrics.RecordDiagnostic(transport, d.Kind.String())
	}
}
