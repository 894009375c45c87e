package dplay

import (
	"github.com/vuuvv/vdplay/core"
)

const ProtocolName = "dplay"

// Protocol adapts the decoder to core.Codec.
type Protocol struct {
	opts []Option
}

func NewProtocol(config *core.Config) *Protocol {
	p := &Protocol{}
	if config != nil && !config.UseHeuristics() {
		p.opts = append(p.opts, WithoutHeuristics())
	}
	return p
}

func (this *Protocol) Name() string {
	return ProtocolName
}

func (this *Protocol) Parse(packet []byte) (*core.Parsed, bool) {
	m, ok := Decode(packet, this.opts...)
	if !ok {
		return nil, false
	}
	return &core.Parsed{
		Data:   m,
		Msg:    m.Digest(),
		Fields: m.Values,
		Vars:   m.Vars,
	}, true
}

// Digest flattens the message into the values the display filter sees as msg.
func (m *Message) Digest() map[string]any {
	d := map[string]any{
		"verdict":   m.Verdict.String(),
		"summary":   m.Summary(),
		"truncated": m.Truncated(),
		"consumed":  m.Consumed,
	}
	if m.Header != nil {
		d["size"] = m.Header.Size
		d["token"] = uint16(m.Header.Token)
		d["command"] = uint16(m.Header.Command)
		d["command_name"] = m.Header.Command.String()
		d["dialect"] = uint16(m.Header.Dialect)
	}
	if p, ok := m.Body.(*Packet); ok {
		d["inner_command"] = uint16(p.Command)
	}
	return d
}
