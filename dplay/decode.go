package dplay

import (
	"encoding/binary"
	"fmt"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

var littleEndian = binary.LittleEndian

// Message is one decoded buffer. It is built fresh by every decode call.
type Message struct {
	Verdict     Verdict
	Header      *Header
	Body        Body
	Fields      []*core.Field
	Diagnostics []*core.Diagnostic
	Consumed    int
	Values      map[string]any // 字段名到值, 同名字段后者覆盖前者
	Vars        map[string]any
}

func (m *Message) Truncated() bool {
	for _, d := range m.Diagnostics {
		if d.Kind == core.Truncated {
			return true
		}
	}
	return false
}

// Summary is the one line description of the message.
func (m *Message) Summary() string {
	if m.Verdict == PlayerToPlayerMessage {
		return "Player to player message"
	}
	if m.Header == nil {
		return ""
	}
	if p, ok := m.Body.(*Packet); ok && p.Inner != nil {
		return fmt.Sprintf("%s: %s, holding a %s", m.Header.Dialect, m.Header.Command, p.Command)
	}
	return fmt.Sprintf("%s: %s", m.Header.Dialect, m.Header.Command)
}

type options struct {
	sink       core.Sink
	heuristics bool
}

type Option func(o *options)

// WithSink sends decoded fields to sink instead of the message's own field tree.
func WithSink(sink core.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithoutHeuristics accepts only buffers carrying the action tag.
func WithoutHeuristics() Option {
	return func(o *options) {
		o.heuristics = false
	}
}

func newOptions(opts []Option) *options {
	o := &options{heuristics: true}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Decode classifies buf and decodes it. It returns false when buf is not DirectPlay.
func Decode(buf []byte, opts ...Option) (*Message, bool) {
	o := newOptions(opts)
	switch classify(buf, o.heuristics) {
	case FullMessage:
		return decodeAt(buf, 0, FullMessage, o), true
	case PlayerToPlayerMessage:
		return decodeAt(buf, 0, PlayerToPlayerMessage, o), true
	}
	return nil, false
}

// DecodeMessage decodes a full message at offset without classifying it first.
func DecodeMessage(buf []byte, offset int, opts ...Option) *Message {
	return decodeAt(buf, offset, FullMessage, newOptions(opts))
}

// DecodePlayerMessage decodes a short player to player message at offset.
func DecodePlayerMessage(buf []byte, offset int, opts ...Option) *Message {
	return decodeAt(buf, offset, PlayerToPlayerMessage, newOptions(opts))
}

func decodeAt(buf []byte, offset int, verdict Verdict, o *options) *Message {
	ctx := core.NewContext(buf)
	ctx.BytePos = offset
	tree := core.NewTree()
	sink := o.sink
	if sink == nil {
		sink = tree
	}
	ctx.WithSink(sink)

	m := &Message{Verdict: verdict}
	if verdict == PlayerToPlayerMessage {
		m.Header, m.Body = decodePlayerToPlayer(ctx)
	} else {
		m.Header, m.Body = decodeFull(ctx)
	}
	if o.sink == nil {
		m.Fields = tree.Fields()
	}
	m.Diagnostics = ctx.Diagnostics
	m.Consumed = ctx.BytePos - offset
	m.Values = ctx.Fields
	ctx.Vars["offset"] = offset
	ctx.Vars["consumed"] = m.Consumed
	ctx.Vars["length"] = len(buf)
	m.Vars = ctx.Vars
	return m
}

// decodeFull stops at the first failed field, whatever was decoded before stays.
func decodeFull(ctx *core.Context) (*Header, Body) {
	h, err := DecodeHeader(ctx)
	if err != nil {
		return h, nil
	}
	body, _ := Dispatch(ctx, h.Command)
	return h, body
}

func decodePlayerToPlayer(ctx *core.Context) (*Header, Body) {
	h, err := decodePlayerHeader(ctx)
	if err != nil {
		return h, nil
	}
	m := &PlayerMessage{}
	m.Payload, _ = node.BytesFormat(ctx, "Message Content", ctx.Remaining(), nil)
	return h, m
}
