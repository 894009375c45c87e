package dplay

import (
	"github.com/google/uuid"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

// maxEncapsulation is how many Packet envelopes may be opened while decoding one message.
const maxEncapsulation = 1

// Packet is the fragmentation envelope. Fragments are decoded one by one, never reassembled.
type Packet struct {
	MessageGUID  uuid.UUID
	PacketIndex  uint32
	DataSize     uint32
	DataOffset   uint32
	TotalPackets uint32
	MessageSize  uint32
	PacketOffset uint32

	ActionTag [4]byte
	Command   Command
	Dialect   Dialect
	Inner     Body
}

func decodePacket(ctx *core.Context) (Body, error) {
	if ctx.Depth >= maxEncapsulation {
		return opaque(ctx)
	}
	ctx.Depth++
	defer func() { ctx.Depth-- }()

	m := &Packet{}
	var err error
	if m.MessageGUID, err = readGUID(ctx, "Message GUID"); err != nil {
		return m, err
	}
	if m.PacketIndex, err = node.Uint32(ctx, "Packet Index"); err != nil {
		return m, err
	}
	if m.DataSize, err = node.Uint32(ctx, "Data Size"); err != nil {
		return m, err
	}
	if m.DataOffset, err = node.Uint32(ctx, "Data Offset"); err != nil {
		return m, err
	}
	if m.TotalPackets, err = node.Uint32(ctx, "Total Packets"); err != nil {
		return m, err
	}
	if m.MessageSize, err = node.Uint32(ctx, "Message Size"); err != nil {
		return m, err
	}
	if m.PacketOffset, err = node.Uint32(ctx, "Packet Offset"); err != nil {
		return m, err
	}

	err = node.Struct(ctx, "Encapsulated Message", func() error {
		tag, err := node.BytesFormat(ctx, "Action", 4, func(v any) string { return string(v.([]byte)) })
		if err != nil {
			return err
		}
		copy(m.ActionTag[:], tag)
		if m.Command, m.Dialect, err = decodeCommandDialect(ctx); err != nil {
			return err
		}
		// only the commands of the encapsulated table are opened, a nested Packet stays opaque
		m.Inner, err = dispatchWith(ctx, encapsulated, m.Command)
		return err
	})
	return m, err
}
