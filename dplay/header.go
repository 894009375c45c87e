package dplay

import (
	"net/netip"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

const (
	HeaderSize       = 28
	PlayerHeaderSize = 20

	// AFInet is the Windows IPv4 address family.
	AFInet = 2

	sizeMask   = 0x000FFFFF
	tokenShift = 20
)

var ActionTag = [4]byte{'p', 'l', 'a', 'y'}

// SockAddr is the legacy sockaddr_in the sender embeds as its reply address.
type SockAddr struct {
	Family  uint16
	Port    uint16
	IP      netip.Addr
	Padding [8]byte
}

func (a SockAddr) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(a.IP, a.Port)
}

type Header struct {
	Size         uint32
	Token        Token
	Reply        SockAddr
	HasActionTag bool
	ActionTag    [4]byte
	Command      Command
	Dialect      Dialect
}

func formatSize(v any) string {
	u, _ := v.(uint32)
	return core.ToString(u & sizeMask)
}

func formatToken(v any) string {
	u, _ := v.(uint32)
	return Token(u >> tokenShift).String()
}

// DecodeHeader reads the 28 byte message header. The action tag is reported as read,
// checking it is left to the classifier.
func DecodeHeader(ctx *core.Context) (*Header, error) {
	h := &Header{}
	err := node.Struct(ctx, "DirectPlay Header", func() error {
		if err := decodeFraming(ctx, h); err != nil {
			return err
		}
		tag, err := node.BytesFormat(ctx, "Action", 4, func(v any) string { return string(v.([]byte)) })
		if err != nil {
			return err
		}
		h.HasActionTag = true
		copy(h.ActionTag[:], tag)
		cmd, dialect, err := decodeCommandDialect(ctx)
		h.Command, h.Dialect = cmd, dialect
		return err
	})
	return h, err
}

// decodePlayerHeader reads the 20 byte header of a player to player message, which has
// no action tag, command or dialect.
func decodePlayerHeader(ctx *core.Context) (*Header, error) {
	h := &Header{}
	err := node.Struct(ctx, "DirectPlay Player Header", func() error {
		return decodeFraming(ctx, h)
	})
	return h, err
}

func formatCommand(v any) string {
	u, _ := v.(uint16)
	return Command(u).String()
}

func formatDialect(v any) string {
	u, _ := v.(uint16)
	return Dialect(u).String()
}

func decodeCommandDialect(ctx *core.Context) (Command, Dialect, error) {
	cmd, err := node.Uint16Format(ctx, "Command", node.EndianLittle, formatCommand)
	if err != nil {
		return 0, 0, err
	}
	dialect, err := node.Uint16Format(ctx, "Dialect", node.EndianLittle, formatDialect)
	return Command(cmd), Dialect(dialect), err
}

func decodeFraming(ctx *core.Context, h *Header) error {
	if err := ctx.Require("Size and Token", 4); err != nil {
		return err
	}
	start := ctx.BytePos
	word, err := node.Uint32Format(ctx, "Size", formatSize)
	if err != nil {
		return err
	}
	h.Size = word & sizeMask
	h.Token = Token(word >> tokenShift)
	ctx.SetField("Token", uint32(h.Token))
	ctx.Sink.Add(&core.Field{Name: "Token", Start: start, Length: 4, Type: core.FieldU32, Value: uint32(h.Token), Display: formatToken(word)})

	return node.Struct(ctx, "Reply Address", func() error {
		family, err := node.Uint16(ctx, "Address Family", node.EndianLittle)
		if err != nil {
			return err
		}
		port, err := node.Uint16(ctx, "Port", node.EndianBig)
		if err != nil {
			return err
		}
		ip, err := node.IPv4(ctx, "IP")
		if err != nil {
			return err
		}
		padding, err := node.Bytes(ctx, "Padding", 8)
		if err != nil {
			return err
		}
		h.Reply = SockAddr{Family: family, Port: port, IP: ip}
		copy(h.Reply.Padding[:], padding)
		return nil
	})
}
