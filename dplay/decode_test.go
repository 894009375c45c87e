package dplay

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuuvv/vdplay/core"
)

func pingMessage() []byte {
	return message(CmdPing, DialectDX6a, (&wire{}).u32(0x11223344).u32(1000).bytes())
}

func TestDecodePing(t *testing.T) {
	buf := pingMessage()
	require.Equal(t, FullMessage, Classify(buf))

	m, ok := Decode(buf)
	require.True(t, ok)
	require.NotNil(t, m.Header)
	assert.Empty(t, m.Diagnostics)

	h := m.Header
	assert.Equal(t, uint32(36), h.Size)
	assert.Equal(t, TokenRemote, h.Token)
	assert.Equal(t, uint16(AFInet), h.Reply.Family)
	assert.Equal(t, "192.168.1.2:47624", h.Reply.AddrPort().String())
	assert.True(t, h.HasActionTag)
	assert.Equal(t, ActionTag, h.ActionTag)
	assert.Equal(t, CmdPing, h.Command)
	assert.Equal(t, DialectDX6a, h.Dialect)

	ping, ok := m.Body.(*Ping)
	require.True(t, ok, "body is %T", m.Body)
	assert.Equal(t, ID(0x11223344), ping.IDFrom)
	assert.Equal(t, uint32(1000), ping.TickCount)
	assert.Equal(t, 36, m.Consumed)
	assert.Equal(t, "DirectPlay 6.1a: Ping", m.Summary())
}

func TestDecodeEnumPlayersStopsAfterHeader(t *testing.T) {
	buf := message(CmdEnumPlayers, DialectDX7, []byte{0xde, 0xad, 0xbe, 0xef})

	m, ok := Decode(buf)
	require.True(t, ok)
	assert.IsType(t, &EnumPlayers{}, m.Body)
	assert.Equal(t, HeaderSize, m.Consumed)
	assert.Equal(t, "DirectPlay 7: Enum Players", m.Summary())
}

func TestDecodeUnknownCommandIsOpaque(t *testing.T) {
	buf := message(Command(0x0099), Dialect(0x0042), []byte{1, 2, 3})

	m, ok := Decode(buf)
	require.True(t, ok)
	body, ok := m.Body.(*Opaque)
	require.True(t, ok, "body is %T", m.Body)
	assert.Equal(t, []byte{1, 2, 3}, body.Data)
	assert.Equal(t, HeaderSize, m.Consumed)
	assert.Equal(t, "Unknown (0x0042): Unknown (0x0099)", m.Summary())
}

func TestDecodePlayerToPlayer(t *testing.T) {
	buf := playerMessage(TokenForwarded, []byte("hello, world"))
	require.Equal(t, PlayerToPlayerMessage, Classify(buf))

	m, ok := Decode(buf)
	require.True(t, ok)
	assert.Equal(t, PlayerToPlayerMessage, m.Verdict)
	assert.Equal(t, TokenForwarded, m.Header.Token)
	assert.False(t, m.Header.HasActionTag)
	body, ok := m.Body.(*PlayerMessage)
	require.True(t, ok)
	assert.Equal(t, []byte("hello, world"), body.Payload)
	assert.Equal(t, len(buf), m.Consumed)
	assert.Equal(t, "Player to player message", m.Summary())
}

func TestDecodeWithoutHeuristics(t *testing.T) {
	_, ok := Decode(playerMessage(TokenRemote, []byte("hello, world")), WithoutHeuristics())
	assert.False(t, ok)

	_, ok = Decode(pingMessage(), WithoutHeuristics())
	assert.True(t, ok)
}

func TestDecodeNotDirectPlay(t *testing.T) {
	_, ok := Decode([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	assert.False(t, ok)
}

func TestDecodeTruncatedBody(t *testing.T) {
	buf := pingMessage()
	buf = buf[:len(buf)-2]

	m, ok := Decode(buf)
	require.True(t, ok)
	assert.True(t, m.Truncated())
	assert.True(t, hasDiagnostic(m.Diagnostics, core.Truncated, "Tick Count"))

	ping, ok := m.Body.(*Ping)
	require.True(t, ok)
	assert.Equal(t, ID(0x11223344), ping.IDFrom)
	assert.Equal(t, 32, m.Consumed)
}

func TestDecodeFieldTree(t *testing.T) {
	m, ok := Decode(pingMessage())
	require.True(t, ok)
	require.Len(t, m.Fields, 2)

	header := m.Fields[0]
	assert.Equal(t, "DirectPlay Header", header.Name)
	assert.Equal(t, 0, header.Start)
	assert.Equal(t, HeaderSize, header.Length)
	assert.Equal(t, "Ping", header.Find("Command").Display)
	assert.Equal(t, "Remote Message", header.Find("Token").Display)
	assert.Equal(t, "192.168.1.2", header.Find("IP").Value.(interface{ String() string }).String())

	body := m.Fields[1]
	assert.Equal(t, "Ping", body.Name)
	assert.Equal(t, core.FieldStruct, body.Type)
	assert.Equal(t, HeaderSize, body.Start)
	assert.Equal(t, 8, body.Length)
	tick := body.Find("Tick Count")
	require.NotNil(t, tick)
	assert.Equal(t, 32, tick.Start)
	assert.Equal(t, 4, tick.Length)
	assert.Equal(t, uint32(1000), tick.Value)
	assert.Equal(t, "0x11223344", body.Find("ID From").Display)

	var out bytes.Buffer
	require.NoError(t, core.Render(&out, m.Fields))
	assert.Contains(t, out.String(), "DirectPlay Header\n")
	assert.Contains(t, out.String(), "    Tick Count: 1000\n")
}

func TestDecodeWithSink(t *testing.T) {
	r := &recorder{}
	m, ok := Decode(pingMessage(), WithSink(r))
	require.True(t, ok)
	assert.Nil(t, m.Fields)
	assert.Equal(t, 0, r.depth)
	assert.Contains(t, r.opened, "DirectPlay Header")
	assert.Contains(t, r.opened, "Ping")
	assert.Contains(t, r.added, "Tick Count")
}

func TestDecodeMessageAtOffset(t *testing.T) {
	buf := append([]byte{0xff, 0xff, 0xff}, pingMessage()...)
	m := DecodeMessage(buf, 3)
	require.NotNil(t, m.Header)
	assert.Equal(t, CmdPing, m.Header.Command)
	assert.Equal(t, 36, m.Consumed)
	assert.Equal(t, 3, m.Vars["offset"])
}

func TestDecodeMessageOffsetOutOfRange(t *testing.T) {
	buf := pingMessage()
	for _, offset := range []int{-1, -100, len(buf), len(buf) + 8} {
		m := DecodeMessage(buf, offset)
		assert.True(t, m.Truncated(), "offset %d", offset)
		assert.Equal(t, 0, m.Consumed, "offset %d", offset)

		p := DecodePlayerMessage(buf, offset)
		assert.True(t, p.Truncated(), "offset %d", offset)
	}
}

func TestProtocolParse(t *testing.T) {
	p := NewProtocol(nil)
	assert.Equal(t, "dplay", p.Name())

	parsed, ok := p.Parse(pingMessage())
	require.True(t, ok)
	assert.Equal(t, uint16(CmdPing), parsed.Msg["command"])
	assert.Equal(t, "Ping", parsed.Msg["command_name"])
	assert.Equal(t, "DirectPlay 6.1a: Ping", parsed.Msg["summary"])
	assert.Equal(t, uint32(1000), parsed.Fields["Tick Count"])
	assert.IsType(t, &Message{}, parsed.Data)

	_, ok = p.Parse([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestProtocolHonoursHeuristicsSetting(t *testing.T) {
	off := false
	p := NewProtocol(&core.Config{Heuristics: &off})
	_, ok := p.Parse(playerMessage(TokenServer, []byte("payload bytes")))
	assert.False(t, ok)
}
