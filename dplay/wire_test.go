package dplay

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/vuuvv/vdplay/core"
)

// wire builds little-endian fixtures.
type wire struct {
	b []byte
}

func (w *wire) u8(v uint8) *wire {
	w.b = append(w.b, v)
	return w
}

func (w *wire) u16(v uint16) *wire {
	w.b = binary.LittleEndian.AppendUint16(w.b, v)
	return w
}

func (w *wire) u32(v uint32) *wire {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
	return w
}

func (w *wire) raw(bs ...byte) *wire {
	w.b = append(w.b, bs...)
	return w
}

func (w *wire) zeros(n int) *wire {
	w.b = append(w.b, make([]byte, n)...)
	return w
}

// str appends a NUL terminated UTF-16LE string.
func (w *wire) str(s string) *wire {
	for _, u := range utf16.Encode([]rune(s)) {
		w.u16(u)
	}
	return w.u16(0)
}

func (w *wire) bytes() []byte {
	return w.b
}

func utf16Len(s string) uint32 {
	return uint32(len(utf16.Encode([]rune(s)))+1) * 2
}

func replyAddr(w *wire) *wire {
	return w.u16(AFInet).raw(0xBA, 0x08).raw(192, 168, 1, 2).zeros(8)
}

// message builds a full message: header with the play tag followed by body.
func message(cmd Command, dialect Dialect, body []byte) []byte {
	w := &wire{}
	w.u32(uint32(TokenRemote)<<tokenShift | uint32(HeaderSize+len(body)))
	replyAddr(w)
	w.raw(ActionTag[:]...).u16(uint16(cmd)).u16(uint16(dialect)).raw(body...)
	return w.bytes()
}

// playerMessage builds a short player to player message.
func playerMessage(token Token, payload []byte) []byte {
	w := &wire{}
	w.u32(uint32(token)<<tokenShift | uint32(PlayerHeaderSize+len(payload)))
	replyAddr(w)
	return w.raw(payload...).bytes()
}

var (
	instanceGUIDWire = []byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	instanceGUIDText = "00112233-4455-6677-8899-aabbccddeeff"
)

func sessionDesc(w *wire, flags, maxPlayers, currPlayers uint32) *wire {
	w.u32(SessionDescSize).u32(flags)
	w.raw(instanceGUIDWire...)
	w.raw(instanceGUIDWire...)
	w.u32(maxPlayers).u32(currPlayers)
	w.u32(0x00a1b2c3).u32(0) // name and password placeholders
	return w.zeros(6 * 4)
}

type packedPlayerFixture struct {
	size       uint32
	flags      uint32
	id         uint32
	shortName  string
	longName   string
	spData     []byte
	playerData []byte
	players    []uint32
	trailer    []byte
}

const packedPlayerFixedSize = 48

func (p packedPlayerFixture) encode(w *wire) *wire {
	var shortLen, longLen uint32
	if p.shortName != "" {
		shortLen = utf16Len(p.shortName)
	}
	if p.longName != "" {
		longLen = utf16Len(p.longName)
	}
	w.u32(p.size).u32(p.flags).u32(p.id)
	w.u32(shortLen).u32(longLen)
	w.u32(uint32(len(p.spData))).u32(uint32(len(p.playerData)))
	w.u32(uint32(len(p.players)))
	w.u32(0x0000aaaa).u32(packedPlayerFixedSize).u32(uint32(DialectDX6a)).u32(0)
	if p.shortName != "" {
		w.str(p.shortName)
	}
	if p.longName != "" {
		w.str(p.longName)
	}
	w.raw(p.spData...).raw(p.playerData...)
	for _, id := range p.players {
		w.u32(id)
	}
	return w.raw(p.trailer...)
}

// consumed is how many bytes the record takes without a parent id.
func (p packedPlayerFixture) consumed() uint32 {
	n := uint32(packedPlayerFixedSize + len(p.spData) + len(p.playerData) + 4*len(p.players))
	if p.shortName != "" {
		n += utf16Len(p.shortName)
	}
	if p.longName != "" {
		n += utf16Len(p.longName)
	}
	return n
}

// recorder is a Sink counting what it receives.
type recorder struct {
	added  []string
	opened []string
	depth  int
}

func (r *recorder) Add(f *core.Field) {
	r.added = append(r.added, f.Name)
}

func (r *recorder) Open(name string, start int) {
	r.opened = append(r.opened, name)
	r.depth++
}

func (r *recorder) Close(end int) {
	r.depth--
}

func hasDiagnostic(diags []*core.Diagnostic, kind core.DiagnosticKind, field string) bool {
	for _, d := range diags {
		if d.Kind == kind && d.Field == field {
			return true
		}
	}
	return false
}
