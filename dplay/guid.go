package dplay

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

// guidFromWire converts the on-wire GUID layout, whose first three groups are
// little-endian, into the canonical big-endian uuid byte order.
func guidFromWire(b []byte) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:16])
	return u
}

func formatGUID(v any) string {
	b, _ := v.([]byte)
	if len(b) != 16 {
		return ""
	}
	return "{" + guidFromWire(b).String() + "}"
}

func readGUID(ctx *core.Context, name string) (uuid.UUID, error) {
	b, err := node.BytesFormat(ctx, name, 16, formatGUID)
	if err != nil {
		return uuid.Nil, err
	}
	return guidFromWire(b), nil
}

// ID is an opaque 4 byte player or group identifier.
type ID uint32

func (id ID) String() string {
	return core.Hex(uint32(id), 8)
}

func formatID(v any) string {
	u, _ := v.(uint32)
	return ID(u).String()
}

func readID(ctx *core.Context, name string) (ID, error) {
	v, err := node.Uint32Format(ctx, name, formatID)
	return ID(v), err
}
