package dplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vuuvv/vdplay/core"
)

func TestReadVariableWidths(t *testing.T) {
	buf := []byte{0x05, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12}

	v, n := ReadVariable(0, buf, 0)
	assert.Equal(t, uint32(0), v)
	assert.Equal(t, 0, n)

	v, n = ReadVariable(1, buf, 0)
	assert.Equal(t, uint32(5), v)
	assert.Equal(t, 1, n)

	v, n = ReadVariable(2, buf, 1)
	assert.Equal(t, uint32(0x1234), v)
	assert.Equal(t, 2, n)

	v, n = ReadVariable(3, buf, 3)
	assert.Equal(t, uint32(0x12345678), v)
	assert.Equal(t, 4, n)
}

func TestReadVariableConsumesItsWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lengthType := rapid.Uint32Range(0, 3).Draw(t, "lengthType")
		buf := rapid.SliceOfN(rapid.Byte(), 4, 16).Draw(t, "buf")
		cursor := rapid.IntRange(0, len(buf)-4).Draw(t, "cursor")

		v1, n1 := ReadVariable(lengthType, buf, cursor)
		v2, n2 := ReadVariable(lengthType, buf, cursor)
		if n1 != lengthTypeWidths[lengthType] {
			t.Fatalf("length type %d consumed %d", lengthType, n1)
		}
		if v1 != v2 || n1 != n2 {
			t.Fatalf("not deterministic")
		}
	})
}

func TestReadVariableOutOfRange(t *testing.T) {
	for _, c := range []struct {
		lengthType uint32
		buf        []byte
		cursor     int
	}{
		{3, []byte{1, 2}, 0},
		{1, []byte{1, 2}, 5},
		{2, []byte{1, 2}, 1},
		{1, []byte{1, 2}, -1},
		{3, nil, 0},
	} {
		v, n := ReadVariable(c.lengthType, c.buf, c.cursor)
		assert.Equal(t, uint32(0), v, "%+v", c)
		assert.Equal(t, 0, n, "%+v", c)
	}

	v, n := ReadVariable(2, []byte{1, 2}, 0)
	assert.Equal(t, uint32(0x0201), v)
	assert.Equal(t, 2, n)
}

func TestReadVariableNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lengthType := rapid.Uint32().Draw(t, "lengthType")
		buf := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "buf")
		cursor := rapid.IntRange(-4, 12).Draw(t, "cursor")

		_, n := ReadVariable(lengthType, buf, cursor)
		if n != 0 && (cursor < 0 || cursor+n > len(buf)) {
			t.Fatalf("consumed %d bytes outside the buffer", n)
		}
	})
}

func TestReadVariableFieldTruncated(t *testing.T) {
	ctx := core.NewContext([]byte{0x01, 0x02})
	_, err := readVariableField(ctx, "Player Count", 3)
	require.Error(t, err)
	assert.Equal(t, 0, ctx.BytePos)
	assert.True(t, hasDiagnostic(ctx.Diagnostics, core.Truncated, "Player Count"))
}

func TestPackedPlayerWithoutParent(t *testing.T) {
	p := packedPlayerFixture{id: 0x01020304, trailer: []byte{0xef, 0xbe, 0xad, 0xde}}
	p.size = p.consumed() - 4 // size+4 == consumed

	ctx := core.NewContext(p.encode(&wire{}).bytes())
	pp, err := DecodePackedPlayer(ctx)
	require.NoError(t, err)
	assert.False(t, pp.HasParentID)
	assert.Equal(t, ID(0x01020304), pp.ID)
	assert.Equal(t, packedPlayerFixedSize, ctx.BytePos)
	assert.Equal(t, 4, ctx.Remaining())
}

func TestPackedPlayerWithParent(t *testing.T) {
	p := packedPlayerFixture{id: 0x01020304, trailer: []byte{0xef, 0xbe, 0xad, 0xde}}
	p.size = p.consumed() // size+4 > consumed

	ctx := core.NewContext(p.encode(&wire{}).bytes())
	pp, err := DecodePackedPlayer(ctx)
	require.NoError(t, err)
	assert.True(t, pp.HasParentID)
	assert.Equal(t, ID(0xdeadbeef), pp.ParentID)
	assert.Equal(t, packedPlayerFixedSize+4, ctx.BytePos)
}

func TestPackedPlayerSmallSizeHasNoParent(t *testing.T) {
	p := packedPlayerFixture{trailer: []byte{1, 2, 3, 4}}
	p.size = p.consumed() - 8

	ctx := core.NewContext(p.encode(&wire{}).bytes())
	pp, err := DecodePackedPlayer(ctx)
	require.NoError(t, err)
	assert.False(t, pp.HasParentID)
}

func TestPackedPlayerVariableParts(t *testing.T) {
	p := packedPlayerFixture{
		flags:      PlayerSystem | PlayerNameServer,
		id:         7,
		shortName:  "Bob",
		longName:   "Robert",
		spData:     []byte{0xaa, 0xbb},
		playerData: []byte{1, 2, 3},
		players:    []uint32{0x10, 0x20},
	}
	p.size = p.consumed() - 4

	ctx := core.NewContext(p.encode(&wire{}).bytes())
	pp, err := DecodePackedPlayer(ctx)
	require.NoError(t, err)
	assert.True(t, pp.IsSystemPlayer())
	assert.Equal(t, "Bob", pp.ShortName)
	assert.Equal(t, "Robert", pp.LongName)
	assert.Equal(t, []byte{0xaa, 0xbb}, pp.SPData)
	assert.Equal(t, []byte{1, 2, 3}, pp.PlayerData)
	assert.Equal(t, []ID{0x10, 0x20}, pp.PlayerIDs)
	assert.Equal(t, uint32(DialectDX6a), pp.Dialect)
	assert.False(t, pp.HasParentID)
	assert.Equal(t, 0, ctx.Remaining())
}

func TestPackedPlayerHugePlayerCount(t *testing.T) {
	w := (&wire{}).u32(0).u32(0).u32(1)
	w.u32(0).u32(0).u32(0).u32(0)
	w.u32(0xffffffff) // players
	w.u32(0).u32(0).u32(0).u32(0)
	ctx := core.NewContext(w.bytes())

	_, err := DecodePackedPlayer(ctx)
	require.Error(t, err)
	assert.True(t, hasDiagnostic(ctx.Diagnostics, core.Truncated, "Player IDs"))
}

func TestSuperPackedPlayerOneBytePlayerData(t *testing.T) {
	w := (&wire{}).u32(0).u32(0).u32(0x42)
	w.u32(1 << maskPlayerDataShift) // player data length type 1
	w.u32(0x99)                     // system player id
	w.u8(0x05).raw(1, 2, 3, 4, 5)
	w.raw(0xff) // not part of the record
	ctx := core.NewContext(w.bytes())

	p, err := DecodeSuperPackedPlayer(ctx, "Player 1")
	require.NoError(t, err)
	assert.False(t, p.IsSystemPlayer())
	assert.Equal(t, ID(0x99), p.SystemPlayerID)
	assert.Equal(t, uint32(1), p.LengthType(maskPlayerDataShift))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, p.PlayerData)
	assert.Equal(t, 26, ctx.BytePos)
	assert.Equal(t, uint32(5), ctx.Fields["Player Data Length"])
}

func TestSuperPackedPlayerSystemPlayer(t *testing.T) {
	mask := uint32(maskShortName | maskParentID | 1<<maskShortcutCountShift | 2<<maskSPDataShift | 1<<maskPlayerCountShift)
	w := (&wire{}).u32(0).u32(PlayerSystem).u32(0x42)
	w.u32(mask)
	w.u32(uint32(DialectDX7)) // dialect, not a player id
	w.str("host")
	w.u16(3).raw(9, 8, 7)         // service provider data
	w.u8(2).u32(0x100).u32(0x101) // players
	w.u32(0x500)                  // parent
	w.u8(1).u32(0x600)            // shortcuts
	ctx := core.NewContext(w.bytes())

	p, err := DecodeSuperPackedPlayer(ctx, "Player 1")
	require.NoError(t, err)
	assert.True(t, p.IsSystemPlayer())
	assert.Equal(t, uint32(DialectDX7), p.Dialect)
	assert.Equal(t, ID(0), p.SystemPlayerID)
	assert.Equal(t, "host", p.ShortName)
	assert.Empty(t, p.LongName)
	assert.Nil(t, p.PlayerData)
	assert.Equal(t, []byte{9, 8, 7}, p.SPData)
	assert.Equal(t, []ID{0x100, 0x101}, p.PlayerIDs)
	assert.True(t, p.HasParentID)
	assert.Equal(t, ID(0x500), p.ParentID)
	assert.Equal(t, []ID{0x600}, p.ShortcutIDs)
	assert.Equal(t, 0, ctx.Remaining())
}

func TestSuperPackedPlayerTruncatedData(t *testing.T) {
	w := (&wire{}).u32(0).u32(0).u32(0x42)
	w.u32(3 << maskPlayerDataShift)
	w.u32(0x99)
	w.u32(1000).raw(1, 2, 3)
	ctx := core.NewContext(w.bytes())

	p, err := DecodeSuperPackedPlayer(ctx, "Player 1")
	require.Error(t, err)
	assert.Nil(t, p.PlayerData)
	assert.True(t, hasDiagnostic(ctx.Diagnostics, core.Truncated, "Player Data"))
}

func TestGUIDFromWire(t *testing.T) {
	assert.Equal(t, instanceGUIDText, guidFromWire(instanceGUIDWire).String())
	assert.Equal(t, "{"+instanceGUIDText+"}", formatGUID(instanceGUIDWire))
}
