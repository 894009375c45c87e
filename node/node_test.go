package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuuvv/vdplay/core"
)

func treeContext(data []byte) (*core.Context, *core.Tree) {
	tree := core.NewTree()
	return core.NewContext(data).WithSink(tree), tree
}

func TestPrimitives(t *testing.T) {
	ctx, tree := treeContext([]byte{0x01, 0x34, 0x12, 0x12, 0x34, 0x78, 0x56, 0x34, 0x12, 10, 0, 0, 1})

	u8, err := Uint8(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), u8)

	le, err := Uint16(ctx, "B", EndianLittle)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), le)

	be, err := Uint16(ctx, "C", EndianBig)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), be)

	u32, err := Uint32Format(ctx, "D", func(v any) string { return "formatted" })
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	ip, err := IPv4(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", ip.String())

	fields := tree.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, "formatted", fields[3].Display)
	assert.Equal(t, 5, fields[3].Start)
	assert.Equal(t, core.FieldIPv4, fields[4].Type)
	assert.Equal(t, uint16(0x1234), ctx.Fields["C"])
	assert.Equal(t, 0, ctx.Remaining())
}

func TestPrimitiveTruncated(t *testing.T) {
	ctx, tree := treeContext([]byte{0x01, 0x02})
	_, err := Uint32(ctx, "Size")
	require.Error(t, err)

	var d *core.Diagnostic
	require.True(t, errors.As(err, &d))
	assert.Equal(t, core.Truncated, d.Kind)
	assert.Equal(t, 4, d.Need)
	assert.Equal(t, 2, d.Have)
	assert.Equal(t, 0, ctx.BytePos)
	assert.Empty(t, tree.Fields())
}

func TestBitfield(t *testing.T) {
	bits := []Bit{{Mask: 0x1, Name: "one"}, {Mask: 0x4, Name: "four"}}
	ctx, tree := treeContext([]byte{0x05, 0, 0, 0})
	v, err := Bitfield(ctx, "Flags", 4, bits)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), v)
	assert.Equal(t, "one, four", SetBits(v, bits))

	f := tree.Fields()[0]
	assert.Equal(t, "0x00000005 (one, four)", f.Display)
	require.Len(t, f.Children, 2)
	assert.Equal(t, true, f.Children[1].Value)
}

func TestBytesEmpty(t *testing.T) {
	ctx, tree := treeContext(nil)
	b, err := Bytes(ctx, "Data", 0)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Equal(t, "<empty>", tree.Fields()[0].Display)
}

func TestString(t *testing.T) {
	decode := func(data []byte) (string, int, bool) {
		for i, c := range data {
			if c == 0 {
				return string(data[:i]), i + 1, true
			}
		}
		return "", 0, false
	}

	ctx, _ := treeContext([]byte("abc\x00def"))
	s, err := String(ctx, "Name", decode)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
	assert.Equal(t, 4, ctx.BytePos)

	_, err = String(ctx, "Tail", decode)
	require.Error(t, err)
	assert.Equal(t, 4, ctx.BytePos)
	assert.Equal(t, "Tail", ctx.Diagnostics[0].Field)
}

func TestArrayChecksCountFirst(t *testing.T) {
	ctx, tree := treeContext([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	calls := 0
	_, err := Array(ctx, "IDs", 3, 4, func(i int) (uint32, error) {
		calls++
		return Uint32(ctx, "ID")
	})
	require.Error(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, ctx.BytePos)
	assert.Empty(t, tree.Fields())

	items, err := Array(ctx, "IDs", 2, 4, func(i int) (uint32, error) {
		return Uint32(ctx, "ID")
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, items)
	ids := tree.Fields()[0]
	assert.Equal(t, "IDs", ids.Name)
	assert.Equal(t, 8, ids.Length)
	assert.Len(t, ids.Children, 2)
}

func TestArrayHugeCount(t *testing.T) {
	ctx, _ := treeContext([]byte{1, 2, 3, 4})
	_, err := Array(ctx, "IDs", 0xffffffff, 4, func(i int) (uint32, error) {
		return Uint32(ctx, "ID")
	})
	require.Error(t, err)
	assert.Equal(t, core.Truncated, ctx.Diagnostics[0].Kind)
}

func TestWhen(t *testing.T) {
	ctx, _ := treeContext([]byte{7})
	v, err := When(false, func() (uint8, error) { return Uint8(ctx, "X") })
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v)
	assert.Equal(t, 0, ctx.BytePos)

	v, err = When(true, func() (uint8, error) { return Uint8(ctx, "X") })
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v)
}

func TestStructClosesOnError(t *testing.T) {
	ctx, tree := treeContext([]byte{1, 2})
	err := Struct(ctx, "Record", func() error {
		if _, err := Uint8(ctx, "A"); err != nil {
			return err
		}
		_, err := Uint16(ctx, "B", EndianLittle)
		return err
	})
	require.Error(t, err)
	rec := tree.Fields()[0]
	assert.Equal(t, "Record", rec.Name)
	assert.Equal(t, 1, rec.Length)
	assert.Len(t, rec.Children, 1)

	// later fields land at the root again
	ctx.BytePos = 0
	_, err = Uint8(ctx, "C")
	require.NoError(t, err)
	assert.Len(t, tree.Fields(), 2)
}

func TestSwitch(t *testing.T) {
	def := func(ctx *core.Context) (string, error) { return "default", nil }
	sw := NewSwitch[uint16, string]("Message", def).
		Case(func(ctx *core.Context) (string, error) { return "one or two", nil }, 1, 2)

	for key, want := range map[uint16]string{1: "one or two", 2: "one or two", 3: "default"} {
		got, err := sw.Decode(core.NewContext(nil), key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
