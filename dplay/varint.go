package dplay

import (
	"fmt"

	"github.com/vuuvv/vdplay/core"
)

// lengthTypeWidths maps a 2-bit length type to the on-wire width of the value it selects.
var lengthTypeWidths = [4]int{0, 1, 2, 4}

// ReadVariable decodes a value whose width is selected by a 2-bit length type:
// 0 is absent, 1 is one byte, 2 is a little-endian u16, 3 is a little-endian u32.
// Only the low two bits of lengthType are used. A cursor outside buf, or too few bytes
// left for the width, reads nothing and returns (0, 0).
func ReadVariable(lengthType uint32, buf []byte, cursor int) (value uint32, consumed int) {
	width := lengthTypeWidths[lengthType&0x3]
	if width == 0 || cursor < 0 || cursor > len(buf)-width {
		return 0, 0
	}
	v, _ := core.ConvertBytesToIntLE(buf[cursor : cursor+width])
	return uint32(v), width
}

// readVariableField is ReadVariable bounded by the context and reported to the sink.
func readVariableField(ctx *core.Context, name string, lengthType uint32) (uint32, error) {
	width := lengthTypeWidths[lengthType&0x3]
	if width == 0 {
		return 0, nil
	}
	if err := ctx.Require(name, width); err != nil {
		return 0, err
	}
	start := ctx.BytePos
	v, n := ReadVariable(lengthType, ctx.Data, ctx.BytePos)
	ctx.BytePos += n

	typ := core.FieldU32
	switch n {
	case 1:
		typ = core.FieldU8
	case 2:
		typ = core.FieldU16
	}
	ctx.Sink.Add(&core.Field{Name: name, Start: start, Length: n, Type: typ, Value: v, Display: fmt.Sprintf("%d", v)})
	ctx.SetField(name, v)
	return v, nil
}
