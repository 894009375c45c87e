package node

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/vdplay/core"
)

const (
	EndianLittle = "little"
	EndianBig    = "big"
)

// Bit names one flag inside a bitfield.
type Bit struct {
	Mask uint32
	Name string
}

// BytesNode reads one fixed width primitive and reports it to the sink.
type BytesNode struct {
	Name   string
	Type   core.FieldType
	Size   int
	Endian string
	Bits   []Bit
	Format func(v any) string
}

func (this *BytesNode) GetByteOrder() (byteOrder binary.ByteOrder) {
	byteOrder = binary.LittleEndian
	if this.Endian == EndianBig {
		byteOrder = binary.BigEndian
	}
	return byteOrder
}

func (this *BytesNode) read(ctx *core.Context) (any, error) {
	if err := ctx.Require(this.Name, this.Size); err != nil {
		return nil, err
	}
	start := ctx.BytePos
	bs, err := ctx.ReadBytes(this.Size)
	if err != nil {
		return nil, errors.Wrapf(err, "Parse field %s", this.Name)
	}

	var val any
	switch this.Type {
	case core.FieldU8:
		val = bs[0]
	case core.FieldU16:
		val = this.GetByteOrder().Uint16(bs)
	case core.FieldU32, core.FieldBitfield:
		v, err := core.ConvertBytesToInt(bs, this.GetByteOrder())
		if err != nil {
			return nil, errors.Wrapf(err, "Parse field %s", this.Name)
		}
		val = uint32(v)
	case core.FieldIPv4:
		val = netip.AddrFrom4([4]byte(bs))
	case core.FieldBytes:
		val = bs
	default:
		return nil, errors.Errorf("Parse field %s: unsupported type %s", this.Name, this.Type)
	}

	field := &core.Field{Name: this.Name, Start: start, Length: this.Size, Type: this.Type, Value: val}
	if this.Format != nil {
		field.Display = this.Format(val)
	}
	if this.Type == core.FieldBitfield {
		field.Children = bitChildren(val.(uint32), start, this.Size, this.Bits)
		if field.Display == "" {
			field.Display = core.Hex(val.(uint32), this.Size*2)
			if names := SetBits(val.(uint32), this.Bits); names != "" {
				field.Display += " (" + names + ")"
			}
		}
	}
	if this.Type == core.FieldBytes && field.Display == "" {
		field.Display = fmt.Sprintf("%02x", bs)
	}
	ctx.Sink.Add(field)
	ctx.SetField(this.Name, val)
	return val, nil
}

func bitChildren(v uint32, start, size int, bits []Bit) []*core.Field {
	var children []*core.Field
	for _, b := range bits {
		set := v&b.Mask != 0
		children = append(children, &core.Field{
			Name:    b.Name,
			Start:   start,
			Length:  size,
			Type:    core.FieldBitfield,
			Value:   set,
			Display: fmt.Sprintf("%t", set),
		})
	}
	return children
}

// SetBits lists the names of the flags set in v.
func SetBits(v uint32, bits []Bit) string {
	var names []string
	for _, b := range bits {
		if v&b.Mask != 0 {
			names = append(names, b.Name)
		}
	}
	return strings.Join(names, ", ")
}

func Uint8(ctx *core.Context, name string) (uint8, error) {
	v, err := (&BytesNode{Name: name, Type: core.FieldU8, Size: 1}).read(ctx)
	if err != nil {
		return 0, err
	}
	return v.(uint8), nil
}

func Uint16(ctx *core.Context, name string, endian string) (uint16, error) {
	return Uint16Format(ctx, name, endian, nil)
}

func Uint16Format(ctx *core.Context, name string, endian string, format func(v any) string) (uint16, error) {
	v, err := (&BytesNode{Name: name, Type: core.FieldU16, Size: 2, Endian: endian, Format: format}).read(ctx)
	if err != nil {
		return 0, err
	}
	return v.(uint16), nil
}

func Uint32(ctx *core.Context, name string) (uint32, error) {
	return Uint32Format(ctx, name, nil)
}

func Uint32Format(ctx *core.Context, name string, format func(v any) string) (uint32, error) {
	v, err := (&BytesNode{Name: name, Type: core.FieldU32, Size: 4, Format: format}).read(ctx)
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

// Bitfield reads a little-endian flag word of size 2 or 4.
func Bitfield(ctx *core.Context, name string, size int, bits []Bit) (uint32, error) {
	v, err := (&BytesNode{Name: name, Type: core.FieldBitfield, Size: size, Bits: bits}).read(ctx)
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

func IPv4(ctx *core.Context, name string) (netip.Addr, error) {
	v, err := (&BytesNode{Name: name, Type: core.FieldIPv4, Size: 4}).read(ctx)
	if err != nil {
		return netip.Addr{}, err
	}
	return v.(netip.Addr), nil
}

func Bytes(ctx *core.Context, name string, size int) ([]byte, error) {
	return BytesFormat(ctx, name, size, nil)
}

func BytesFormat(ctx *core.Context, name string, size int, format func(v any) string) ([]byte, error) {
	if size == 0 {
		ctx.Sink.Add(&core.Field{Name: name, Start: ctx.BytePos, Type: core.FieldBytes, Value: []byte{}, Display: "<empty>"})
		return []byte{}, nil
	}
	v, err := (&BytesNode{Name: name, Type: core.FieldBytes, Size: size, Format: format}).read(ctx)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// StringDecoder decodes one string from the front of data and reports how many bytes it used.
type StringDecoder func(data []byte) (s string, consumed int, ok bool)

// String reads a self-delimited string. A string without its terminator is reported as
// truncated and the rest of the buffer is left unread.
func String(ctx *core.Context, name string, decode StringDecoder) (string, error) {
	start := ctx.BytePos
	s, n, ok := decode(ctx.Rest())
	if !ok {
		return "", ctx.Fail(core.Truncated, name, ctx.Remaining()+1)
	}
	if _, err := ctx.ReadBytes(n); err != nil {
		return "", errors.Wrapf(err, "Parse field %s", name)
	}
	ctx.Sink.Add(&core.Field{Name: name, Start: start, Length: n, Type: core.FieldString, Value: s, Display: s})
	ctx.SetField(name, s)
	return s, nil
}
