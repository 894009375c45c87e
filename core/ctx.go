package core

import (
	"encoding/binary"
	"fmt"

	"github.com/vuuvv/errors"
)

type DiagnosticKind int

const (
	Truncated DiagnosticKind = iota + 1 // 声明的长度超出了报文
	Malformed                           // 字段值不合法, 例如字符串没有结束符
)

func (k DiagnosticKind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic is a recoverable decode problem scoped to one field.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Field  string         `json:"field"`
	Offset int            `json:"offset"`
	Need   int            `json:"need"`
	Have   int            `json:"have"`
}

func (d *Diagnostic) Error() string {
	if d.Kind == Truncated {
		return fmt.Sprintf("%s: %s at offset %d, need %d bytes, have %d", d.Field, d.Kind, d.Offset, d.Need, d.Have)
	}
	return fmt.Sprintf("%s: %s at offset %d", d.Field, d.Kind, d.Offset)
}

type Context struct {
	Data        []byte
	BytePos     int
	Fields      map[string]any // 字段值
	Vars        map[string]any // 变量值
	Sink        Sink
	Diagnostics []*Diagnostic
	Depth       int // 封装层数
}

func NewContext(data []byte) *Context {
	return &Context{
		Data:   data,
		Vars:   make(map[string]any),
		Fields: make(map[string]any),
		Sink:   NopSink,
	}
}

func (c *Context) WithSink(sink Sink) *Context {
	if sink != nil {
		c.Sink = sink
	}
	return c
}

func (c *Context) SetField(name string, val any) {
	c.Fields[name] = val
}

func (c *Context) GetField(name string) (any, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

// Remaining is 0 when the cursor is outside the data, in either direction.
func (c *Context) Remaining() int {
	if c.BytePos < 0 || c.BytePos >= len(c.Data) {
		return 0
	}
	return len(c.Data) - c.BytePos
}

// Fail records a diagnostic and returns it as an error so callers can stop.
func (c *Context) Fail(kind DiagnosticKind, field string, need int) error {
	d := &Diagnostic{Kind: kind, Field: field, Offset: c.BytePos, Need: need, Have: c.Remaining()}
	c.Diagnostics = append(c.Diagnostics, d)
	return d
}

// Require checks that n bytes are left without consuming them.
func (c *Context) Require(field string, n int) error {
	if n < 0 || n > c.Remaining() {
		return c.Fail(Truncated, field, n)
	}
	return nil
}

func (c *Context) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative size: %d", n)
	}
	if c.BytePos < 0 || c.BytePos > len(c.Data)-n {
		return nil, errors.Errorf("EOF reading bytes at %d, need %d, have %d", c.BytePos, n, c.Remaining())
	}
	ret := c.Data[c.BytePos : c.BytePos+n]
	c.BytePos += n
	return ret, nil
}

// PeekAt reads n bytes at an absolute offset without moving the cursor.
func (c *Context) PeekAt(offset, n int) ([]byte, bool) {
	if offset < 0 || n < 0 || offset+n > len(c.Data) {
		return nil, false
	}
	return c.Data[offset : offset+n], true
}

func (c *Context) PeekUint32At(offset int, order binary.ByteOrder) (uint32, bool) {
	bs, ok := c.PeekAt(offset, 4)
	if !ok {
		return 0, false
	}
	return order.Uint32(bs), true
}

func (c *Context) ReadUint8() (uint8, error) {
	bs, err := c.ReadBytes(1)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return bs[0], nil
}

func (c *Context) ReadUint16(order binary.ByteOrder) (uint16, error) {
	bs, err := c.ReadBytes(2)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return order.Uint16(bs), nil
}

func (c *Context) ReadUint32(order binary.ByteOrder) (uint32, error) {
	bs, err := c.ReadBytes(4)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return order.Uint32(bs), nil
}

// Rest returns the unread bytes without consuming them.
func (c *Context) Rest() []byte {
	if c.BytePos < 0 || c.BytePos >= len(c.Data) {
		return nil
	}
	return c.Data[c.BytePos:]
}
