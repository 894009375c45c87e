package core

import (
	"fmt"
	"io"
	"strings"
)

type FieldType int

const (
	FieldU8 FieldType = iota
	FieldU16
	FieldU32
	FieldIPv4
	FieldBytes
	FieldString
	FieldBitfield
	FieldStruct // 复合结构, 只有 Children
)

var fieldTypeNames = [...]string{"u8", "u16", "u32", "ipv4", "bytes", "string", "bitfield", "struct"}

func (t FieldType) String() string {
	if t < 0 || int(t) >= len(fieldTypeNames) {
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
	return fieldTypeNames[t]
}

// Field 一个解码出来的字段, Start/Length 是在原始报文中的字节范围
type Field struct {
	Name     string    `json:"name"`
	Start    int       `json:"start"`
	Length   int       `json:"length"`
	Type     FieldType `json:"type"`
	Value    any       `json:"value,omitempty"`
	Display  string    `json:"display,omitempty"`
	Children []*Field  `json:"children,omitempty"`
}

func (f *Field) End() int {
	return f.Start + f.Length
}

// Find returns the first field named name, searching depth first.
func (f *Field) Find(name string) *Field {
	if f.Name == name {
		return f
	}
	for _, c := range f.Children {
		if r := c.Find(name); r != nil {
			return r
		}
	}
	return nil
}

func (f *Field) String() string {
	if f.Type == FieldStruct {
		return f.Name
	}
	if f.Display != "" {
		return fmt.Sprintf("%s: %s", f.Name, f.Display)
	}
	return fmt.Sprintf("%s: %v", f.Name, f.Value)
}

// Sink receives decoded fields. Open/Close bracket a labeled subtree.
type Sink interface {
	Add(f *Field)
	Open(name string, start int)
	Close(end int)
}

// Tree is the default Sink, it keeps every field in memory.
type Tree struct {
	root  *Field
	stack []*Field
}

func NewTree() *Tree {
	root := &Field{Type: FieldStruct}
	return &Tree{root: root, stack: []*Field{root}}
}

func (t *Tree) top() *Field {
	return t.stack[len(t.stack)-1]
}

func (t *Tree) Add(f *Field) {
	top := t.top()
	top.Children = append(top.Children, f)
}

func (t *Tree) Open(name string, start int) {
	f := &Field{Name: name, Start: start, Type: FieldStruct}
	t.Add(f)
	t.stack = append(t.stack, f)
}

func (t *Tree) Close(end int) {
	if len(t.stack) == 1 {
		return
	}
	f := t.top()
	f.Length = end - f.Start
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *Tree) Root() *Field {
	return t.root
}

func (t *Tree) Fields() []*Field {
	return t.root.Children
}

// Render writes fields as an indented text tree.
func Render(w io.Writer, fields []*Field) error {
	return render(w, fields, 0)
}

func render(w io.Writer, fields []*Field, depth int) error {
	indent := strings.Repeat("    ", depth)
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, f); err != nil {
			return err
		}
		if err := render(w, f.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

type nopSink struct{}

func (nopSink) Add(*Field)       {}
func (nopSink) Open(string, int) {}
func (nopSink) Close(int)        {}

// NopSink discards every field.
var NopSink Sink = nopSink{}
