package node

import (
	"github.com/vuuvv/vdplay/core"
)

type CaseFunc[V any] func(ctx *core.Context) (V, error)

// Switch selects a decoder by key. Keys without a case fall to Default.
type Switch[K comparable, V any] struct {
	Name    string
	Cases   map[K]CaseFunc[V]
	Default CaseFunc[V]
}

func NewSwitch[K comparable, V any](name string, def CaseFunc[V]) *Switch[K, V] {
	return &Switch[K, V]{Name: name, Cases: make(map[K]CaseFunc[V]), Default: def}
}

// Case registers fn for every key given.
func (n *Switch[K, V]) Case(fn CaseFunc[V], keys ...K) *Switch[K, V] {
	for _, k := range keys {
		n.Cases[k] = fn
	}
	return n
}

func (n *Switch[K, V]) Decode(ctx *core.Context, key K) (V, error) {
	if fn, ok := n.Cases[key]; ok {
		return fn(ctx)
	}
	return n.Default(ctx)
}
