package node

import (
	"github.com/vuuvv/vdplay/core"
)

// Array decodes count items, each at least itemSize bytes long, under a labeled subtree.
// The count is checked against the unread bytes before anything is read, a count that
// cannot fit is reported as truncated and no item is decoded.
func Array[T any](ctx *core.Context, name string, count uint32, itemSize int, item func(i int) (T, error)) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	need := uint64(count) * uint64(itemSize)
	if need > uint64(ctx.Remaining()) {
		return nil, ctx.Fail(core.Truncated, name, int(min(need, uint64(1<<31-1))))
	}

	items := make([]T, 0, count)
	err := Struct(ctx, name, func() error {
		for i := 0; i < int(count); i++ {
			v, err := item(i)
			if err != nil {
				return err
			}
			items = append(items, v)
		}
		return nil
	})
	return items, err
}
