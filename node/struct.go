package node

import (
	"github.com/vuuvv/vdplay/core"
)

// Struct runs fn inside a labeled subtree spanning the bytes fn consumed. The subtree is
// closed even when fn fails so the partial record stays visible.
func Struct(ctx *core.Context, label string, fn func() error) error {
	ctx.Sink.Open(label, ctx.BytePos)
	defer func() {
		ctx.Sink.Close(ctx.BytePos)
	}()
	return fn()
}
