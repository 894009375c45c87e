package utils

import (
	"go.uber.org/zap"

	"github.com/vuuvv/vdplay/log"
)

// NormalRecover 只记录 panic, 用于 defer
func NormalRecover() {
	if r := recover(); r != nil {
		log.Error(r)
	}
}

func Catch(handler func(reason any)) {
	if r := recover(); r != nil {
		log.Error(r)
		handler(r)
	}
}

// Go runs fn in a goroutine that logs instead of crashing the process.
func Go(name string, fn func()) {
	go func() {
		defer Catch(func(reason any) {
			log.Warn("goroutine stopped by panic", zap.String("goroutine", name))
		})
		fn()
	}()
}
