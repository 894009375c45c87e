package log

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Logger 未设置时使用 zap 的全局 logger
func Logger() *zap.Logger {
	if logger == nil {
		return zap.L()
	}
	return logger
}

func SetLogger(l *zap.Logger) {
	logger = l
	zap.ReplaceGlobals(l)
}

// Named returns a child logger for one listener or command.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// Enabled reports whether lvl is logged, so hot paths can skip building fields.
func Enabled(lvl zapcore.Level) bool {
	return Logger().Core().Enabled(lvl)
}

// CastToError turns a panic reason or error into a message. In debug level the message
// carries the stack.
func CastToError(reason any) (string, error) {
	var err error
	switch v := reason.(type) {
	case nil:
		err = errors.NewAndSkip("Unknown Error", 2)
	case error:
		err = errors.WithStackAndSkip(v, 2)
	case string:
		err = errors.NewAndSkip(v, 2)
	case fmt.Stringer:
		err = errors.NewAndSkip(v.String(), 2)
	default:
		err = errors.NewAndSkip(cast.ToString(v), 2)
	}

	if Enabled(zap.DebugLevel) {
		return fmt.Sprintf("%+v", err), err
	}
	return err.Error(), err
}

func Error(reason any, field ...zap.Field) {
	msg, err := CastToError(reason)
	Logger().Error(msg, append(field, zap.Error(err))...)
}

func Warn(reason any, field ...zap.Field) {
	msg, err := CastToError(reason)
	Logger().Warn(msg, append(field, zap.Error(err))...)
}

func Info(msg string, field ...zap.Field) {
	Logger().Info(msg, field...)
}

func Debug(msg string, field ...zap.Field) {
	Logger().Debug(msg, field...)
}
