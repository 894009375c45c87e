package core

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/spf13/cast"
	"golang.org/x/exp/constraints"
)

// Hex formats v as 0x followed by width hex digits.
func Hex[T constraints.Unsigned](v T, width int) string {
	return fmt.Sprintf("0x%0*x", width, uint64(v))
}

func ConvertBytesToInt(data []byte, byteOrder binary.ByteOrder) (uint64, error) {
	if byteOrder == binary.LittleEndian {
		return ConvertBytesToIntLE(data)
	}
	return ConvertBytesToIntBE(data)
}

func ConvertBytesToIntBE(data []byte) (uint64, error) {
	byteLen := len(data)
	if byteLen < 1 || byteLen > 8 {
		return 0, fmt.Errorf("字节长度必须在1-8之间")
	}

	var result uint64
	for i := 0; i < byteLen; i++ {
		result = (result << 8) | uint64(data[i])
	}
	return result, nil
}

func ConvertBytesToIntLE(data []byte) (uint64, error) {
	byteLen := len(data)
	if byteLen < 1 || byteLen > 8 {
		return 0, fmt.Errorf("字节长度必须在1-8之间")
	}

	var result uint64
	for i := 0; i < byteLen; i++ {
		result |= uint64(data[i]) << (i * 8)
	}
	return result, nil
}

func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return fmt.Sprintf("%+v", v)
	default:
		return cast.ToString(val)
	}
}

func ToUint64(val any) (uint64, bool) {
	switch v := val.(type) {
	case int:
		return uint64(v), true
	case int8:
		return uint64(v), true
	case int16:
		return uint64(v), true
	case int32:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	}

	s := ToString(val)
	i, err := strconv.ParseUint(s, 0, 64)
	if err == nil {
		return i, true
	}
	return 0, false
}

