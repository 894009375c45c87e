package utils

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/vuuvv/errors"
	"golang.org/x/exp/constraints"
)

const (
	PaddingLeft  = "left"
	PaddingRight = "right"
)

func Uint64ToBytes[T constraints.Integer](u T, size int, order binary.ByteOrder) []byte {
	data := make([]byte, 8)
	order.PutUint64(data, uint64(u))
	if size <= 0 || size > 8 {
		size = 8
	}
	if order == binary.LittleEndian {
		return data[:size]
	}
	return data[8-size:] // 默认大端
}

// ResizeBytes 截断或填充到 size 个字节, size < 0 时原样返回
func ResizeBytes(data []byte, size int, pad byte, position string) []byte {
	if size < 0 || len(data) == size {
		return data
	}
	if len(data) > size {
		return data[:size]
	}
	padding := make([]byte, size-len(data))
	for i := range padding {
		padding[i] = pad
	}
	if position == PaddingLeft {
		return append(padding, data...)
	}
	return append(append(make([]byte, 0, size), data...), padding...)
}

var numberBases = map[string]int{"b": 2, "o": 8, "d": 10}

// ParseTValue parses a typed literal T'xxx' into bytes. T is one of b, o, d, x, h, s;
// a bare string is hex. size < 0 keeps the natural length of hex and string literals.
func ParseTValue(input string, size int, order binary.ByteOrder) ([]byte, error) {
	typeID, body := "h", input
	if len(input) >= 3 && input[1] == '\'' && input[len(input)-1] == '\'' {
		typeID = strings.ToLower(input[:1])
		body = input[2 : len(input)-1]
	}

	if base, ok := numberBases[typeID]; ok {
		digits := body
		switch typeID {
		case "b":
			digits = strings.TrimPrefix(strings.TrimPrefix(digits, "0b"), "b")
		case "o":
			digits = strings.TrimPrefix(digits, "0o")
		}
		if base == 10 {
			i, err := strconv.ParseInt(digits, base, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid %s'%s'", typeID, body)
			}
			return Uint64ToBytes(i, size, order), nil
		}
		u, err := strconv.ParseUint(digits, base, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s'%s'", typeID, body)
		}
		return Uint64ToBytes(u, size, order), nil
	}

	switch typeID {
	case "x", "h":
		digits := strings.TrimPrefix(strings.TrimPrefix(body, "0x"), "0X")
		if len(digits)%2 != 0 {
			digits = "0" + digits // 补齐半个字节
		}
		value, err := hex.DecodeString(digits)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid hex %s'%s'", typeID, body)
		}
		return ResizeBytes(value, size, 0, PaddingRight), nil
	case "s":
		return ResizeBytes([]byte(body), size, 0, PaddingRight), nil
	}
	return nil, errors.Errorf("unrecognized type identifier: %s. Expected b, o, d, x, h, or s.", typeID)
}
