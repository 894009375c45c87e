package dplay

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeString decodes a NUL terminated UTF-16LE string. consumed includes the terminator.
func decodeString(data []byte) (string, int, bool) {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] != 0 || data[i+1] != 0 {
			continue
		}
		s, err := utf16le.NewDecoder().Bytes(data[:i])
		if err != nil {
			return "", 0, false
		}
		return string(s), i + 2, true
	}
	return "", 0, false
}

func readString(ctx *core.Context, name string) (string, error) {
	return node.String(ctx, name, decodeString)
}

// optionalString resolves an offset-gated string: a zero offset means absent and nothing
// is read, any other value means the string sits at the cursor.
func optionalString(ctx *core.Context, name string, offset uint32) (string, error) {
	return node.When(offset != 0, func() (string, error) {
		return readString(ctx, name)
	})
}
