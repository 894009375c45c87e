package framing

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/vuuvv/errors"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/utils"
)

const Text = "hexline"

const defaultMaxLineLen = 2*maxMessageSize + 64

// TextRule reads a text capture, one datagram per line written as hex.
// Blank lines and comment lines are skipped, lines that are not hex are abandoned.
type TextRule struct {
	Comment string `yaml:"comment"` // 注释前缀, 默认 #
	MaxLen  int    `yaml:"max_len"`
}

func (this *TextRule) Setup() error {
	if this.Comment == "" {
		this.Comment = "#"
	}
	if this.MaxLen <= 0 {
		this.MaxLen = defaultMaxLineLen
	}
	return nil
}

func (this *TextRule) Split(data []byte, atEOF bool) *core.FramingRuleMatchResult {
	idx := bytes.IndexByte(data, '\n')
	advance := idx + 1
	if idx < 0 {
		if len(data) > this.MaxLen {
			return core.ErrorFramingRuleMatchResult(errors.Errorf("hex line exceeds max length %d", this.MaxLen))
		}
		if !atEOF {
			return nil
		}
		// 最后一行没有换行符
		idx, advance = len(data), len(data)
	}

	line := strings.TrimSpace(string(data[:idx]))
	if line == "" || strings.HasPrefix(line, this.Comment) {
		return &core.FramingRuleMatchResult{Advance: advance}
	}

	packet, err := utils.ParseTValue(compactHex(line), -1, binary.BigEndian)
	if err != nil || len(packet) == 0 {
		return core.AbandonFramingRuleMatchResult(advance, data)
	}
	return core.NewFramingRuleMatchResult(advance, packet)
}

// compactHex drops the separators hex dump tools put between bytes.
func compactHex(line string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':', '-':
			return -1
		}
		return r
	}, line)
}

func registerText() {
	core.RegisterFramingRuleDecoderFactory[TextRule](Text)
}
