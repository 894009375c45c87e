package framing

import (
	"encoding/binary"

	"github.com/vuuvv/errors"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
)

const Binary = "dplay"

const (
	maxMessageSize = 0x000FFFFF
	sizeWordLen    = 4
)

// BinaryRule frames a TCP stream on the size carried in the low 20 bits of the first word.
// A word with an unknown token, or a size out of range, drops one byte and resyncs.
type BinaryRule struct {
	MinSize int `yaml:"min_size"` // 默认是玩家消息头的长度 20
	MaxSize int `yaml:"max_size"`
}

func (this *BinaryRule) Setup() error {
	if this.MinSize <= 0 {
		this.MinSize = dplay.PlayerHeaderSize
	}
	if this.MaxSize <= 0 {
		this.MaxSize = maxMessageSize
	}
	if this.MinSize < sizeWordLen {
		return errors.Errorf("BinaryRule.Setup: min_size %d is smaller than the size word", this.MinSize)
	}
	if this.MaxSize > maxMessageSize {
		return errors.Errorf("BinaryRule.Setup: max_size %d exceeds the 20 bit size field", this.MaxSize)
	}
	if this.MinSize > this.MaxSize {
		return errors.Errorf("BinaryRule.Setup: min_size %d > max_size %d", this.MinSize, this.MaxSize)
	}
	return nil
}

func (this *BinaryRule) Split(data []byte, atEOF bool) *core.FramingRuleMatchResult {
	if len(data) < sizeWordLen {
		return nil
	}

	word := binary.LittleEndian.Uint32(data)
	size := int(word & maxMessageSize)
	token := dplay.Token(word >> 20)
	if !token.Valid() || size < this.MinSize || size > this.MaxSize {
		return core.AbandonFramingRuleMatchResult(1, data) // 脏数据处理
	}

	if len(data) < size {
		return nil
	}
	return core.NewFramingRuleMatchResult(size, data[:size])
}

func registerBinary() {
	core.RegisterFramingRuleDecoderFactory[BinaryRule](Binary)
}
