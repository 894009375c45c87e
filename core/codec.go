package core

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"github.com/vuuvv/errors"

	"github.com/vuuvv/vdplay/utils"
)

// MaxTokenSize bounds one framed packet. The size word of a message carries 20 bits.
const MaxTokenSize = 1<<20 + 64

var ErrNotRecognized = errors.New("packet not recognized")

type ScanResult struct {
	Abandoned   bool      `json:"abandoned,omitempty"` // 被分帧规则丢弃的脏数据
	Packet      []byte    `json:"packet,omitempty"`
	Protocol    string    `json:"protocol,omitempty"`
	Data        any       `json:"data,omitempty"`
	Filtered    bool      `json:"filtered,omitempty"` // 过滤器没有命中
	ScanError   error     `json:"scanError,omitempty"`
	HandleError error     `json:"handleError,omitempty"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
}

type ScanResultHandler func(result *ScanResult) error

// Codec frames a stream, decodes every packet with one Protocol and applies the filter.
type Codec struct {
	protocol Protocol
	config   *Config
	stream   io.Reader
	history  *utils.Ring[ScanResult]
}

func NewCodec(protocol Protocol) *Codec {
	return &Codec{
		protocol: protocol,
		history:  utils.NewRing[ScanResult](DefaultHistorySize),
	}
}

func (this *Codec) Config(config *Config) *Codec {
	this.config = config
	if config != nil && config.HistorySize > 0 && config.HistorySize != this.history.Cap() {
		this.history = utils.NewRing[ScanResult](config.HistorySize)
	}
	return this
}

func (this *Codec) Stream(stream io.Reader) *Codec {
	this.stream = stream
	return this
}

// Histories returns the most recent results, oldest first.
func (this *Codec) Histories() []*ScanResult {
	return this.history.All()
}

func (this *Codec) Scan(fn ScanResultHandler) error {
	if this.stream == nil {
		return errors.New("Codec.Scan: no stream")
	}
	if this.config == nil || this.config.GetFramingRule() == nil {
		return errors.New("Codec.Scan: no framing rule configured")
	}

	var abandoned bool
	scanner := bufio.NewScanner(this.stream)
	scanner.Buffer(make([]byte, DefaultBufferSize), MaxTokenSize)
	scanner.Split(this.splitter(this.config.GetFramingRule(), &abandoned))

	for scanner.Scan() {
		// scanner 会复用缓冲区, history 里必须是拷贝
		packet := bytes.Clone(scanner.Bytes())
		if abandoned {
			this.emit(&ScanResult{Abandoned: true, Packet: packet, Start: time.Now()}, fn)
			continue
		}
		this.emit(this.parse(packet), fn)
	}

	if err := scanner.Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Datagram decodes one packet of a packet oriented transport, no framing involved.
func (this *Codec) Datagram(packet []byte, fn ScanResultHandler) *ScanResult {
	result := this.parse(bytes.Clone(packet))
	this.emit(result, fn)
	return result
}

func (this *Codec) parse(packet []byte) *ScanResult {
	result := &ScanResult{Packet: packet, Start: time.Now(), Protocol: this.protocol.Name()}
	parsed, ok := this.protocol.Parse(packet)
	if !ok {
		result.ScanError = ErrNotRecognized
		return result
	}
	result.Data = parsed.Data

	if this.config == nil || this.config.GetFilter() == nil {
		return result
	}
	matched, err := this.config.GetFilter().Match(parsed.Msg, parsed.Fields, parsed.Vars)
	if err != nil {
		result.ScanError = err
	}
	result.Filtered = !matched
	return result
}

func (this *Codec) emit(result *ScanResult, fn ScanResultHandler) {
	this.history.Add(result)
	// 因为是指针,所以后面的修改会影响history中的数据
	if fn != nil {
		if err := fn(result); err != nil {
			result.HandleError = err
		}
	}
	result.End = time.Now()
}

func (this *Codec) splitter(rule FramingRule, abandoned *bool) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if len(data) == 0 {
			return 0, nil, nil
		}
		res := rule.Split(data, atEOF)
		if res == nil {
			if atEOF {
				// 流结束时剩下的不完整报文
				*abandoned = true
				return len(data), data, nil
			}
			return 0, nil, nil
		}
		if res.Error != nil {
			return 0, nil, res.Error
		}
		*abandoned = res.Abandoned
		return res.Advance, res.Token, nil
	}
}
