package core

import (
	"maps"
	"slices"
	"sync"

	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

// FramingRuleMatchResult is what a rule decided about the head of the buffer.
// Abandoned tokens are bytes skipped while looking for the next packet.
type FramingRuleMatchResult struct {
	Abandoned bool
	Advance   int
	Token     []byte
	Error     error
}

func NewFramingRuleMatchResult(advance int, token []byte) *FramingRuleMatchResult {
	return &FramingRuleMatchResult{Advance: advance, Token: token}
}

// AbandonFramingRuleMatchResult 表示丢弃 size 个字节
func AbandonFramingRuleMatchResult(size int, data []byte) *FramingRuleMatchResult {
	return &FramingRuleMatchResult{Abandoned: true, Advance: size, Token: data[:size]}
}

func ErrorFramingRuleMatchResult(err error) *FramingRuleMatchResult {
	return &FramingRuleMatchResult{Error: err}
}

// FramingRule cuts a byte stream into packets. Split returns nil when more data is needed.
type FramingRule interface {
	Split(data []byte, atEOF bool) *FramingRuleMatchResult
	Setup() error
}

type FramingRuleDecodeFunc func(options *yaml.Node) (FramingRule, error)

var (
	framingMu    sync.RWMutex
	framingRules = make(map[string]FramingRuleDecodeFunc)
)

// RegisterFramingRuleDecoderFactory registers rule type T under name. Its options are
// decoded from the framing.options yaml node, then Setup fills the defaults.
func RegisterFramingRuleDecoderFactory[T any, PT interface {
	*T
	FramingRule
}](name string) {
	RegisterFramingRule(name, func(options *yaml.Node) (FramingRule, error) {
		rule := PT(new(T))
		if options != nil && !options.IsZero() {
			if err := options.Decode(rule); err != nil {
				return nil, errors.WithStack(err)
			}
		}
		if err := rule.Setup(); err != nil {
			return nil, err
		}
		return rule, nil
	})
}

func RegisterFramingRule(name string, fn FramingRuleDecodeFunc) {
	framingMu.Lock()
	defer framingMu.Unlock()
	framingRules[name] = fn
}

// FramingRuleNames lists the registered rules, sorted.
func FramingRuleNames() []string {
	framingMu.RLock()
	defer framingMu.RUnlock()
	return slices.Sorted(maps.Keys(framingRules))
}

func FramingRuleDecode(name string, options *yaml.Node) (FramingRule, error) {
	framingMu.RLock()
	fn, ok := framingRules[name]
	framingMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown framing rule %s, registered: %v", name, FramingRuleNames())
	}
	return fn(options)
}
