package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFraming        = "dplay"
	DefaultHistorySize    = 10
	DefaultBufferSize     = 4096
	DefaultMaxConnections = 1024
	DefaultIdleTimeout    = 5 * time.Minute
)

type FramingConfig struct {
	Type    string    `yaml:"type"`
	Options yaml.Node `yaml:"options"`
}

// ListenerConfig is shared by the tcp and udp listeners. Zero values take the defaults.
type ListenerConfig struct {
	Address         string `yaml:"address"`
	ReadBufferSize  int    `yaml:"read_buffer_size"`
	WriteBufferSize int    `yaml:"write_buffer_size"`
	MaxConnections  int    `yaml:"max_connections"`
	IdleTimeout     string `yaml:"idle_timeout"` // 例如 30s, 5m
	idleTimeout     time.Duration
}

func (this *ListenerConfig) Setup() error {
	if this.ReadBufferSize <= 0 {
		this.ReadBufferSize = DefaultBufferSize
	}
	if this.WriteBufferSize <= 0 {
		this.WriteBufferSize = DefaultBufferSize
	}
	if this.MaxConnections <= 0 {
		this.MaxConnections = DefaultMaxConnections
	}
	this.idleTimeout = DefaultIdleTimeout
	if this.IdleTimeout != "" {
		d, err := cast.ToDurationE(this.IdleTimeout)
		if err != nil {
			return errors.Wrapf(err, "invalid idle_timeout: %s", this.IdleTimeout)
		}
		this.idleTimeout = d
	}
	return nil
}

func (this *ListenerConfig) Idle() time.Duration {
	if this.idleTimeout <= 0 {
		return DefaultIdleTimeout
	}
	return this.idleTimeout
}

type Config struct {
	Heuristics     *bool          `yaml:"heuristics"` // 默认开启, 关闭后只识别带 play 标记的报文
	Filter         string         `yaml:"filter"`     // CEL 表达式
	Framing        FramingConfig  `yaml:"framing"`
	HistorySize    int            `yaml:"history_size"`
	TCP            ListenerConfig `yaml:"tcp"`
	UDP            ListenerConfig `yaml:"udp"`
	MetricsAddress string         `yaml:"metrics_address"`

	filter      *Filter
	framingRule FramingRule
}

func NewConfig() *Config {
	return &Config{}
}

// ParseConfig reads a YAML document and sets it up.
func ParseConfig(data []byte) (*Config, error) {
	config := NewConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := config.Setup(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig picks the decoder from the file extension: .toml, otherwise YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = tomlToYaml(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return config, nil
}

// tomlToYaml goes through a generic map so the framing options stay a yaml.Node.
func tomlToYaml(data []byte) ([]byte, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errors.WithStack(err)
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func (this *Config) Setup() (err error) {
	if this.Framing.Type == "" {
		this.Framing.Type = DefaultFraming
	}
	if this.HistorySize <= 0 {
		this.HistorySize = DefaultHistorySize
	}
	if err = this.TCP.Setup(); err != nil {
		return errors.Wrap(err, "tcp")
	}
	if err = this.UDP.Setup(); err != nil {
		return errors.Wrap(err, "udp")
	}

	this.filter = nil
	if strings.TrimSpace(this.Filter) != "" {
		if this.filter, err = CompileFilter(this.Filter); err != nil {
			return err
		}
	}

	this.framingRule, err = FramingRuleDecode(this.Framing.Type, &this.Framing.Options)
	if err != nil {
		return errors.Wrapf(err, "framing %s", this.Framing.Type)
	}
	return nil
}

// Set overrides a single key, value is coerced to the key's type. Setup must be called again afterwards.
func (this *Config) Set(key, value string) (err error) {
	switch key {
	case "heuristics":
		var b bool
		if b, err = cast.ToBoolE(value); err == nil {
			this.Heuristics = &b
		}
	case "filter":
		this.Filter = value
	case "framing", "framing.type":
		this.Framing.Type = value
	case "history_size":
		this.HistorySize, err = cast.ToIntE(value)
	case "metrics_address":
		this.MetricsAddress = value
	default:
		prefix, sub, ok := strings.Cut(key, ".")
		if !ok {
			return errors.Errorf("unknown config key: %s", key)
		}
		var l *ListenerConfig
		switch prefix {
		case "tcp":
			l = &this.TCP
		case "udp":
			l = &this.UDP
		default:
			return errors.Errorf("unknown config key: %s", key)
		}
		err = l.set(sub, value)
	}
	if err != nil {
		return errors.Wrapf(err, "config %s=%s", key, value)
	}
	return nil
}

func (this *ListenerConfig) set(key, value string) (err error) {
	switch key {
	case "address":
		this.Address = value
	case "read_buffer_size":
		this.ReadBufferSize, err = cast.ToIntE(value)
	case "write_buffer_size":
		this.WriteBufferSize, err = cast.ToIntE(value)
	case "max_connections":
		this.MaxConnections, err = cast.ToIntE(value)
	case "idle_timeout":
		this.IdleTimeout = value
	default:
		return errors.Errorf("unknown listener key: %s", key)
	}
	return err
}

func (this *Config) UseHeuristics() bool {
	return this.Heuristics == nil || *this.Heuristics
}

func (this *Config) GetFilter() *Filter {
	return this.filter
}

func (this *Config) GetFramingRule() FramingRule {
	return this.framingRule
}
