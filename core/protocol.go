package core

// Parsed is what a Protocol extracted from one packet.
type Parsed struct {
	Data   any
	Msg    map[string]any // 报文摘要, 过滤器里的 msg
	Fields map[string]any // 字段值, 过滤器里的 fields
	Vars   map[string]any // 解码变量, 过滤器里的 vars
}

// Protocol turns a framed packet into a decoded value. ok is false when the packet does not belong to it.
type Protocol interface {
	Name() string
	Parse(packet []byte) (parsed *Parsed, ok bool)
}
