package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
	"github.com/vuuvv/vdplay/log"
	"github.com/vuuvv/vdplay/utils"
)

type Connection struct {
	server         *Server
	conn           net.Conn
	key            string
	lastActiveTime time.Time
	mu             sync.Mutex
	ctx            context.Context
	cancel         context.CancelFunc
	codec          *core.Codec
}

func NewConnection(server *Server, conn net.Conn) *Connection {
	ctx, cancel := context.WithCancel(server.ctx)
	c := &Connection{
		key:            utils.GenId(),
		server:         server,
		conn:           conn,
		lastActiveTime: time.Now(),
		ctx:            ctx,
		cancel:         cancel,
		codec:          core.NewCodec(dplay.NewProtocol(server.config)).Config(server.config).Stream(conn),
	}
	server.AddConnection(c)
	return c
}

func (this *Connection) Key() string {
	return this.key
}

func (this *Connection) RemoteAddr() string {
	return this.conn.RemoteAddr().String()
}

// Histories are the last results decoded on this connection.
func (this *Connection) Histories() []*core.ScanResult {
	return this.codec.Histories()
}

func (this *Connection) UpdateActiveTime() {
	this.mu.Lock()
	this.lastActiveTime = time.Now()
	this.mu.Unlock()
}

func (this *Connection) GetLastActiveTime() time.Time {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.lastActiveTime
}

// Scan blocks until the peer closes the stream or the connection is cancelled.
func (this *Connection) Scan() error {
	// 启动一个 Goroutine 来监听 Context 取消事件
	go this.checkCancel()
	defer this.cancel()

	return this.codec.Scan(this.Handle)
}

func (this *Connection) Handle(result *core.ScanResult) error {
	this.UpdateActiveTime()
	Observe(TransportTCP, result)
	if result.Abandoned && log.Enabled(zap.DebugLevel) {
		log.Debug("Abandoned bytes", this.zapFields(zap.Int("size", len(result.Packet)))...)
	}
	if this.server.handle == nil {
		return nil
	}
	return this.server.handle(this.RemoteAddr(), result)
}

func (this *Connection) checkCancel() {
	<-this.ctx.Done()
	// 强制中断阻塞的读取, 任何阻塞的 Read 立即返回超时错误
	if err := this.conn.SetReadDeadline(time.Now()); err != nil {
		log.Debug("SetReadDeadline fail", this.zapFields(zap.Error(err))...)
	}
}

func (this *Connection) zapFields(fields ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("addr", this.RemoteAddr()),
		zap.String("key", this.key),
	}, fields...)
}

func (this *Connection) Close() {
	this.cancel()
}
