package tcp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vuuvv/errors"
	"go.uber.org/zap"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/log"
	"github.com/vuuvv/vdplay/metrics"
	"github.com/vuuvv/vdplay/utils"
)

const (
	cleanInterval   = 5 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Handler receives every scan result together with the peer it came from.
type Handler func(peer string, result *core.ScanResult) error

// Server 监听 TCP, 每个连接按 dplay 分帧规则解码
type Server struct {
	config           *core.Config
	listener         net.Listener
	connections      sync.Map
	wg               sync.WaitGroup
	ctx              context.Context
	cancel           context.CancelFunc
	connectionCounts int32
	handle           Handler
}

func NewTCPServer(config *core.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) MessageHandle(fn Handler) {
	s.handle = fn
}

// Addr is the bound address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the address without accepting yet.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.TCP.Address)
	if err != nil {
		return errors.Wrapf(err, "failed to start listener on %s", s.config.TCP.Address)
	}
	s.listener = listener
	log.Info("TCP server start", zap.String("addr", listener.Addr().String()))
	return nil
}

// Start 启动服务器, 阻塞直到 Stop
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.wg.Add(1)
	go s.connectionCleaner()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
				log.Warn(errors.Wrap(err, "Accept error"))
				continue
			}
		}

		if !s.acceptConnection() {
			log.Warn("Max connections reached, rejecting", zap.String("addr", conn.RemoteAddr().String()))
			utils.SafeClose(conn)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) acceptConnection() bool {
	for {
		current := atomic.LoadInt32(&s.connectionCounts)
		if current >= int32(s.config.TCP.MaxConnections) {
			return false
		}
		if atomic.CompareAndSwapInt32(&s.connectionCounts, current, current+1) {
			return true
		}
	}
}

func (s *Server) releaseConnection() {
	atomic.AddInt32(&s.connectionCounts, -1)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.releaseConnection()
	defer utils.SafeClose(conn)
	defer utils.NormalRecover()

	err := utils.OptimalTcpConn(conn, s.config.TCP.ReadBufferSize, s.config.TCP.WriteBufferSize)
	if err != nil {
		log.Warn(errors.Wrap(err, "OptimalTcpConn fail"))
		return
	}

	c := NewConnection(s, conn)
	defer s.RemoveConnection(c)
	if err = c.Scan(); err != nil {
		select {
		case <-c.ctx.Done():
		default:
			log.Warn(errors.Wrap(err, "Scan fail"), c.zapFields()...)
		}
	}
}

func (s *Server) AddConnection(conn *Connection) {
	s.connections.Store(conn.key, conn)
	metrics.ConnectionOpened(TransportTCP)
}

func (s *Server) RemoveConnection(conn *Connection) {
	if _, ok := s.connections.LoadAndDelete(conn.key); ok {
		metrics.ConnectionClosed(TransportTCP)
	}
}

func (s *Server) GetConnection(key string) *Connection {
	conn, ok := s.connections.Load(key)
	if !ok {
		return nil
	}
	return conn.(*Connection)
}

// connectionCleaner 关闭长时间没有收到数据的连接
func (s *Server) connectionCleaner() {
	defer s.wg.Done()
	defer utils.NormalRecover()
	ticker := time.NewTicker(cleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.closeIdle(time.Now())
		}
	}
}

func (s *Server) closeIdle(now time.Time) int {
	idle := s.config.TCP.Idle()
	count, closed := 0, 0
	s.connections.Range(func(key, value any) bool {
		conn, ok := value.(*Connection)
		if !ok {
			return true
		}
		count++
		if now.Sub(conn.GetLastActiveTime()) > idle {
			log.Info("Idle timeout, closing connection", conn.zapFields()...)
			conn.Close()
			closed++
		}
		return true
	})
	log.Debug("Active connections", zap.Int("count", count), zap.Int("closed", closed))
	return closed
}

// Stop 停止服务器
func (s *Server) Stop() error {
	log.Info("Stopping TCP server")
	s.cancel()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			log.Warn(errors.Wrap(err, "Error closing listener"))
		}
	}

	s.connections.Range(func(key, value any) bool {
		if conn, ok := value.(*Connection); ok {
			conn.Close()
		}
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Server shutdown complete")
		return nil
	case <-time.After(shutdownTimeout):
		return errors.Errorf("shutdown timeout")
	}
}
