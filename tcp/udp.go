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
	"github.com/vuuvv/vdplay/dplay"
	"github.com/vuuvv/vdplay/log"
	"github.com/vuuvv/vdplay/utils"
)

const (
	maxDatagram     = 64 * 1024 // largest UDP payload
	maxReadFailures = 10
	minReadBackoff  = 5 * time.Millisecond
	maxReadBackoff  = time.Second
)

// UDPServer decodes every datagram on its own, enumeration traffic is unframed.
type UDPServer struct {
	config  *core.Config
	conn    net.PacketConn
	codec   *core.Codec
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
	handle  Handler
}

func NewUDPServer(config *core.Config) *UDPServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &UDPServer{
		config: config,
		codec:  core.NewCodec(dplay.NewProtocol(config)).Config(config),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (s *UDPServer) MessageHandle(fn Handler) {
	s.handle = fn
}

func (s *UDPServer) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

func (s *UDPServer) Histories() []*core.ScanResult {
	return s.codec.Histories()
}

func (s *UDPServer) Listen() error {
	conn, err := net.ListenPacket("udp", s.config.UDP.Address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.config.UDP.Address)
	}
	if err = utils.OptimalUdpConn(conn, s.config.UDP.ReadBufferSize); err != nil {
		log.Warn(errors.Wrap(err, "OptimalUdpConn fail"))
	}
	s.conn = conn
	log.Info("UDP server start", zap.String("addr", conn.LocalAddr().String()))
	return nil
}

// Start 阻塞读取直到 Stop
func (s *UDPServer) Start() error {
	if s.conn == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.started.Store(true)
	defer close(s.done)

	buf := make([]byte, maxDatagram)
	failures, backoff := 0, time.Duration(0)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err == nil {
			failures, backoff = 0, 0
			s.datagram(addr.String(), buf[:n])
			continue
		}
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}

		// 连续失败说明 socket 已经不可用, 退避后重试, 超过次数就退出
		failures++
		if failures >= maxReadFailures {
			return errors.Wrapf(err, "ReadFrom failed %d times", failures)
		}
		backoff = min(max(backoff*2, minReadBackoff), maxReadBackoff)
		log.Warn(errors.Wrap(err, "ReadFrom error"), zap.Duration("retry", backoff))
		select {
		case <-s.ctx.Done():
			return nil
		case <-time.After(backoff):
		}
	}
}

func (s *UDPServer) datagram(peer string, packet []byte) {
	defer utils.NormalRecover()
	s.codec.Datagram(packet, func(result *core.ScanResult) error {
		Observe(TransportUDP, result)
		if s.handle == nil {
			return nil
		}
		return s.handle(peer, result)
	})
}

func (s *UDPServer) Stop() error {
	var err error
	s.once.Do(func() {
		log.Info("Stopping UDP server")
		s.cancel()
		if s.conn != nil {
			err = errors.WithStack(s.conn.Close())
			if s.started.Load() {
				<-s.done
			}
		}
	})
	return err
}
