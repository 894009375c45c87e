package utils

import (
	"io"
	"net"
	"time"

	"github.com/vuuvv/errors"
	"go.uber.org/zap"

	"github.com/vuuvv/vdplay/log"
)

const keepAlivePeriod = 3 * time.Minute

type localAddresser interface {
	LocalAddr() net.Addr
}

// SafeClose closes a net.Conn or net.PacketConn, logging instead of returning the error.
func SafeClose(conn io.Closer) {
	if conn == nil {
		return
	}
	addr := ""
	if c, ok := conn.(net.Conn); ok && c.RemoteAddr() != nil {
		addr = c.RemoteAddr().String()
	} else if c, ok := conn.(localAddresser); ok && c.LocalAddr() != nil {
		addr = c.LocalAddr().String() // 未连接的 udp socket 没有对端地址
	}
	log.Debug("Closing connection", zap.String("addr", addr))
	if err := conn.Close(); err != nil {
		log.Warn(errors.Wrap(err, "close error"), zap.String("addr", addr))
	}
}

// OptimalTcpConn 开启保活, 关闭 Nagle, 设置内核读写缓冲区
func OptimalTcpConn(conn net.Conn, readBufferSize, writeBufferSize int) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return errors.New("not a tcp connection")
	}
	// 对端异常断开时尽快发现半开连接
	if err := tcpConn.SetKeepAlive(true); err != nil {
		return errors.WithStack(err)
	}
	if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
		return errors.WithStack(err)
	}
	if err := tcpConn.SetNoDelay(true); err != nil {
		return errors.WithStack(err)
	}
	if err := tcpConn.SetReadBuffer(readBufferSize); err != nil {
		return errors.WithStack(err)
	}
	if err := tcpConn.SetWriteBuffer(writeBufferSize); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// OptimalUdpConn sets the kernel receive buffer of a UDP socket.
func OptimalUdpConn(conn net.PacketConn, readBufferSize int) error {
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		return errors.New("not a udp connection")
	}
	return errors.WithStack(udpConn.SetReadBuffer(readBufferSize))
}
