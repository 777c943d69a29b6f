package reverser

import (
	"context"
	"github.com/quic-go/quic-go"
	"net"
	"time"
)

// quicAccepter presents the first stream of every accepted quic connection as a net.Conn.
//
type quicAccepter struct {
	listener *quic.Listener
}

func (self *quicAccepter) Accept() (net.Conn, error) {
	session, err := self.listener.Accept(context.Background())
	if err != nil {
		return nil, err
	}
	stream, err := session.AcceptStream(context.Background())
	if err != nil {
		_ = session.CloseWithError(0, "")
		return nil, err
	}
	return &quicConn{session, stream}, nil
}

func (self *quicAccepter) Close() error {
	return self.listener.Close()
}

func (self *quicAccepter) Addr() net.Addr {
	return self.listener.Addr()
}

type quicConn struct {
	session quic.Connection
	stream  quic.Stream
}

func (self *quicConn) Read(p []byte) (int, error) {
	return self.stream.Read(p)
}

func (self *quicConn) Write(p []byte) (int, error) {
	return self.stream.Write(p)
}

func (self *quicConn) Close() error {
	self.stream.CancelRead(0)
	if err := self.stream.Close(); err != nil {
		_ = self.session.CloseWithError(0, "")
		return err
	}
	return self.session.CloseWithError(0, "")
}

func (self *quicConn) LocalAddr() net.Addr {
	return self.session.LocalAddr()
}

func (self *quicConn) RemoteAddr() net.Addr {
	return self.session.RemoteAddr()
}

func (self *quicConn) SetDeadline(t time.Time) error {
	return self.stream.SetDeadline(t)
}

func (self *quicConn) SetReadDeadline(t time.Time) error {
	return self.stream.SetReadDeadline(t)
}

func (self *quicConn) SetWriteDeadline(t time.Time) error {
	return self.stream.SetWriteDeadline(t)
}
