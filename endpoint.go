package reverser

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"sync/atomic"
)

// Endpoint binds one Buffer to a single client connection. It satisfies io.ReadWriteCloser; Read blocks until data
// is available unless the endpoint has been switched to non-blocking mode.
//
type Endpoint struct {
	id          int32
	buffer      *Buffer
	device      *Device
	ii          InstrumentInstance
	nonblocking int32
	closed      int32
}

func (self *Endpoint) Id() int32 {
	return self.id
}

func (self *Endpoint) String() string {
	return fmt.Sprintf("endpoint_%d", self.id)
}

func (self *Endpoint) SetNonblocking(nonblocking bool) {
	var v int32
	if nonblocking {
		v = 1
	}
	atomic.StoreInt32(&self.nonblocking, v)
}

func (self *Endpoint) Read(p []byte) (int, error) {
	return self.ReadContext(context.Background(), p, atomic.LoadInt32(&self.nonblocking) == 1)
}

func (self *Endpoint) ReadContext(ctx context.Context, p []byte, nonblocking bool) (int, error) {
	if self.isClosed() {
		return 0, ErrClosed
	}
	if !nonblocking && self.buffer.Len() == 0 {
		self.ii.ReadBlocked()
	}
	n, err := self.buffer.Read(ctx, p, !nonblocking)
	if err != nil {
		if errors.Is(err, ErrReleased) {
			err = ErrClosed
		}
		self.ii.ReadError(err)
		return 0, err
	}
	self.ii.Delivered(n)
	return n, nil
}

func (self *Endpoint) Write(p []byte) (int, error) {
	if self.isClosed() {
		return 0, ErrClosed
	}
	n, err := self.buffer.Write(p)
	return self.wrote(n, err)
}

// WriteFrom replaces the endpoint's contents with exactly sz bytes read from r.
func (self *Endpoint) WriteFrom(r io.Reader, sz int) (int, error) {
	if self.isClosed() {
		return 0, ErrClosed
	}
	n, err := self.buffer.WriteFrom(r, sz)
	return self.wrote(n, err)
}

func (self *Endpoint) wrote(n int, err error) (int, error) {
	if err != nil {
		if errors.Is(err, ErrReleased) {
			err = ErrClosed
		}
		self.ii.WriteError(err)
		return 0, err
	}
	self.ii.Wrote(n)
	return n, nil
}

func (self *Endpoint) Close() error {
	if !atomic.CompareAndSwapInt32(&self.closed, 0, 1) {
		return ErrClosed
	}
	err := self.buffer.Release()
	self.device.remove(self.id)
	self.ii.Closed()
	return err
}

func (self *Endpoint) isClosed() bool {
	return atomic.LoadInt32(&self.closed) == 1
}
