package reverser

import (
	"context"
	"github.com/openziti/reverser/util"
	"github.com/pkg/errors"
	"io"
	"sync"
)

// Buffer is the single-slot store behind an Endpoint. Each successful write replaces the previous contents (unread
// bytes included) with the word-reversed form of the new payload. Readers drain the current contents through readPtr.
//
// storage, end and readPtr are only touched while holding lock. ready is bound to lock and is broadcast on every
// successful write, and on release.
//
type Buffer struct {
	lock     *sync.Mutex
	ready    *sync.Cond
	storage  []byte
	capacity int
	end      int
	readPtr  int
	released bool
	staging  *sync.Pool
}

// Allocate reserves a buffer of capacity bytes. A capacity the runtime cannot represent surfaces as ErrAllocation;
// running out of memory outright is fatal and is not reported here.
//
func Allocate(capacity int) (buf *Buffer, err error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrAllocation, "invalid capacity [%d]", capacity)
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = errors.Wrapf(ErrAllocation, "unable to reserve [%d] bytes (%v)", capacity, r)
		}
	}()
	lock := new(sync.Mutex)
	buf = &Buffer{
		lock:     lock,
		ready:    sync.NewCond(lock),
		storage:  make([]byte, capacity),
		capacity: capacity,
		staging:  new(sync.Pool),
	}
	buf.staging.New = func() interface{} {
		return make([]byte, capacity)
	}
	return buf, nil
}

func (self *Buffer) Release() error {
	self.lock.Lock()
	defer self.lock.Unlock()

	if self.released {
		return ErrReleased
	}
	self.released = true
	self.storage = nil
	self.end = 0
	self.readPtr = 0
	self.ready.Broadcast()
	return nil
}

func (self *Buffer) Cap() int {
	return self.capacity
}

// Len returns the number of unread bytes.
func (self *Buffer) Len() int {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.end - self.readPtr
}

func (self *Buffer) Write(p []byte) (int, error) {
	if len(p) > self.capacity {
		return 0, errors.Wrapf(ErrTooLarge, "[%d > %d]", len(p), self.capacity)
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	if self.released {
		return 0, ErrReleased
	}
	self.commit(p)
	return len(p), nil
}

// WriteFrom transfers exactly sz bytes from src into the buffer. The transfer happens before the lock is taken, so a
// slow or failing src never holds up readers, and a failed transfer leaves the buffer untouched.
//
func (self *Buffer) WriteFrom(src io.Reader, sz int) (int, error) {
	if sz < 0 {
		return 0, errors.Wrapf(ErrTransferFault, "invalid size [%d]", sz)
	}
	if sz > self.capacity {
		return 0, errors.Wrapf(ErrTooLarge, "[%d > %d]", sz, self.capacity)
	}

	staging := self.staging.Get().([]byte)
	defer self.staging.Put(staging)

	if n, err := io.ReadFull(src, staging[:sz]); err != nil {
		return 0, errors.Wrapf(ErrTransferFault, "short transfer [%d != %d] (%v)", n, sz, err)
	}

	self.lock.Lock()
	defer self.lock.Unlock()

	if self.released {
		return 0, ErrReleased
	}
	self.commit(staging[:sz])
	return sz, nil
}

func (self *Buffer) commit(p []byte) {
	self.end = copy(self.storage, p)
	self.readPtr = 0
	if self.end > 0 {
		Transform(self.storage[:self.end])
	}
	self.ready.Broadcast()
}

func (self *Buffer) Read(ctx context.Context, p []byte, block bool) (int, error) {
	return self.ReadTo(ctx, util.NewByteWriter(p), len(p), block)
}

// ReadTo delivers up to max unread bytes to dst. When nothing is unread it either fails with ErrWouldBlock, or (when
// block is set) waits until a write arrives, ctx is cancelled (ErrInterrupted) or the buffer is released.
//
// The cursor only advances when dst accepts every byte offered to it.
//
func (self *Buffer) ReadTo(ctx context.Context, dst io.Writer, max int, block bool) (int, error) {
	self.lock.Lock()
	defer self.lock.Unlock()

	if self.released {
		return 0, ErrReleased
	}

	if self.readPtr == self.end {
		if !block {
			return 0, ErrWouldBlock
		}
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrapf(ErrInterrupted, "%v", err)
		}
		stop := context.AfterFunc(ctx, func() {
			self.lock.Lock()
			self.ready.Broadcast()
			self.lock.Unlock()
		})
		defer stop()

		for self.readPtr == self.end {
			self.ready.Wait()
			if self.released {
				return 0, ErrReleased
			}
			if err := ctx.Err(); err != nil {
				return 0, errors.Wrapf(ErrInterrupted, "%v", err)
			}
		}
	}

	n := self.end - self.readPtr
	if max < n {
		n = max
	}
	if n < 1 {
		return 0, nil
	}
	written, err := dst.Write(self.storage[self.readPtr : self.readPtr+n])
	if err != nil {
		return 0, errors.Wrapf(ErrTransferFault, "(%v)", err)
	}
	if written != n {
		return 0, errors.Wrapf(ErrTransferFault, "short transfer [%d != %d]", written, n)
	}
	self.readPtr += n
	return n, nil
}
