package reverser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"sync"
)

// Bridge couples a stream connection to ep until the connection reaches EOF, either side fails, or ctx is cancelled.
// Every newline-terminated line read from conn becomes one write to ep; every read drained from ep is sent back to
// conn followed by a newline. A line that does not fit the endpoint is answered with an "error (...)" line.
//
// Bridge closes conn before returning. It does not close ep.
//
func Bridge(ctx context.Context, conn io.ReadWriteCloser, ep *Endpoint) error {
	defer func() { _ = conn.Close() }()

	b := &bridge{conn: conn, ep: ep, lock: new(sync.Mutex)}

	txCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	txDone := make(chan error, 1)
	go func() {
		err := b.txer(txCtx)
		if err != nil {
			_ = conn.Close()
		}
		txDone <- err
	}()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	rxErr := b.rxer()
	cancel()
	if txErr := <-txDone; txErr != nil {
		return errors.Wrap(txErr, "tx")
	}
	if ctx.Err() != nil {
		return nil
	}
	if rxErr != nil {
		return errors.Wrap(rxErr, "rx")
	}
	return b.flush()
}

type bridge struct {
	conn io.ReadWriteCloser
	ep   *Endpoint
	lock *sync.Mutex
}

func (self *bridge) rxer() error {
	reader := bufio.NewReader(self.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSuffix(bytes.TrimSuffix(line, []byte{'\n'}), []byte{'\r'})
			if _, werr := self.ep.Write(line); werr != nil {
				if !errors.Is(werr, ErrTooLarge) {
					return werr
				}
				logrus.Warnf("[%s] rejected line (%v)", self.ep, werr)
				if serr := self.send([]byte(fmt.Sprintf("error (%v)", werr))); serr != nil {
					return serr
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (self *bridge) txer(ctx context.Context) error {
	buf := make([]byte, self.ep.buffer.Cap())
	for {
		n, err := self.ep.ReadContext(ctx, buf, false)
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				return nil
			}
			return err
		}
		if err := self.send(buf[:n]); err != nil {
			return err
		}
	}
}

// flush sends whatever the final write left unread once the connection has reached EOF.
func (self *bridge) flush() error {
	buf := make([]byte, self.ep.buffer.Cap())
	for {
		n, err := self.ep.ReadContext(context.Background(), buf, true)
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return nil
			}
			return err
		}
		if err := self.send(buf[:n]); err != nil {
			return err
		}
	}
}

func (self *bridge) send(p []byte) error {
	self.lock.Lock()
	defer self.lock.Unlock()

	out := make([]byte, 0, len(p)+1)
	out = append(append(out, p...), '\n')
	n, err := self.conn.Write(out)
	if err != nil {
		return err
	}
	if n != len(out) {
		return errors.New("short write")
	}
	return nil
}
