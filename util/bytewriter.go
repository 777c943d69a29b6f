package util

import (
	"github.com/pkg/errors"
)

// ByteWriter is an io.Writer over a fixed slice. A write that does not fit is refused whole.
//
type ByteWriter struct {
	buffer []byte
	pos    int
}

func NewByteWriter(buffer []byte) *ByteWriter {
	return &ByteWriter{buffer: buffer}
}

func (self *ByteWriter) Write(p []byte) (n int, err error) {
	if self.pos+len(p) > len(self.buffer) {
		return 0, errors.Errorf("short buffer [%d > %d]", self.pos+len(p), len(self.buffer))
	}
	n = copy(self.buffer[self.pos:], p)
	self.pos += n
	return n, nil
}

func (self *ByteWriter) Bytes() []byte {
	return self.buffer[:self.pos]
}

func (self *ByteWriter) Len() int {
	return self.pos
}

func (self *ByteWriter) Reset() {
	self.pos = 0
}
