package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMultipleWrites(t *testing.T) {
	s0 := []byte("the ")
	s1 := []byte("quick")
	trg := make([]byte, 9)
	bw := NewByteWriter(trg)

	n, err := bw.Write(s0)
	assert.Nil(t, err)
	assert.Equal(t, len(s0), n)

	n, err = bw.Write(s1)
	assert.Nil(t, err)
	assert.Equal(t, len(s1), n)

	assert.Equal(t, "the quick", string(bw.Bytes()))
	assert.Equal(t, 9, bw.Len())
}

func TestOverflowRefused(t *testing.T) {
	trg := make([]byte, 4)
	bw := NewByteWriter(trg)

	n, err := bw.Write([]byte("ab"))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = bw.Write([]byte("cde"))
	assert.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "ab", string(bw.Bytes()))
	assert.Equal(t, []byte{'a', 'b', 0, 0}, trg)
}

func TestOverwriteSubslice(t *testing.T) {
	s0 := []byte{0x01, 0x02, 0x03, 0x04}

	bw := NewByteWriter(s0[1:3])
	n, err := bw.Write([]byte{0xff, 0xfe})
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x01, 0xff, 0xfe, 0x04}, s0)

	bw.Reset()
	assert.Equal(t, 0, bw.Len())
}
