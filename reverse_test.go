package reverser

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestTransform(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"hello", "hello"},
		{"the quick fox", "fox quick the"},
		{"a  b", "b  a"},
		{"a b c d", "d c b a"},
		{" ab", "ab "},
		{"ab ", " ab"},
		{" a b ", " b a "},
		{"   ", "   "},
		{" ", " "},
		{"x", "x"},
		{"one  two   three", "three   two  one"},
		{"tab\tis not\tspace", "not\tspace tab\tis"},
	}
	for _, c := range cases {
		p := []byte(c.in)
		Transform(p)
		assert.Equal(t, c.out, string(p), "transform of %q", c.in)
	}
}

func TestTransformEmpty(t *testing.T) {
	Transform(nil)
	p := []byte{}
	Transform(p)
	assert.Equal(t, 0, len(p))
}

func TestTransformTwiceRestores(t *testing.T) {
	for _, in := range []string{"the quick brown fox", " leading", "trailing ", "a  b   c", "single"} {
		p := []byte(in)
		Transform(p)
		Transform(p)
		assert.Equal(t, in, string(p))
	}
}

func TestTransformSubrange(t *testing.T) {
	p := []byte("one two|untouched")
	Transform(p[:7])
	assert.Equal(t, "two one|untouched", string(p))
}

func benchmarkTransform(words int, b *testing.B) {
	var p []byte
	for i := 0; i < words; i++ {
		p = append(p, "lorem ipsum "...)
	}
	b.SetBytes(int64(len(p)))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Transform(p)
	}
}
func BenchmarkTransform_16(b *testing.B)   { benchmarkTransform(16, b) }
func BenchmarkTransform_1024(b *testing.B) { benchmarkTransform(1024, b) }
