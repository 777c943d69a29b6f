package util

import (
	"github.com/stretchr/testify/assert"
	"math"
	"sync"
	"testing"
)

func TestSequenceNext(t *testing.T) {
	seq := NewSequence(1)
	assert.Equal(t, int32(1), seq.Next())
	assert.Equal(t, int32(2), seq.Next())
	assert.Equal(t, int32(3), seq.Next())
}

func TestSequenceWraps(t *testing.T) {
	seq := NewSequence(1)
	seq.lastValue = math.MaxInt32 - 1
	assert.Equal(t, int32(math.MaxInt32), seq.Next())
	assert.Equal(t, int32(1), seq.Next())
}

func TestSequenceConcurrent(t *testing.T) {
	seq := NewSequence(1)
	seen := make(map[int32]bool)
	var lock sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v := seq.Next()
				lock.Lock()
				seen[v] = true
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, len(seen))
}
