package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"zero size", 0, 1024},
		{"small size gets minimum", 1, 1024},
		{"exactly 1024", 1024, 1024},
		{"just over 1024", 1025, 2048},
		{"odd number", 1500, 2048},
		{"large size", 10000, 10240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizeClass(tt.input))
		})
	}
}

func TestGetReturnsZeroedBuffer(t *testing.T) {
	p := &Pool[int]{}
	buf := p.Get(3000)
	require.Len(t, buf, 3000)
	assert.GreaterOrEqual(t, cap(buf), 3072)
	for i := range buf {
		buf[i] = i + 1
	}
	p.Put(buf)

	for range 4 {
		again := p.Get(2500)
		require.Len(t, again, 2500)
		for _, v := range again {
			require.Zero(t, v)
		}
		p.Put(again)
	}
}

func TestPutIgnoresNilAndSmallBuffers(t *testing.T) {
	p := &Pool[int64]{}
	assert.NotPanics(t, func() {
		p.Put(nil)
		p.Put(make([]int64, 10))
	})
	assert.Len(t, p.Get(10), 10)
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				n := 100 + g*1000 + i
				buf := Ints.Get(n)
				assert.Len(t, buf, n)
				buf[n-1] = g
				Ints.Put(buf)
			}
		}()
	}
	wg.Wait()
}
