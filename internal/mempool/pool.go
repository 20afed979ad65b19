// Package mempool pools the scratch buffers of the per-page image passes.
package mempool

import "sync"

// Pool is a sized pool of []T buffers. Buffers are grouped in size classes
// so pages of similar dimensions share them.
type Pool[T any] struct {
	classes sync.Map // key: size class (int), value: *sync.Pool
}

var (
	// Ints holds label maps and score planes.
	Ints = &Pool[int]{}
	// Int64s holds integral images.
	Int64s = &Pool[int64]{}
)

// sizeClass rounds n up to the next multiple of 1024, with 1024 as minimum.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func (p *Pool[T]) class(cls int) *sync.Pool {
	sp, _ := p.classes.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]T, cls) }})
	return sp.(*sync.Pool) //nolint:forcetypeassert // only *sync.Pool values are stored
}

// Get returns a zeroed buffer of length n. The caller hands it back with Put.
func (p *Pool[T]) Get(n int) []T {
	cls := sizeClass(n)
	buf, ok := p.class(cls).Get().([]T)
	if !ok || cap(buf) < cls {
		buf = make([]T, cls)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// Put returns buf to the pool. It is safe to pass a nil slice.
func (p *Pool[T]) Put(buf []T) {
	if buf == nil {
		return
	}
	// Only full classes go back, so every pooled buffer fills its class.
	cls := cap(buf) / 1024 * 1024
	if cls < 1024 {
		return
	}
	p.class(cls).Put(buf[:cls]) //nolint:staticcheck // slices are small headers
}
