package pool

import (
	"bytes"
	"sync"
)

// BufferPool manages a pool of growable byte buffers, used for assembling
// codec output across step loops.
type BufferPool struct {
	size int       // Initial capacity of each buffer.
	pool sync.Pool // Thread-safe pool of buffers.
}

// Creates a new buffer pool with a specified initial buffer capacity.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
	}
}

// Retrieves a buffer from the pool.
func (bp *BufferPool) Get() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset() // Ensure the buffer is clean.
	return buf
}

// Returns a buffer to the pool.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	// Don't pool buffers that have grown too large.
	if buf.Cap() > bp.size*2 {
		return
	}

	buf.Reset()
	bp.pool.Put(buf)
}

// ChunkPool manages fixed-size byte slices, used as the per-step output
// chunks of the codec loops. Slices returned by Get always have the full
// configured length.
type ChunkPool struct {
	size int
	pool sync.Pool
}

// Creates a new chunk pool with the given chunk length.
func NewChunkPool(size int) *ChunkPool {
	return &ChunkPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Retrieves a chunk from the pool.
func (cp *ChunkPool) Get() []byte {
	return *(cp.pool.Get().(*[]byte))
}

// Returns a chunk to the pool. Chunks of a different length are dropped.
func (cp *ChunkPool) Put(b []byte) {
	if cap(b) != cp.size {
		return
	}
	b = b[:cp.size]
	cp.pool.Put(&b)
}
