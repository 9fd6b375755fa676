package encoder

import (
	"github.com/kemu-studio/bjson/internal/options"
	"github.com/kemu-studio/bjson/internal/pool"
)

// Option configures an Encoder at construction time.
type Option = options.Option[*Encoder]

// WithMaxDepth overrides the maximum container nesting depth (default
// format.MaxDepth).
func WithMaxDepth(depth int) Option {
	return options.NoError(func(e *Encoder) {
		e.maxDepth = depth
	})
}

// WithInitialBufferSize overrides the initial capacity of the encoder's
// output buffer. Has no effect if combined with WithBufferPool.
func WithInitialBufferSize(size int) Option {
	return options.NoError(func(e *Encoder) {
		if e.pool != nil {
			return
		}
		e.buf = pool.NewByteBuffer(size)
	})
}

// WithBufferPool sources the encoder's output buffer from p instead of
// allocating a fresh one, and returns it to p on Release. This is the
// idiomatic analogue of the reference implementation's caller-supplied
// memory-function hook: the encoder never manages allocation itself, it
// is handed a buffer (or a source of them) to grow into.
func WithBufferPool(p *pool.ByteBufferPool) Option {
	return options.NoError(func(e *Encoder) {
		e.pool = p
		e.buf = p.Get()
	})
}
