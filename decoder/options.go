package decoder

import "github.com/kemu-studio/bjson/internal/options"

// Option configures a Decoder at construction time.
type Option = options.Option[*Decoder]

// WithMaxDepth overrides the maximum container nesting depth (default
// format.MaxDepth). Mainly useful to tighten the bound below the library
// default for untrusted input.
func WithMaxDepth(depth int) Option {
	return options.NoError(func(d *Decoder) {
		d.maxDepth = depth
	})
}

// WithInitialCacheSize overrides the initial capacity reserved for the
// fragment cache that buffers a length or body straddling chunk
// boundaries.
func WithInitialCacheSize(size int) Option {
	return options.NoError(func(d *Decoder) {
		d.cache = make([]byte, 0, size)
	})
}
