package itch

import (
	"cloud.google.com/go/civil"
)

// Option is a configuration option for a Stream.
type Option interface {
	apply(*options)
}

type options struct {
	logger           Logger
	lengthPrefixSize int
	maxMessages      uint64
	registry         *Registry
	session          civil.Date
	processorCount   int
	bufferSize       int
}

// defaultOptions are the default options for a stream.
// Don't change this in a backward incompatible way!
func defaultOptions() *options {
	return &options{
		logger:           DefaultLogger(),
		lengthPrefixSize: DefaultLengthPrefixSize,
		maxMessages:      0,
		registry:         DefaultRegistry(),
		processorCount:   1,
		bufferSize:       1024,
	}
}

type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(o *options) {
	fo.f(o)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{f: f}
}

// WithLogger configures the logger
func WithLogger(logger Logger) Option {
	return newFuncOption(func(o *options) {
		o.logger = logger
	})
}

// WithLengthPrefixSize configures the width of the big-endian length
// prefix in bytes. The standard feeds use 2.
func WithLengthPrefixSize(size int) Option {
	return newFuncOption(func(o *options) {
		o.lengthPrefixSize = size
	})
}

// WithMaxMessages caps how many frames the stream processes. Zero, the
// default, means unbounded.
func WithMaxMessages(n uint64) Option {
	return newFuncOption(func(o *options) {
		o.maxMessages = n
	})
}

// WithRegistry configures which message type specs are active.
func WithRegistry(registry *Registry) Option {
	return newFuncOption(func(o *options) {
		if registry != nil {
			o.registry = registry
		}
	})
}

// WithSessionDate configures the trading session date that
// seconds-past-midnight timestamps are anchored to.
func WithSessionDate(date civil.Date) Option {
	return newFuncOption(func(o *options) {
		o.session = date
	})
}

// WithProcessors configures how many goroutines decode frames. The
// default of 1 decodes sequentially on the caller's goroutine. With more
// than 1, frames are decoded in parallel but records are still delivered
// in stream order: sequence indices are assigned at the frame reader and
// outputs are re-ordered before Next returns them.
func WithProcessors(count int) Option {
	return newFuncOption(func(o *options) {
		if count > 0 {
			o.processorCount = count
		}
	})
}

// WithBufferSize sets the size of the channels between the pipeline
// stages when processors > 1.
func WithBufferSize(size int) Option {
	return newFuncOption(func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	})
}
