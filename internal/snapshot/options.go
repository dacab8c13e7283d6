package snapshot

import "log/slog"

// Option customizes store construction and the async writer.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	capacity int
	onResult func(err error)
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default(), capacity: 64}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for backend diagnostics and sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCapacity bounds the async writer queue.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithResultHook is called after every async save with its error, if any.
func WithResultHook(fn func(err error)) Option {
	return func(o *options) { o.onResult = fn }
}
