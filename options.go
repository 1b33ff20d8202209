package vecidx

import (
	"log/slog"

	"github.com/hupe1980/vecidx/codec"
	"github.com/hupe1980/vecidx/embedding"
)

type options struct {
	codec            codec.Codec
	numShards        int
	metricsCollector MetricsCollector
	logger           *Logger
	embedder         embedding.Embedder
}

// Option configures index construction and snapshot loading.
type Option func(*options)

// WithCodec configures the codec used for payload and metadata
// serialization in snapshots. Nil selects codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithNumShards partitions the index into n independent shards, each
// with its own lock. Writes to different shards proceed in parallel;
// queries fan out to all shards and merge.
//
// Values <= 1 disable sharding.
func WithNumShards(n int) Option {
	return func(o *options) {
		o.numShards = n
	}
}

// WithMetricsCollector configures a metrics collector. Nil disables
// metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Nil disables logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel sets a stderr text logger at the given level.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithEmbedder configures a text embedder, enabling InsertText and
// SearchText. The embedder's dimension must match the index.
func WithEmbedder(e embedding.Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.codec == nil {
		o.codec = codec.Default
	}
	return o
}
