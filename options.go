package tfgraph

import (
	"log/slog"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/search"
)

// Compression selects how string pools are stored in a compiled corpus.
type Compression = columnar.Compression

// Compression kinds. Uncompressed pools are mapped without copying.
const (
	CompressionNone = columnar.CompressionNone
	CompressionLZ4  = columnar.CompressionLZ4
	CompressionZSTD = columnar.CompressionZSTD
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	cacheDir         string
	noCache          bool
	forceCompile     bool
	features         []string
	compression      Compression
	parallelism      int
	searchParams     *search.Params
}

// Option configures Load and Compile.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tfgraph.BasicMetricsCollector{}
//	c, _ := tfgraph.Load(ctx, []string{"./tf"}, tfgraph.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tfgraph.NewJSONLogger(slog.LevelInfo)
//	c, _ := tfgraph.Load(ctx, locations, tfgraph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCacheDir sets the directory holding compiled builds. The default is
// .tfg/v<format version> inside the first location.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

// WithoutCache loads the feature files into memory and never reads or
// writes a compiled cache.
func WithoutCache() Option {
	return func(o *options) {
		o.noCache = true
	}
}

// WithForceCompile compiles a new build even if one is published.
func WithForceCompile() Option {
	return func(o *options) {
		o.forceCompile = true
	}
}

// WithFeatures restricts the node and edge features loaded into the handle.
// The structural features and those required by otext are always loaded.
// Compilation always covers every feature.
func WithFeatures(names ...string) Option {
	return func(o *options) {
		o.features = append([]string{}, names...)
	}
}

// WithCompression sets the string pool compression of new builds.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithParallelism bounds the number of feature files parsed concurrently.
// Values below 1 use GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithSearchParams sets the search parameters used by Corpus.Study and
// Corpus.Search instead of the process-wide defaults.
func WithSearchParams(p search.Params) Option {
	return func(o *options) {
		o.searchParams = &p
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
	return o
}
