package codebook

import (
	"log/slog"

	"github.com/hupe1980/codebook/distance"
	"github.com/hupe1980/codebook/lbg"
	"github.com/hupe1980/codebook/persistence"
	"github.com/hupe1980/codebook/random"
	"github.com/hupe1980/codebook/resource"
)

type options struct {
	metric           distance.Metric
	compression      persistence.Compression
	encodeWorkers    int
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	lbgOptions       []lbg.Option
}

// Option configures Designer behavior.
type Option func(*options)

// WithMetric configures the distance metric used for training and encoding.
// Default is squared Euclidean.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
		o.lbgOptions = append(o.lbgOptions, lbg.WithMetric(m))
	}
}

// WithSeed configures the pseudo-random seed for codeword splitting.
// Runs with the same seed and training set are bit-reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.lbgOptions = append(o.lbgOptions, lbg.WithSeed(seed))
	}
}

// WithNormalSource overrides the Gaussian source used for codeword
// splitting. Intended for tests.
func WithNormalSource(src random.NormalSource) Option {
	return func(o *options) {
		o.lbgOptions = append(o.lbgOptions, lbg.WithNormalSource(src))
	}
}

// WithMaxIterations configures the refinement iteration cap per codebook size.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.lbgOptions = append(o.lbgOptions, lbg.WithMaxIterations(n))
	}
}

// WithConvergenceThreshold configures the relative distortion change below
// which refinement stops.
func WithConvergenceThreshold(eps float64) Option {
	return func(o *options) {
		o.lbgOptions = append(o.lbgOptions, lbg.WithConvergenceThreshold(eps))
	}
}

// WithSplittingFactor configures the perturbation scale used when doubling
// the codebook.
func WithSplittingFactor(f float64) Option {
	return func(o *options) {
		o.lbgOptions = append(o.lbgOptions, lbg.WithSplittingFactor(f))
	}
}

// WithMinClusterSize configures the minimum cluster population required to
// update a codeword.
func WithMinClusterSize(n int) Option {
	return func(o *options) {
		o.lbgOptions = append(o.lbgOptions, lbg.WithMinClusterSize(n))
	}
}

// WithCompression configures snapshot payload compression.
// Default is no compression.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithEncodeWorkers configures the number of goroutines used by Encode.
// Values below 1 use one goroutine per CPU.
func WithEncodeWorkers(n int) Option {
	return func(o *options) {
		o.encodeWorkers = n
	}
}

// WithResourceController configures worker-slot and IO throttling for
// training runs and artifact uploads. Pass nil to disable.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

func applyOptions(optFns []Option) options {
	o := options{
		metric:           distance.MetricSquaredEuclidean,
		compression:      persistence.CompressionNone,
		encodeWorkers:    1,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
