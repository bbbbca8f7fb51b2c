package lbg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/hupe1980/codebook/distance"
	"github.com/hupe1980/codebook/random"
	"github.com/hupe1980/codebook/stats"
	"github.com/hupe1980/codebook/vq"
)

var (
	// ErrInsufficientTrainingData is returned when the training set is too
	// small to populate the target codebook under the minimum-occupancy
	// constraint.
	ErrInsufficientTrainingData = errors.New("lbg: insufficient training data")

	// ErrSeedCodebookSize is returned when the seed codebook does not match
	// the configured initial codebook size.
	ErrSeedCodebookSize = errors.New("lbg: seed codebook size mismatch")

	// ErrEmptyMajorityCluster is returned when degenerate-cluster recovery
	// cannot find a populated cluster to split. With a non-empty training
	// set this is unreachable and indicates an internal invariant violation.
	ErrEmptyMajorityCluster = errors.New("lbg: no populated cluster to split")
)

const (
	// DefaultMinClusterSize is the default minimum cluster occupancy.
	DefaultMinClusterSize = 1

	// DefaultMaxIterations is the default refinement iteration cap per
	// codebook size.
	DefaultMaxIterations = 1000

	// DefaultConvergenceThreshold is the default relative distortion change
	// below which refinement stops.
	DefaultConvergenceThreshold = 1e-5

	// DefaultSplittingFactor is the default scale of the Gaussian
	// perturbation applied when splitting codewords.
	DefaultSplittingFactor = 1e-5

	// DefaultSeed is the default seed for the perturbation stream.
	DefaultSeed = 1
)

type options struct {
	minClusterSize       int
	maxIterations        int
	convergenceThreshold float64
	splittingFactor      float64
	seed                 int64
	metric               distance.Metric
	source               random.NormalSource
	logger               *slog.Logger
}

// Option configures the LBG engine.
type Option func(*options)

// WithMinClusterSize sets the minimum number of vectors a cluster must hold
// for its codeword to be re-estimated; smaller clusters are re-seeded from
// the majority cluster.
func WithMinClusterSize(n int) Option {
	return func(o *options) {
		o.minClusterSize = n
	}
}

// WithMaxIterations caps the number of refinement rounds per codebook size.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithConvergenceThreshold sets the relative distortion change below which
// refinement at the current codebook size stops.
func WithConvergenceThreshold(eps float64) Option {
	return func(o *options) {
		o.convergenceThreshold = eps
	}
}

// WithSplittingFactor sets the scale of the Gaussian perturbation used when
// splitting codewords and re-seeding degenerate clusters.
func WithSplittingFactor(f float64) Option {
	return func(o *options) {
		o.splittingFactor = f
	}
}

// WithSeed sets the seed of the default perturbation stream.
// Ignored when WithNormalSource is used.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMetric sets the distance metric used for assignment and distortion.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithNormalSource injects the perturbation stream. The source is Reset at
// the start of every Run so repeated runs replay the identical sequence.
func WithNormalSource(src random.NormalSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithLogger sets the logger for per-round progress. Defaults to a discard
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// LBG designs a vector-quantization codebook with the Linde-Buzo-Gray
// algorithm: the codebook is repeatedly doubled by perturbed splitting and
// refined by alternating nearest-codeword assignment and centroid
// re-estimation until the distortion change falls below the convergence
// threshold.
//
// The engine is strictly sequential. Every refinement step depends on the
// completed previous step, and the perturbation stream is consumed in a
// fixed order, so a run is bit-reproducible for a fixed seed. An LBG value
// must not be shared across concurrent runs.
type LBG struct {
	order       int
	initialSize int
	targetSize  int
	finalSize   int
	o           options

	calc  *distance.Calculator
	quant *vq.Quantizer
	acc   *stats.Accumulation
}

// New creates an LBG engine for vectors of length order+1 that grows a
// codebook from initialSize to at least targetSize entries.
//
// The codebook size only ever doubles, so the final size is the smallest
// power-of-two multiple of initialSize that reaches targetSize; the exact
// target is usually not hit.
func New(order, initialSize, targetSize int, optFns ...Option) (*LBG, error) {
	o := options{
		minClusterSize:       DefaultMinClusterSize,
		maxIterations:        DefaultMaxIterations,
		convergenceThreshold: DefaultConvergenceThreshold,
		splittingFactor:      DefaultSplittingFactor,
		seed:                 DefaultSeed,
		metric:               distance.MetricSquaredEuclidean,
		logger:               slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if order < 0 {
		return nil, fmt.Errorf("lbg: order must be non-negative, got %d", order)
	}
	if initialSize < 1 {
		return nil, fmt.Errorf("lbg: initial codebook size must be positive, got %d", initialSize)
	}
	if targetSize <= initialSize {
		return nil, fmt.Errorf("lbg: target codebook size %d must exceed initial size %d", targetSize, initialSize)
	}
	if o.minClusterSize < 1 {
		return nil, fmt.Errorf("lbg: minimum cluster size must be positive, got %d", o.minClusterSize)
	}
	if o.maxIterations < 1 {
		return nil, fmt.Errorf("lbg: maximum iterations must be positive, got %d", o.maxIterations)
	}
	if o.convergenceThreshold < 0 {
		return nil, fmt.Errorf("lbg: convergence threshold must be non-negative, got %g", o.convergenceThreshold)
	}
	if o.splittingFactor <= 0 {
		return nil, fmt.Errorf("lbg: splitting factor must be positive, got %g", o.splittingFactor)
	}

	calc, err := distance.NewCalculator(order, o.metric)
	if err != nil {
		return nil, err
	}
	quant, err := vq.NewQuantizer(order, o.metric)
	if err != nil {
		return nil, err
	}
	acc, err := stats.New(order, 1)
	if err != nil {
		return nil, err
	}

	finalSize := initialSize
	for finalSize < targetSize {
		finalSize *= 2
	}

	if o.source == nil {
		o.source = random.NewNormalGenerator(o.seed)
	}

	return &LBG{
		order:       order,
		initialSize: initialSize,
		targetSize:  targetSize,
		finalSize:   finalSize,
		o:           o,
		calc:        calc,
		quant:       quant,
		acc:         acc,
	}, nil
}

// Order returns the configured vector order.
func (l *LBG) Order() int {
	return l.order
}

// FinalCodebookSize returns the codebook size a successful Run produces.
func (l *LBG) FinalCodebookSize() int {
	return l.finalSize
}

// Run designs a codebook from the training vectors, starting from the given
// seed codebook (typically the global centroid when no better seed exists).
//
// The seed codebook must hold exactly the configured initial size; the
// training set must hold at least minClusterSize x targetSize vectors. The
// seed is copied, so the caller's slices are never mutated, including on
// failure.
//
// On success Run returns the designed codebook and the assignment table
// mapping each training vector to its nearest codeword in the final
// codebook. The context is checked between refinement rounds; cancellation
// aborts the run without affecting the determinism of completed runs.
func (l *LBG) Run(ctx context.Context, trainingVectors, seedCodebook [][]float64) ([][]float64, []int, error) {
	numTraining := len(trainingVectors)
	if numTraining < l.o.minClusterSize*l.targetSize {
		return nil, nil, fmt.Errorf("%w: need at least %d vectors, got %d",
			ErrInsufficientTrainingData, l.o.minClusterSize*l.targetSize, numTraining)
	}
	if len(seedCodebook) != l.initialSize {
		return nil, nil, fmt.Errorf("%w: expected %d vectors, got %d",
			ErrSeedCodebookSize, l.initialSize, len(seedCodebook))
	}

	length := l.order + 1
	codebook := make([][]float64, l.initialSize, l.finalSize)
	for i, cw := range seedCodebook {
		if len(cw) != length {
			return nil, nil, fmt.Errorf("lbg: seed codeword %d length mismatch: expected %d, got %d", i, length, len(cw))
		}
		codebook[i] = make([]float64, length)
		copy(codebook[i], cw)
	}

	l.o.source.Reset()

	assignments := make([]int, numTraining)
	buffers := make([]stats.Buffer, l.finalSize)

	for size := l.initialSize; size < l.targetSize; {
		nextSize := size * 2

		// Grow first, then fill, so the perturbation loop never reads a
		// codeword it has already moved.
		for i := size; i < nextSize; i++ {
			codebook = append(codebook, make([]float64, length))
		}
		for i := 0; i < size; i++ {
			for m := 0; m <= l.order; m++ {
				p := l.o.splittingFactor * l.o.source.Next()
				codebook[i+size][m] = codebook[i][m] - p
				codebook[i][m] = codebook[i][m] + p
			}
		}
		size = nextSize

		l.o.logger.Info("codebook split", "size", size)

		prevDistortion := math.MaxFloat64
		for n := 0; n < l.o.maxIterations; n++ {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			for i := 0; i < size; i++ {
				l.acc.Clear(&buffers[i])
			}

			// E-step: assign every training vector to its nearest codeword
			// and accumulate per-cluster statistics and total distortion.
			var totalDistortion float64
			for t, v := range trainingVectors {
				index, err := l.quant.FindNearest(v, codebook)
				if err != nil {
					return nil, nil, err
				}
				assignments[t] = index

				if err := l.acc.Accumulate(v, &buffers[index]); err != nil {
					return nil, nil, err
				}

				d, err := l.calc.Distance(v, codebook[index])
				if err != nil {
					return nil, nil, err
				}
				totalDistortion += d
			}
			totalDistortion /= float64(numTraining)

			if totalDistortion == 0 ||
				math.Abs(prevDistortion-totalDistortion)/totalDistortion < l.o.convergenceThreshold {
				l.o.logger.Debug("refinement converged", "size", size, "round", n, "distortion", totalDistortion)
				break
			}
			prevDistortion = totalDistortion

			// M-step: move each sufficiently occupied codeword to its
			// cluster mean. The majority cluster is tracked with a strict
			// comparison, so occupancy ties keep the lowest index.
			majorityIndex := -1
			maxOccupancy := 0
			for i := 0; i < size; i++ {
				occupancy := l.acc.Count(&buffers[i])
				if maxOccupancy < occupancy {
					majorityIndex = i
					maxOccupancy = occupancy
				}
				if occupancy >= l.o.minClusterSize {
					if err := l.acc.MeanInto(&buffers[i], codebook[i]); err != nil {
						return nil, nil, err
					}
				}
			}

			// Re-seed degenerate clusters by splitting the updated majority
			// codeword, nudging the majority codeword away each time.
			for i := 0; i < size; i++ {
				if l.acc.Count(&buffers[i]) >= l.o.minClusterSize {
					continue
				}
				if majorityIndex < 0 {
					return nil, nil, ErrEmptyMajorityCluster
				}
				for m := 0; m <= l.order; m++ {
					p := l.o.splittingFactor * l.o.source.Next()
					codebook[i][m] = codebook[majorityIndex][m] - p
					codebook[majorityIndex][m] = codebook[majorityIndex][m] + p
				}
			}

			l.o.logger.Debug("refinement round", "size", size, "round", n, "distortion", totalDistortion)
		}
	}

	// The refinement loop can exit on the iteration cap with codewords moved
	// after the last assignment pass; rebuild the table against the final
	// codebook.
	for t, v := range trainingVectors {
		index, err := l.quant.FindNearest(v, codebook)
		if err != nil {
			return nil, nil, err
		}
		assignments[t] = index
	}

	return codebook, assignments, nil
}
