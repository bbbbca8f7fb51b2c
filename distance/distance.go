package distance

import (
	"fmt"
	"math"
)

// Manhattan calculates the L1 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Euclidean calculates the L2 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

// SquaredEuclidean calculates the squared L2 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// SymmetricKullbackLeibler calculates the symmetric Kullback-Leibler
// divergence between two vectors interpreted as discrete distributions.
// All components must be positive; the result is NaN otherwise.
func SymmetricKullbackLeibler(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += (a[i] - b[i]) * math.Log(a[i]/b[i])
	}
	return sum
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricManhattan Metric = iota
	MetricEuclidean
	MetricSquaredEuclidean
	MetricSymmetricKullbackLeibler
)

func (m Metric) String() string {
	switch m {
	case MetricManhattan:
		return "Manhattan"
	case MetricEuclidean:
		return "Euclidean"
	case MetricSquaredEuclidean:
		return "SquaredEuclidean"
	case MetricSymmetricKullbackLeibler:
		return "SymmetricKullbackLeibler"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricManhattan:
		return Manhattan, nil
	case MetricEuclidean:
		return Euclidean, nil
	case MetricSquaredEuclidean:
		return SquaredEuclidean, nil
	case MetricSymmetricKullbackLeibler:
		return SymmetricKullbackLeibler, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Calculator computes distances between vectors of a fixed order under a
// configured metric, with explicit length validation on every call.
type Calculator struct {
	order  int
	metric Metric
	fn     Func
}

// NewCalculator creates a Calculator for vectors of length order+1.
func NewCalculator(order int, metric Metric) (*Calculator, error) {
	if order < 0 {
		return nil, fmt.Errorf("order must be non-negative, got %d", order)
	}
	fn, err := Provider(metric)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		order:  order,
		metric: metric,
		fn:     fn,
	}, nil
}

// Order returns the configured vector order.
func (c *Calculator) Order() int {
	return c.order
}

// Metric returns the configured metric.
func (c *Calculator) Metric() Metric {
	return c.metric
}

// Distance computes the distance between v1 and v2.
// Both vectors must have length order+1.
func (c *Calculator) Distance(v1, v2 []float64) (float64, error) {
	length := c.order + 1
	if len(v1) != length || len(v2) != length {
		return 0, fmt.Errorf("vector length mismatch: expected %d, got %d and %d", length, len(v1), len(v2))
	}
	return c.fn(v1, v2), nil
}
