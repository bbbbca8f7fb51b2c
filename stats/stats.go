package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoData is returned when a derived statistic is requested from a buffer
// that has not accumulated any vectors.
var ErrNoData = errors.New("stats: no data accumulated")

// Buffer holds the running statistics for one stream of vectors.
//
// A zero Buffer is ready for use; its slices are sized lazily on first
// accumulation. Buffers are designed to be reused: Clear resets the contents
// without releasing the allocated storage.
type Buffer struct {
	count int
	sum   []float64
	sqSum []float64
}

// Accumulation performs streaming accumulation of vector statistics up to the
// configured statistics order:
//
//	0: count only
//	1: count and component-wise sum
//	2: count, sum, and component-wise sum of squares
type Accumulation struct {
	order      int
	statsOrder int
}

// New creates an Accumulation for vectors of length order+1.
// statsOrder selects the highest statistics order to maintain (0 to 2).
func New(order, statsOrder int) (*Accumulation, error) {
	if order < 0 {
		return nil, fmt.Errorf("stats: order must be non-negative, got %d", order)
	}
	if statsOrder < 0 || statsOrder > 2 {
		return nil, fmt.Errorf("stats: statistics order must be in [0, 2], got %d", statsOrder)
	}
	return &Accumulation{
		order:      order,
		statsOrder: statsOrder,
	}, nil
}

// Order returns the configured vector order.
func (a *Accumulation) Order() int {
	return a.order
}

// Clear resets the buffer to its empty state, keeping allocated storage.
func (a *Accumulation) Clear(b *Buffer) {
	if b == nil {
		return
	}
	b.count = 0
	for i := range b.sum {
		b.sum[i] = 0
	}
	for i := range b.sqSum {
		b.sqSum[i] = 0
	}
}

// Accumulate folds one vector into the buffer.
// The vector must have length order+1.
func (a *Accumulation) Accumulate(data []float64, b *Buffer) error {
	length := a.order + 1
	if len(data) != length {
		return fmt.Errorf("stats: vector length mismatch: expected %d, got %d", length, len(data))
	}
	if b == nil {
		return errors.New("stats: nil buffer")
	}

	b.count++

	if a.statsOrder >= 1 {
		if b.sum == nil {
			b.sum = make([]float64, length)
		}
		for i, v := range data {
			b.sum[i] += v
		}
	}

	if a.statsOrder >= 2 {
		if b.sqSum == nil {
			b.sqSum = make([]float64, length)
		}
		for i, v := range data {
			b.sqSum[i] += v * v
		}
	}

	return nil
}

// Count returns the number of accumulated vectors. It never fails; a nil or
// never-used buffer reports zero.
func (a *Accumulation) Count(b *Buffer) int {
	if b == nil {
		return 0
	}
	return b.count
}

// Sum returns the component-wise sum of the accumulated vectors.
// It fails with ErrNoData if the buffer is empty.
func (a *Accumulation) Sum(b *Buffer) ([]float64, error) {
	if a.statsOrder < 1 {
		return nil, errors.New("stats: first-order statistics not maintained")
	}
	if b == nil || b.count == 0 {
		return nil, ErrNoData
	}
	out := make([]float64, a.order+1)
	copy(out, b.sum)
	return out, nil
}

// Mean returns the component-wise mean of the accumulated vectors.
// It fails with ErrNoData if the buffer is empty.
func (a *Accumulation) Mean(b *Buffer) ([]float64, error) {
	out := make([]float64, a.order+1)
	if err := a.MeanInto(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MeanInto writes the component-wise mean into dst, which must have length
// order+1. It fails with ErrNoData if the buffer is empty.
func (a *Accumulation) MeanInto(b *Buffer, dst []float64) error {
	if a.statsOrder < 1 {
		return errors.New("stats: first-order statistics not maintained")
	}
	if b == nil || b.count == 0 {
		return ErrNoData
	}
	if len(dst) != a.order+1 {
		return fmt.Errorf("stats: destination length mismatch: expected %d, got %d", a.order+1, len(dst))
	}
	z := 1.0 / float64(b.count)
	for i, s := range b.sum {
		dst[i] = s * z
	}
	return nil
}

// DiagonalCovariance returns the component-wise variance of the accumulated
// vectors. Requires statistics order 2.
func (a *Accumulation) DiagonalCovariance(b *Buffer) ([]float64, error) {
	if a.statsOrder < 2 {
		return nil, errors.New("stats: second-order statistics not maintained")
	}
	if b == nil || b.count == 0 {
		return nil, ErrNoData
	}
	z := 1.0 / float64(b.count)
	out := make([]float64, a.order+1)
	for i := range out {
		mu := b.sum[i] * z
		out[i] = b.sqSum[i]*z - mu*mu
	}
	return out, nil
}

// StandardDeviation returns the component-wise standard deviation of the
// accumulated vectors. Requires statistics order 2.
func (a *Accumulation) StandardDeviation(b *Buffer) ([]float64, error) {
	variance, err := a.DiagonalCovariance(b)
	if err != nil {
		return nil, err
	}
	for i, v := range variance {
		variance[i] = math.Sqrt(v)
	}
	return variance, nil
}
