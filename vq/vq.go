package vq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/codebook/distance"
)

// ErrEmptyCodebook is returned when a lookup is attempted against an empty
// codebook.
var ErrEmptyCodebook = errors.New("vq: empty codebook")

// Quantizer maps vectors to their nearest codeword under a configured metric.
type Quantizer struct {
	order int
	fn    distance.Func
}

// NewQuantizer creates a Quantizer for vectors of length order+1.
func NewQuantizer(order int, metric distance.Metric) (*Quantizer, error) {
	if order < 0 {
		return nil, fmt.Errorf("vq: order must be non-negative, got %d", order)
	}
	fn, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}
	return &Quantizer{
		order: order,
		fn:    fn,
	}, nil
}

// Order returns the configured vector order.
func (q *Quantizer) Order() int {
	return q.order
}

// FindNearest returns the index of the codeword closest to vec.
// Ties keep the lowest index: only a strict improvement moves the winner,
// which makes assignment tables reproducible across runs.
func (q *Quantizer) FindNearest(vec []float64, codebook [][]float64) (int, error) {
	if len(codebook) == 0 {
		return -1, ErrEmptyCodebook
	}
	length := q.order + 1
	if len(vec) != length {
		return -1, fmt.Errorf("vq: vector length mismatch: expected %d, got %d", length, len(vec))
	}

	best := 0
	minDist := math.MaxFloat64
	for i, codeword := range codebook {
		if len(codeword) != length {
			return -1, fmt.Errorf("vq: codeword %d length mismatch: expected %d, got %d", i, length, len(codeword))
		}
		if d := q.fn(vec, codeword); d < minDist {
			minDist = d
			best = i
		}
	}

	return best, nil
}

// Reconstruct returns a copy of the codeword at the given index.
// This is the inverse quantization lookup.
func (q *Quantizer) Reconstruct(index int, codebook [][]float64) ([]float64, error) {
	if index < 0 || index >= len(codebook) {
		return nil, fmt.Errorf("vq: codebook index %d out of range [0, %d)", index, len(codebook))
	}
	length := q.order + 1
	if len(codebook[index]) != length {
		return nil, fmt.Errorf("vq: codeword %d length mismatch: expected %d, got %d", index, length, len(codebook[index]))
	}
	out := make([]float64, length)
	copy(out, codebook[index])
	return out, nil
}

// EncodeBatch quantizes a corpus of vectors against a fixed codebook using up
// to workers goroutines (NumCPU if workers <= 0). The codebook is read-only
// here, so unlike the training loop the per-vector searches are independent
// and safe to run concurrently. The returned table preserves input order.
func (q *Quantizer) EncodeBatch(ctx context.Context, vecs, codebook [][]float64, workers int) ([]int, error) {
	if len(codebook) == 0 {
		return nil, ErrEmptyCodebook
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	indices := make([]int, len(vecs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// One task per contiguous chunk to keep scheduling overhead low.
	chunk := (len(vecs) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(vecs); start += chunk {
		end := start + chunk
		if end > len(vecs) {
			end = len(vecs)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				idx, err := q.FindNearest(vecs[i], codebook)
				if err != nil {
					return err
				}
				indices[i] = idx
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return indices, nil
}
