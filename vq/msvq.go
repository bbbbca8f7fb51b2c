package vq

import (
	"fmt"

	"github.com/hupe1980/codebook/distance"
)

// MultistageQuantizer quantizes a vector through a cascade of codebooks.
// Each stage quantizes the residual left by the previous stage, so the
// reconstruction is the sum of one codeword per stage. Multistage
// quantization reaches large effective codebook sizes with small per-stage
// codebooks at the cost of a greedy (stage-local) search.
type MultistageQuantizer struct {
	order  int
	stages int
	q      *Quantizer
}

// NewMultistageQuantizer creates a MultistageQuantizer with the given number
// of stages for vectors of length order+1.
func NewMultistageQuantizer(order, stages int, metric distance.Metric) (*MultistageQuantizer, error) {
	if stages <= 0 {
		return nil, fmt.Errorf("vq: number of stages must be positive, got %d", stages)
	}
	q, err := NewQuantizer(order, metric)
	if err != nil {
		return nil, err
	}
	return &MultistageQuantizer{
		order:  order,
		stages: stages,
		q:      q,
	}, nil
}

// Stages returns the configured number of stages.
func (m *MultistageQuantizer) Stages() int {
	return m.stages
}

// Encode quantizes vec through the stage codebooks and returns one codeword
// index per stage. codebooks must contain exactly one codebook per stage.
func (m *MultistageQuantizer) Encode(vec []float64, codebooks [][][]float64) ([]int, error) {
	if len(codebooks) != m.stages {
		return nil, fmt.Errorf("vq: expected %d stage codebooks, got %d", m.stages, len(codebooks))
	}
	length := m.order + 1
	if len(vec) != length {
		return nil, fmt.Errorf("vq: vector length mismatch: expected %d, got %d", length, len(vec))
	}

	residual := make([]float64, length)
	copy(residual, vec)

	indices := make([]int, m.stages)
	for stage := 0; stage < m.stages; stage++ {
		idx, err := m.q.FindNearest(residual, codebooks[stage])
		if err != nil {
			return nil, err
		}
		indices[stage] = idx

		codeword := codebooks[stage][idx]
		for i := range residual {
			residual[i] -= codeword[i]
		}
	}

	return indices, nil
}

// Decode reconstructs a vector from per-stage codeword indices by summing the
// selected codewords.
func (m *MultistageQuantizer) Decode(indices []int, codebooks [][][]float64) ([]float64, error) {
	if len(indices) != m.stages {
		return nil, fmt.Errorf("vq: expected %d stage indices, got %d", m.stages, len(indices))
	}
	if len(codebooks) != m.stages {
		return nil, fmt.Errorf("vq: expected %d stage codebooks, got %d", m.stages, len(codebooks))
	}

	out := make([]float64, m.order+1)
	for stage := 0; stage < m.stages; stage++ {
		codeword, err := m.q.Reconstruct(indices[stage], codebooks[stage])
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] += codeword[i]
		}
	}

	return out, nil
}
