package vq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/codebook/distance"
)

func TestNewMultistageQuantizer(t *testing.T) {
	_, err := NewMultistageQuantizer(1, 2, distance.MetricSquaredEuclidean)
	require.NoError(t, err)

	_, err = NewMultistageQuantizer(1, 0, distance.MetricSquaredEuclidean)
	assert.Error(t, err)

	_, err = NewMultistageQuantizer(-1, 2, distance.MetricSquaredEuclidean)
	assert.Error(t, err)
}

func TestMultistageEncodeDecode(t *testing.T) {
	m, err := NewMultistageQuantizer(0, 2, distance.MetricSquaredEuclidean)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Stages())

	// Stage 1 quantizes the coarse value, stage 2 the residual.
	codebooks := [][][]float64{
		{{0}, {10}},
		{{-1}, {0}, {1}},
	}

	// 11 -> stage 1 picks 10, residual 1 -> stage 2 picks 1.
	indices, err := m.Encode([]float64{11}, codebooks)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indices)

	decoded, err := m.Decode(indices, codebooks)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, decoded[0], 1e-12)

	// 9.4 -> stage 1 picks 10, residual -0.6 -> stage 2 picks -1.
	indices, err = m.Encode([]float64{9.4}, codebooks)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, indices)

	decoded, err = m.Decode(indices, codebooks)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, decoded[0], 1e-12)
}

func TestMultistageEncodeErrors(t *testing.T) {
	m, err := NewMultistageQuantizer(0, 2, distance.MetricSquaredEuclidean)
	require.NoError(t, err)

	codebooks := [][][]float64{
		{{0}},
		{{0}},
	}

	// Wrong number of stage codebooks.
	_, err = m.Encode([]float64{1}, codebooks[:1])
	assert.Error(t, err)

	// Wrong vector length.
	_, err = m.Encode([]float64{1, 2}, codebooks)
	assert.Error(t, err)
}

func TestMultistageDecodeErrors(t *testing.T) {
	m, err := NewMultistageQuantizer(0, 2, distance.MetricSquaredEuclidean)
	require.NoError(t, err)

	codebooks := [][][]float64{
		{{0}},
		{{0}},
	}

	_, err = m.Decode([]int{0}, codebooks)
	assert.Error(t, err)

	_, err = m.Decode([]int{0, 5}, codebooks)
	assert.Error(t, err)
}
