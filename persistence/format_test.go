package persistence

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/codebook/distance"
)

func testCodebook() [][]float64 {
	return [][]float64{
		{-9.5, 1.25},
		{9.5, -3.5},
		{0, 0},
		{100, -100},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCodebook(&buf, testCodebook(), distance.MetricSquaredEuclidean, c))

			codebook, metric, err := ReadCodebook(&buf)
			require.NoError(t, err)
			assert.Equal(t, testCodebook(), codebook)
			assert.Equal(t, distance.MetricSquaredEuclidean, metric)
		})
	}
}

func TestSnapshotCompressionReducesSize(t *testing.T) {
	// Highly repetitive codebook compresses well.
	codebook := make([][]float64, 256)
	for i := range codebook {
		codebook[i] = make([]float64, 16)
	}

	var raw, compressed bytes.Buffer
	require.NoError(t, WriteCodebook(&raw, codebook, distance.MetricSquaredEuclidean, CompressionNone))
	require.NoError(t, WriteCodebook(&compressed, codebook, distance.MetricSquaredEuclidean, CompressionZSTD))
	assert.Less(t, compressed.Len(), raw.Len())

	got, _, err := ReadCodebook(&compressed)
	require.NoError(t, err)
	assert.Equal(t, codebook, got)
}

func TestSnapshotInvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCodebook(&buf, testCodebook(), distance.MetricSquaredEuclidean, CompressionNone))

	data := buf.Bytes()
	data[0] = 0xFF

	_, _, err := ReadCodebook(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestSnapshotInvalidVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCodebook(&buf, testCodebook(), distance.MetricSquaredEuclidean, CompressionNone))

	data := buf.Bytes()
	// Version field starts at byte 4 (little endian).
	data[4] = 0xFF

	_, _, err := ReadCodebook(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestReadCodebookHostileHeader(t *testing.T) {
	write := func(mutate func(*SnapshotHeader)) *bytes.Reader {
		header := SnapshotHeader{
			Magic:            MagicNumber,
			Version:          SnapshotVersion,
			Order:            0,
			CodebookSize:     1,
			Metric:           uint32(distance.MetricSquaredEuclidean),
			PayloadSize:      8,
			UncompressedSize: 8,
		}
		mutate(&header)

		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, &header))
		return bytes.NewReader(buf.Bytes())
	}

	tests := []struct {
		name   string
		mutate func(*SnapshotHeader)
	}{
		{name: "zero codebook size", mutate: func(h *SnapshotHeader) { h.CodebookSize = 0 }},
		{name: "huge codebook size", mutate: func(h *SnapshotHeader) { h.CodebookSize = math.MaxUint32 }},
		{name: "huge order", mutate: func(h *SnapshotHeader) { h.Order = math.MaxUint32 }},
		{name: "huge payload size", mutate: func(h *SnapshotHeader) { h.PayloadSize = math.MaxUint64 }},
		{name: "size mismatch", mutate: func(h *SnapshotHeader) { h.UncompressedSize = 16 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadCodebook(write(tt.mutate))
			assert.Error(t, err)
		})
	}
}

func TestWriteCodebookValidation(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, WriteCodebook(&buf, nil, distance.MetricSquaredEuclidean, CompressionNone))
	assert.Error(t, WriteCodebook(&buf, [][]float64{{}}, distance.MetricSquaredEuclidean, CompressionNone))
	assert.Error(t, WriteCodebook(&buf, [][]float64{{1, 2}, {1}}, distance.MetricSquaredEuclidean, CompressionNone))
	assert.Error(t, WriteCodebook(&buf, testCodebook(), distance.MetricSquaredEuclidean, Compression(77)))
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "None", CompressionNone.String())
	assert.Equal(t, "LZ4", CompressionLZ4.String())
	assert.Equal(t, "ZSTD", CompressionZSTD.String())
	assert.Equal(t, "Unknown(9)", Compression(9).String())
}
