package persistence

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadVectors(t *testing.T) {
	vecs := [][]float64{
		{1.5, -2.25, 3},
		{0, math.Pi, -1e300},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVectors(&buf, vecs))
	assert.Equal(t, 2*3*8, buf.Len())

	got, err := ReadVectors(&buf, 3)
	require.NoError(t, err)
	assert.Equal(t, vecs, got)
}

func TestWriteVectorsLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteVectors(&buf, [][]float64{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestWriteVectorsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVectors(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestReadVectorsTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVectors(&buf, [][]float64{{1, 2, 3}}))
	buf.Truncate(buf.Len() - 1)

	_, err := ReadVectors(&buf, 3)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadVectorsInvalidDim(t *testing.T) {
	_, err := ReadVectors(bytes.NewReader(nil), 0)
	assert.Error(t, err)
}

func TestWriteReadAssignments(t *testing.T) {
	assignments := []int{0, 3, 1, 2, 0, 0, 255}

	var buf bytes.Buffer
	require.NoError(t, WriteAssignments(&buf, assignments))
	assert.Equal(t, 4*len(assignments), buf.Len())

	got, err := ReadAssignments(&buf)
	require.NoError(t, err)
	assert.Equal(t, assignments, got)
}

func TestWriteAssignmentsOverflow(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAssignments(&buf, []int{math.MaxInt32 + 1})
	assert.Error(t, err)
}

func TestReadAssignmentsTruncated(t *testing.T) {
	_, err := ReadAssignments(bytes.NewReader([]byte{1, 2}))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.bin")
	vecs := [][]float64{{1, 2}, {3, 4}}

	require.NoError(t, SaveToFile(path, func(w io.Writer) error {
		return WriteVectors(w, vecs)
	}))

	var got [][]float64
	require.NoError(t, LoadFromFile(path, func(r io.Reader) error {
		var err error
		got, err = ReadVectors(r, 2)
		return err
	}))

	assert.Equal(t, vecs, got)
}

func TestLoadFromFileMissing(t *testing.T) {
	err := LoadFromFile(filepath.Join(t.TempDir(), "missing.bin"), func(r io.Reader) error {
		return nil
	})
	assert.Error(t, err)
}
