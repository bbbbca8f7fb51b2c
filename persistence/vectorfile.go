package persistence

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/codebook/internal/mmap"
)

// VectorFile is a read-only, memory-mapped view of a raw vector stream.
// Rows are exposed without copying, so a large training corpus can be fed to
// the design loop without loading it into the heap.
type VectorFile struct {
	m     *mmap.File
	dim   int
	count int
}

// OpenVectorFile maps the raw vector stream at path. dim is the vector
// length; the file size must be a whole number of vectors.
func OpenVectorFile(path string, dim int) (*VectorFile, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("persistence: dimension must be positive, got %d", dim)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	stride := dim * 8
	if len(m.Data)%stride != 0 {
		m.Close()
		return nil, fmt.Errorf("persistence: file size %d is not a multiple of vector size %d", len(m.Data), stride)
	}

	return &VectorFile{
		m:     m,
		dim:   dim,
		count: len(m.Data) / stride,
	}, nil
}

// Len returns the number of vectors in the file.
func (vf *VectorFile) Len() int {
	return vf.count
}

// Dim returns the vector length.
func (vf *VectorFile) Dim() int {
	return vf.dim
}

// At returns vector i as a zero-copy view into the mapped file.
// The slice is read-only and valid until Close.
func (vf *VectorFile) At(i int) []float64 {
	off := i * vf.dim * 8
	return unsafe.Slice((*float64)(unsafe.Pointer(&vf.m.Data[off])), vf.dim)
}

// Vectors returns all rows as zero-copy views, suitable for passing to the
// design loop. The rows are read-only and valid until Close.
func (vf *VectorFile) Vectors() [][]float64 {
	out := make([][]float64, vf.count)
	for i := range out {
		out[i] = vf.At(i)
	}
	return out
}

// Close unmaps the file. Slices returned by At and Vectors become invalid.
func (vf *VectorFile) Close() error {
	return vf.m.Close()
}
