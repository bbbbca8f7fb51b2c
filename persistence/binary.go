package persistence

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"unsafe"
)

// ErrTruncated is returned when a raw stream ends in the middle of a vector.
var ErrTruncated = errors.New("persistence: truncated stream")

// WriteVectors writes vectors to w in the raw stream format: flat float64
// values in native byte order, no header, no delimiters. All vectors must
// share the same non-zero length.
func WriteVectors(w io.Writer, vecs [][]float64) error {
	if len(vecs) == 0 {
		return nil
	}
	dim := len(vecs[0])
	if dim == 0 {
		return errors.New("persistence: zero-length vectors")
	}

	for i, vec := range vecs {
		if len(vec) != dim {
			return fmt.Errorf("persistence: vector %d length mismatch: expected %d, got %d", i, dim, len(vec))
		}
		// Direct memory conversion (no allocation); float64 slice data is
		// always 8-byte aligned.
		byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), len(vec)*8)
		if _, err := w.Write(byteSlice); err != nil {
			return err
		}
	}
	return nil
}

// ReadVectors reads vectors of the given length from r until EOF. The
// stream must come from WriteVectors on a machine of the same byte order.
// A stream ending mid-vector yields ErrTruncated.
func ReadVectors(r io.Reader, dim int) ([][]float64, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("persistence: dimension must be positive, got %d", dim)
	}

	var vecs [][]float64
	for {
		vec := make([]float64, dim)
		byteSlice := unsafe.Slice((*byte)(unsafe.Pointer(&vec[0])), dim*8)
		_, err := io.ReadFull(r, byteSlice)
		if err == io.EOF {
			return vecs, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, vec)
	}
}

// WriteAssignments writes an assignment table to w as flat little-endian
// int32 values in training order.
func WriteAssignments(w io.Writer, assignments []int) error {
	buf := make([]byte, 4)
	for i, idx := range assignments {
		if idx < math.MinInt32 || idx > math.MaxInt32 {
			return fmt.Errorf("persistence: assignment %d at position %d overflows int32", idx, i)
		}
		binary.LittleEndian.PutUint32(buf, uint32(int32(idx)))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadAssignments reads an assignment table from r until EOF.
func ReadAssignments(r io.Reader) ([]int, error) {
	var assignments []int
	buf := make([]byte, 4)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return assignments, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, int(int32(binary.LittleEndian.Uint32(buf))))
	}
}

// SaveToFile writes data to filename atomically via a temp file and rename.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFromFile reads data from filename through a buffered reader.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewReaderSize(f, 256*1024)
	return readFunc(buf)
}
