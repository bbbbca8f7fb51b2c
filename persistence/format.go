package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/codebook/distance"
)

const (
	// MagicNumber identifies codebook snapshot files (ASCII: "CBK0").
	MagicNumber = 0x43424B30
	// SnapshotVersion is the current snapshot format version (v1.0.0).
	SnapshotVersion = 0x00010000
)

var (
	ErrInvalidMagic   = errors.New("persistence: invalid magic number")
	ErrInvalidVersion = errors.New("persistence: unsupported version")
)

// SnapshotHeader is the fixed-size header at the start of a codebook
// snapshot file.
type SnapshotHeader struct {
	Magic            uint32
	Version          uint32
	Order            uint32 // vector length is Order+1
	CodebookSize     uint32
	Metric           uint32
	Compression      uint8
	Padding          [3]byte
	PayloadSize      uint64 // stored payload bytes
	UncompressedSize uint64 // payload bytes after decompression
}

// WriteCodebook writes a codebook snapshot to w. All codewords must share
// the same non-zero length.
func WriteCodebook(w io.Writer, codebook [][]float64, metric distance.Metric, compression Compression) error {
	if len(codebook) == 0 {
		return errors.New("persistence: empty codebook")
	}
	dim := len(codebook[0])
	if dim == 0 {
		return errors.New("persistence: zero-length codewords")
	}

	payload := make([]byte, 0, len(codebook)*dim*8)
	buf := make([]byte, 8)
	for i, cw := range codebook {
		if len(cw) != dim {
			return fmt.Errorf("persistence: codeword %d length mismatch: expected %d, got %d", i, dim, len(cw))
		}
		for _, v := range cw {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			payload = append(payload, buf...)
		}
	}

	stored, used, err := compressPayload(payload, compression)
	if err != nil {
		return err
	}

	header := SnapshotHeader{
		Magic:            MagicNumber,
		Version:          SnapshotVersion,
		Order:            uint32(dim - 1),
		CodebookSize:     uint32(len(codebook)),
		Metric:           uint32(metric),
		Compression:      uint8(used),
		PayloadSize:      uint64(len(stored)),
		UncompressedSize: uint64(len(payload)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	_, err = w.Write(stored)
	return err
}

// ReadCodebook reads a codebook snapshot from r and returns the codebook and
// the metric it was trained with.
func ReadCodebook(r io.Reader) ([][]float64, distance.Metric, error) {
	var header SnapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, 0, err
	}
	if header.Magic != MagicNumber {
		return nil, 0, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != SnapshotVersion {
		return nil, 0, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}

	// Bound the untrusted header fields before trusting any size arithmetic
	// or allocating payload buffers.
	const (
		maxSnapshotCodewords = 1 << 24
		maxSnapshotOrder     = 1 << 20
		maxSnapshotPayload   = 1 << 32
	)
	if header.CodebookSize == 0 || header.CodebookSize > maxSnapshotCodewords {
		return nil, 0, fmt.Errorf("persistence: implausible codebook size %d", header.CodebookSize)
	}
	if header.Order > maxSnapshotOrder {
		return nil, 0, fmt.Errorf("persistence: implausible vector order %d", header.Order)
	}
	if header.PayloadSize > maxSnapshotPayload {
		return nil, 0, fmt.Errorf("persistence: implausible payload size %d", header.PayloadSize)
	}

	dim := int(header.Order) + 1
	count := int(header.CodebookSize)
	if want := uint64(count) * uint64(dim) * 8; header.UncompressedSize != want {
		return nil, 0, fmt.Errorf("persistence: header size mismatch: %d codewords of length %d need %d bytes, header says %d",
			count, dim, want, header.UncompressedSize)
	}

	stored := make([]byte, header.PayloadSize)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, 0, err
	}

	payload, err := decompressPayload(stored, Compression(header.Compression), int(header.UncompressedSize))
	if err != nil {
		return nil, 0, err
	}

	codebook := make([][]float64, count)
	for i := range codebook {
		cw := make([]float64, dim)
		for j := range cw {
			off := (i*dim + j) * 8
			cw[j] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off : off+8]))
		}
		codebook[i] = cw
	}

	return codebook, distance.Metric(header.Metric), nil
}
