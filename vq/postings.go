package vq

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// InvertedLists maps each codeword to the set of training-vector indices
// assigned to it, in the style of an IVF index. The per-codeword posting
// lists are compressed roaring bitmaps, which stay compact for both the
// dense clusters of a balanced codebook and the near-empty ones produced by
// degenerate splits.
type InvertedLists struct {
	lists []*roaring.Bitmap
}

// BuildInvertedLists inverts an assignment table into per-codeword posting
// lists. Every assignment must be in [0, numCodewords).
func BuildInvertedLists(assignments []int, numCodewords int) (*InvertedLists, error) {
	if numCodewords <= 0 {
		return nil, fmt.Errorf("vq: number of codewords must be positive, got %d", numCodewords)
	}

	lists := make([]*roaring.Bitmap, numCodewords)
	for i := range lists {
		lists[i] = roaring.New()
	}

	for t, idx := range assignments {
		if idx < 0 || idx >= numCodewords {
			return nil, fmt.Errorf("vq: assignment %d out of range [0, %d) at position %d", idx, numCodewords, t)
		}
		lists[idx].Add(uint32(t))
	}

	return &InvertedLists{lists: lists}, nil
}

// NumLists returns the number of posting lists (the codebook size).
func (il *InvertedLists) NumLists() int {
	return len(il.lists)
}

// List returns the posting list for codeword i. The returned bitmap is owned
// by the InvertedLists and must not be modified.
func (il *InvertedLists) List(i int) *roaring.Bitmap {
	return il.lists[i]
}

// Cardinality returns the occupancy of cluster i.
func (il *InvertedLists) Cardinality(i int) uint64 {
	return il.lists[i].GetCardinality()
}

// Occupancy returns the occupancy of every cluster as a slice indexed by
// codeword.
func (il *InvertedLists) Occupancy() []int {
	out := make([]int, len(il.lists))
	for i, l := range il.lists {
		out[i] = int(l.GetCardinality())
	}
	return out
}

// EmptyLists returns the indices of clusters with no assigned vectors.
func (il *InvertedLists) EmptyLists() []int {
	var out []int
	for i, l := range il.lists {
		if l.IsEmpty() {
			out = append(out, i)
		}
	}
	return out
}
