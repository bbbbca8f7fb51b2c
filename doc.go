// Package codebook trains vector quantization codebooks with the
// Linde-Buzo-Gray (LBG) algorithm.
//
// The package ties together the low-level building blocks:
//
//   - distance: vector distance metrics
//   - stats: streaming moment accumulation
//   - vq: nearest-codeword quantization and batch encoding
//   - lbg: the split-and-refine training loop
//   - persistence: flat binary formats and compressed snapshots
//   - blobstore: artifact storage (local, S3, MinIO)
//
// # Quick Start
//
// Train a 64-entry codebook over 16-dimensional vectors:
//
//	designer, err := codebook.NewDesigner(16, 1, 64,
//	    codebook.WithSeed(1),
//	    codebook.WithLogLevel(slog.LevelInfo),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	result, err := designer.Design(ctx, trainingVectors)
//	if err != nil {
//	    panic(err)
//	}
//
//	err = designer.SaveSnapshot("speech.cbk", result)
//
// Training is deterministic: the same training set, seed and parameters
// always produce bit-identical codebooks.
package codebook
