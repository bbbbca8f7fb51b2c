// Package persistence provides binary serialization for training data,
// codebooks, and assignment tables.
//
// Two formats are supported:
//
//   - The raw stream format: flat float64 values in native byte order with
//     no header or delimiters, each vector occupying exactly dim consecutive
//     values. The vector length is not recorded in the file and must be
//     supplied by the caller. Assignment tables are flat little-endian int32
//     values in training order. This is the interchange format used by
//     classic signal-processing toolchains.
//
//   - The snapshot format: a self-describing codebook file with a magic
//     number, version, vector order, metric, and optional LZ4 or ZSTD
//     payload compression.
package persistence
