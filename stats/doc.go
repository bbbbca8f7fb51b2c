// Package stats provides streaming accumulation of first- and second-order
// vector statistics (count, sum, mean, diagonal covariance).
//
// Buffers are value types intended to be pooled and reused: the codebook
// design loop keeps one Buffer per cluster and clears them in place at the
// start of every refinement round instead of reallocating.
package stats
