// Package lbg implements the Linde-Buzo-Gray algorithm for vector-quantizer
// codebook design.
//
// Starting from a seed codebook (typically the global centroid of the
// training set), the engine alternates two phases until the codebook reaches
// the target size:
//
//   - Splitting: every codeword is split into a pair by adding and
//     subtracting a small Gaussian perturbation, doubling the codebook.
//   - Refinement: classic k-means style rounds; each training vector is
//     assigned to its nearest codeword, then every sufficiently occupied
//     codeword moves to its cluster mean. Clusters that fall below the
//     minimum occupancy are re-seeded by splitting the largest cluster.
//
// All randomness comes from an injectable deterministic stream, so runs are
// bit-reproducible for a fixed seed.
package lbg
