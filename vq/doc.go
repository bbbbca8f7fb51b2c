// Package vq provides vector quantization against a trained codebook:
// nearest-codeword search, inverse lookup, multistage (residual)
// quantization, parallel corpus encoding, and inverted assignment lists.
package vq
