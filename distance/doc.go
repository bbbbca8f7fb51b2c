// Package distance provides distance calculations between real-valued vectors.
//
// # Supported Metrics
//
//   - MetricManhattan: L1 distance
//   - MetricEuclidean: L2 distance
//   - MetricSquaredEuclidean: Squared L2 distance (default for codebook design)
//   - MetricSymmetricKullbackLeibler: Symmetric KL divergence
//
// # Usage
//
//	dist := distance.SquaredEuclidean(a, b)
//
//	calc, err := distance.NewCalculator(order, distance.MetricSquaredEuclidean)
//	dist, err := calc.Distance(a, b)
package distance
