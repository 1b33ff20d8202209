// Package distance provides the distance metrics used by vecidx indexes.
//
// Vector components are stored as float32, but every distance computation
// accumulates and compares in float64. This keeps near-ties between close
// neighbors stable regardless of summation order.
package distance

import (
	"fmt"
	"math"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricCosine is cosine distance: 1 - (a·b)/(|a||b|).
	// If either vector has zero magnitude the distance is defined as 1
	// (maximally dissimilar) rather than undefined.
	MetricCosine Metric = iota

	// MetricEuclidean is the L2 norm of the difference of the two vectors.
	MetricEuclidean
)

// String returns a string representation of the Metric.
func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "Cosine"
	case MetricEuclidean:
		return "Euclidean"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Valid reports whether m names a supported metric.
func (m Metric) Valid() bool {
	return m == MetricCosine || m == MetricEuclidean
}

// Func is a function type for distance calculation.
// Implementations assume both vectors have the same length (caller's responsibility).
type Func func(a, b []float32) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricCosine:
		return Cosine, nil
	case MetricEuclidean:
		return Euclidean, nil
	default:
		return nil, fmt.Errorf("distance: unsupported metric: %v", m)
	}
}

// Dot calculates the dot product of two vectors in float64.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Magnitude calculates the L2 norm of a vector in float64.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Cosine calculates the cosine distance between two vectors.
// Zero-magnitude operands yield a distance of exactly 1.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Euclidean calculates the L2 distance between two vectors.
func Euclidean(a, b []float32) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// SquaredL2 calculates the squared L2 distance between two vectors.
//
// It orders candidates identically to Euclidean and skips the square root,
// which is why the flat index scans with it and converts at the end.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
