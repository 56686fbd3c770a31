package index

import (
	"math"
	"sort"
)

// Vector is a sparse, L2-normalised weight vector over the index vocabulary.
type Vector struct {
	dims    []int
	weights []float64
}

func newVector(weights map[int]float64) Vector {
	if len(weights) == 0 {
		return Vector{}
	}
	dims := make([]int, 0, len(weights))
	for d := range weights {
		dims = append(dims, d)
	}
	sort.Ints(dims)
	norm := 0.0
	for _, d := range dims {
		norm += weights[d] * weights[d]
	}
	norm = math.Sqrt(norm)
	v := Vector{dims: dims, weights: make([]float64, len(dims))}
	for i, d := range dims {
		v.weights[i] = weights[d]
		if norm > 0 {
			v.weights[i] /= norm
		}
	}
	return v
}

// NonZero returns the number of non-zero dimensions.
func (v Vector) NonZero() int { return len(v.dims) }

// IsZero reports whether the vector has no non-zero dimension.
func (v Vector) IsZero() bool { return len(v.dims) == 0 }

// Dot returns the inner product of v and o.
func (v Vector) Dot(o Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(v.dims) && j < len(o.dims) {
		switch {
		case v.dims[i] == o.dims[j]:
			sum += v.weights[i] * o.weights[j]
			i++
			j++
		case v.dims[i] < o.dims[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
