// Package refine implements the query refinement algorithms: the Rocchio
// relevance feedback update and the composition strategies that fold free-text
// refinements into a query vector.
//
// All functions are pure: no I/O, no clock, no randomness. Inputs are never
// mutated and outputs are freshly allocated. Accumulation happens in float64,
// results are emitted as float32. Nothing here normalizes its output; whether
// a vector is normalized before hitting the retrieval backend is the caller's
// policy.
package refine

// Weights parameterizes the Rocchio update.
type Weights struct {
	Alpha float64 // weight of the current query
	Beta  float64 // weight of the relevant centroid
	Gamma float64 // weight of the irrelevant centroid
}

// DefaultWeights returns the standard Rocchio weighting.
func DefaultWeights() Weights {
	return Weights{Alpha: 1.0, Beta: 0.75, Gamma: 0.15}
}

// Rocchio computes q' = α·q + (β/|Dr|)·Σ(d∈Dr) − (γ/|Dn|)·Σ(d∈Dn).
// An empty set contributes nothing; there is never a division by zero.
func Rocchio(query []float32, relevant, irrelevant [][]float32, w Weights) ([]float32, error) {
	dim := len(query)
	if err := checkDims(dim, relevant); err != nil {
		return nil, err
	}
	if err := checkDims(dim, irrelevant); err != nil {
		return nil, err
	}

	acc := make([]float64, dim)
	for i, v := range query {
		acc[i] = w.Alpha * float64(v)
	}

	if n := len(relevant); n > 0 {
		scale := w.Beta / float64(n)
		for _, doc := range relevant {
			for i, v := range doc {
				acc[i] += scale * float64(v)
			}
		}
	}

	if n := len(irrelevant); n > 0 {
		scale := w.Gamma / float64(n)
		for _, doc := range irrelevant {
			for i, v := range doc {
				acc[i] -= scale * float64(v)
			}
		}
	}

	out := make([]float32, dim)
	for i, v := range acc {
		out[i] = float32(v)
	}
	return out, nil
}

// PseudoRelevance runs Rocchio treating the given top-ranked vectors as
// relevant with an empty negative set (blind feedback).
func PseudoRelevance(query []float32, top [][]float32, w Weights) ([]float32, error) {
	return Rocchio(query, top, nil, w)
}

func checkDims(want int, vecs [][]float32) error {
	for _, v := range vecs {
		if len(v) != want {
			return &DimensionError{Want: want, Got: len(v)}
		}
	}
	return nil
}
