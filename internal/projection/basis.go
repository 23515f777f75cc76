// Package projection maps high-dimensional query vectors onto a fixed 2D
// plane so a session's drift can be displayed as a trajectory.
package projection

import (
	"errors"
	"fmt"
	"math"
)

const (
	powerIterations = 100
	convergeEps     = 1e-10
)

// Point is a 2D projection coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Basis is an orthonormal pair of axes in the embedding space. A session
// projects every vector it commits through one fixed basis, so points plotted
// early never move when later vectors arrive.
type Basis struct {
	e1 []float64
	e2 []float64
}

// FitBasis fits two principal axes to a corpus sample using centered power
// iteration with a deterministic start, so the same sample always yields the
// same basis. Samples with no variance, or variance along a single direction
// only, fall back to axis-aligned completion.
func FitBasis(sample [][]float32) (*Basis, error) {
	if len(sample) == 0 {
		return nil, errors.New("empty sample")
	}
	dim := len(sample[0])
	if dim == 0 {
		return nil, errors.New("zero-dimensional sample")
	}
	for _, v := range sample {
		if len(v) != dim {
			return nil, fmt.Errorf("inconsistent sample dimensions: %d and %d", dim, len(v))
		}
	}

	mean := make([]float64, dim)
	for _, v := range sample {
		for i, x := range v {
			mean[i] += float64(x)
		}
	}
	for i := range mean {
		mean[i] /= float64(len(sample))
	}
	centered := make([][]float64, len(sample))
	for j, v := range sample {
		row := make([]float64, dim)
		for i, x := range v {
			row[i] = float64(x) - mean[i]
		}
		centered[j] = row
	}

	e1 := principalComponent(centered, nil)
	if e1 == nil {
		// All sample vectors coincide. Anchor on the mean direction.
		return basisFromDirection(mean), nil
	}
	e2 := principalComponent(centered, e1)
	if e2 == nil {
		e2 = complementAxis(e1)
	}
	return &Basis{e1: e1, e2: e2}, nil
}

// BasisFromVector anchors a basis on a single vector: e1 is its direction,
// e2 the orthogonalized unit axis least aligned with it. Used when the corpus
// is empty at session creation and the only anchor available is the session's
// first query.
func BasisFromVector(v []float32) (*Basis, error) {
	if len(v) == 0 {
		return nil, errors.New("empty vector")
	}
	dir := make([]float64, len(v))
	for i, x := range v {
		dir[i] = float64(x)
	}
	return basisFromDirection(dir), nil
}

// Project maps v onto the basis plane.
func (b *Basis) Project(v []float32) Point {
	var x, y float64
	n := len(v)
	if n > len(b.e1) {
		n = len(b.e1)
	}
	for i := 0; i < n; i++ {
		f := float64(v[i])
		x += f * b.e1[i]
		y += f * b.e2[i]
	}
	return Point{X: x, Y: y}
}

// Dimensions returns the embedding dimensionality the basis was built for.
func (b *Basis) Dimensions() int {
	return len(b.e1)
}

func basisFromDirection(dir []float64) *Basis {
	e1 := make([]float64, len(dir))
	copy(e1, dir)
	norm := vectorNorm(e1)
	if norm < convergeEps {
		// Zero anchor: first axis.
		for i := range e1 {
			e1[i] = 0
		}
		e1[0] = 1
	} else {
		for i := range e1 {
			e1[i] /= norm
		}
	}
	return &Basis{e1: e1, e2: complementAxis(e1)}
}

// principalComponent runs power iteration on the implicit covariance of rows.
// A non-nil orth keeps every iterate orthogonal to it, which yields the
// second component. Returns nil when the data has no variance left in the
// remaining subspace.
func principalComponent(rows [][]float64, orth []float64) []float64 {
	dim := len(rows[0])
	v := startVector(rows, orth)
	if v == nil {
		return nil
	}
	for iter := 0; iter < powerIterations; iter++ {
		w := make([]float64, dim)
		for _, row := range rows {
			dot := 0.0
			for i := range row {
				dot += row[i] * v[i]
			}
			for i := range row {
				w[i] += dot * row[i]
			}
		}
		if orth != nil {
			subtractProjection(w, orth)
		}
		norm := vectorNorm(w)
		if norm < convergeEps {
			return nil
		}
		prev := v
		v = w
		for i := range v {
			v[i] /= norm
		}
		// Sign may flip between iterations; compare directions.
		dot := 0.0
		for i := range v {
			dot += v[i] * prev[i]
		}
		if 1-math.Abs(dot) < 1e-12 {
			break
		}
	}
	return v
}

// startVector picks a deterministic starting iterate: the sample row with the
// largest norm in the remaining subspace, normalized.
func startVector(rows [][]float64, orth []float64) []float64 {
	best := -1.0
	var pick []float64
	for _, row := range rows {
		cand := make([]float64, len(row))
		copy(cand, row)
		if orth != nil {
			subtractProjection(cand, orth)
		}
		if n := vectorNorm(cand); n > best {
			best = n
			pick = cand
		}
	}
	if best < convergeEps {
		return nil
	}
	for i := range pick {
		pick[i] /= best
	}
	return pick
}

// complementAxis returns the unit axis least aligned with e1, orthogonalized
// against it. For dim >= 2 that axis satisfies |e1[i]| <= 1/sqrt(dim), so the
// orthogonalized result never vanishes.
func complementAxis(e1 []float64) []float64 {
	dim := len(e1)
	if dim == 1 {
		return []float64{0}
	}
	minAt := 0
	minAbs := math.Abs(e1[0])
	for i := 1; i < dim; i++ {
		if a := math.Abs(e1[i]); a < minAbs {
			minAbs = a
			minAt = i
		}
	}
	axis := make([]float64, dim)
	axis[minAt] = 1
	subtractProjection(axis, e1)
	norm := vectorNorm(axis)
	for i := range axis {
		axis[i] /= norm
	}
	return axis
}

// subtractProjection removes the component of v along unit (assumed to be
// unit length) in place.
func subtractProjection(v, unit []float64) {
	dot := 0.0
	for i := range v {
		dot += v[i] * unit[i]
	}
	for i := range v {
		v[i] -= dot * unit[i]
	}
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
