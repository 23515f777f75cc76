package refine

import "math"

// Residual adds the component of the text direction orthogonal to the query:
// q' = q + strength·(t − proj(t,q)) with proj(t,q) = (t·q / |q|²)·q.
// The query's own direction is untouched; only what the text newly
// contributes is added. A text parallel to the query is a no-op, and a zero
// query receives the full text direction.
func Residual(query, text []float32, strength float64) ([]float32, error) {
	if len(text) != len(query) {
		return nil, &DimensionError{Want: len(query), Got: len(text)}
	}

	dot := 0.0
	norm2 := 0.0
	for i := range query {
		q := float64(query[i])
		dot += float64(text[i]) * q
		norm2 += q * q
	}
	coef := 0.0
	if norm2 > 0 {
		coef = dot / norm2
	}

	out := make([]float32, len(query))
	for i := range query {
		q := float64(query[i])
		residual := float64(text[i]) - coef*q
		out[i] = float32(q + strength*residual)
	}
	return out, nil
}

// Additive shifts the query along the text direction: q' = q + lambda·t.
func Additive(query, text []float32, lambda float64) ([]float32, error) {
	if len(text) != len(query) {
		return nil, &DimensionError{Want: len(query), Got: len(text)}
	}
	out := make([]float32, len(query))
	for i := range query {
		out[i] = float32(float64(query[i]) + lambda*float64(text[i]))
	}
	return out, nil
}

// Interpolate blends query and text linearly: q' = (1−alpha)·q + alpha·t.
// Alpha is the text weight; higher means more text influence.
func Interpolate(query, text []float32, alpha float64) ([]float32, error) {
	if len(text) != len(query) {
		return nil, &DimensionError{Want: len(query), Got: len(text)}
	}
	out := make([]float32, len(query))
	for i := range query {
		out[i] = float32((1-alpha)*float64(query[i]) + alpha*float64(text[i]))
	}
	return out, nil
}

// Attention blends query and text feature-wise. Features where the text has
// large magnitude take more of the text's value; features where it is small
// keep the query's. Per-element weights come from exp(|tᵢ|/temperature),
// renormalized to mean 1, clipped to [0.5, 2.0], then mapped to a text
// influence in [0.25, 1.0].
func Attention(query, text []float32, temperature float64) ([]float32, error) {
	if len(text) != len(query) {
		return nil, &DimensionError{Want: len(query), Got: len(text)}
	}
	n := len(query)
	if n == 0 {
		return []float32{}, nil
	}
	if temperature <= 0 {
		temperature = 1.0
	}

	weights := make([]float64, n)
	sum := 0.0
	for i, t := range text {
		w := math.Exp(math.Abs(float64(t)) / temperature)
		weights[i] = w
		sum += w
	}

	out := make([]float32, n)
	for i := range weights {
		w := weights[i] / sum * float64(n)
		if w < 0.5 {
			w = 0.5
		} else if w > 2.0 {
			w = 2.0
		}
		// Weight 1.0 is a neutral 50/50 blend.
		influence := (w-1.0)/2.0 + 0.5
		out[i] = float32((1-influence)*float64(query[i]) + influence*float64(text[i]))
	}
	return out, nil
}
