package refine

import (
	"errors"
	"fmt"
)

// ErrEmptyUpdate is returned when a refinement is requested with no feedback
// signal at all.
var ErrEmptyUpdate = errors.New("no feedback provided for refinement")

// DimensionError reports a vector whose dimensionality does not match the
// query vector it is combined with.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: got %d, expected %d", e.Got, e.Want)
}

// TextMethod selects the composition used for text-only feedback.
type TextMethod string

const (
	TextMethodResidual    TextMethod = "residual"
	TextMethodInterpolate TextMethod = "interpolate"
	TextMethodAttention   TextMethod = "attention"
)

// Strategy identifies which refinement path Apply selected.
type Strategy string

const (
	// StrategyRocchio is pure document feedback.
	StrategyRocchio Strategy = "rocchio"
	// StrategyText is pure text feedback through the configured composition.
	StrategyText Strategy = "text"
	// StrategyHybrid is Rocchio followed by additive text composition.
	StrategyHybrid Strategy = "hybrid"
)

// Options carries the engine tunables. See DefaultOptions for the production
// defaults.
type Options struct {
	Weights              Weights
	ResidualStrength     float64
	AdditiveLambda       float64
	InterpolationAlpha   float64
	AttentionTemperature float64
	TextMethod           TextMethod
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Weights:              DefaultWeights(),
		ResidualStrength:     0.8,
		AdditiveLambda:       0.5,
		InterpolationAlpha:   0.6,
		AttentionTemperature: 1.0,
		TextMethod:           TextMethodResidual,
	}
}

// Apply runs one refinement round. Strategy selection is deterministic:
// document feedback alone runs Rocchio; text alone runs the configured
// composition (residual unless overridden); both run Rocchio first and fold
// the text in additively. No feedback at all is ErrEmptyUpdate. A nil text
// vector means no text feedback; a present one must match len(query).
func Apply(query []float32, relevant, irrelevant [][]float32, text []float32, opts Options) ([]float32, Strategy, error) {
	hasDocs := len(relevant) > 0 || len(irrelevant) > 0
	hasText := text != nil
	if !hasDocs && !hasText {
		return nil, "", ErrEmptyUpdate
	}

	switch {
	case hasDocs && hasText:
		refined, err := Rocchio(query, relevant, irrelevant, opts.Weights)
		if err != nil {
			return nil, "", err
		}
		refined, err = Additive(refined, text, opts.AdditiveLambda)
		if err != nil {
			return nil, "", err
		}
		return refined, StrategyHybrid, nil

	case hasDocs:
		refined, err := Rocchio(query, relevant, irrelevant, opts.Weights)
		if err != nil {
			return nil, "", err
		}
		return refined, StrategyRocchio, nil

	default:
		refined, err := composeText(query, text, opts)
		if err != nil {
			return nil, "", err
		}
		return refined, StrategyText, nil
	}
}

func composeText(query, text []float32, opts Options) ([]float32, error) {
	switch opts.TextMethod {
	case TextMethodInterpolate:
		return Interpolate(query, text, opts.InterpolationAlpha)
	case TextMethodAttention:
		return Attention(query, text, opts.AttentionTemperature)
	default:
		return Residual(query, text, opts.ResidualStrength)
	}
}
