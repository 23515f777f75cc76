package refine

import (
	"errors"
	"testing"
)

func TestApply_StrategySelection(t *testing.T) {
	query := []float32{1, 0}
	rel := [][]float32{{0, 1}}
	text := []float32{0, 1}
	opts := DefaultOptions()

	cases := []struct {
		name     string
		relevant [][]float32
		text     []float32
		want     Strategy
	}{
		{"docs only", rel, nil, StrategyRocchio},
		{"text only", nil, text, StrategyText},
		{"docs and text", rel, text, StrategyHybrid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, strategy, err := Apply(query, tc.relevant, nil, tc.text, opts)
			if err != nil {
				t.Fatal(err)
			}
			if strategy != tc.want {
				t.Errorf("strategy %q, want %q", strategy, tc.want)
			}
		})
	}
}

func TestApply_NoFeedback(t *testing.T) {
	_, _, err := Apply([]float32{1, 0}, nil, nil, nil, DefaultOptions())
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestApply_NegativeOnlyRunsRocchio(t *testing.T) {
	got, strategy, err := Apply([]float32{1, 0}, nil, [][]float32{{1, 0}}, nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if strategy != StrategyRocchio {
		t.Errorf("strategy %q, want %q", strategy, StrategyRocchio)
	}
	floatsNear(t, got, []float32{0.85, 0})
}

func TestApply_HybridIsRocchioThenAdditive(t *testing.T) {
	got, strategy, err := Apply([]float32{1, 0}, [][]float32{{0, 1}}, nil, []float32{0, 1}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if strategy != StrategyHybrid {
		t.Fatalf("strategy %q", strategy)
	}
	// Rocchio gives [1, 0.75], then the text is folded in at lambda 0.5.
	floatsNear(t, got, []float32{1, 1.25})
}

func TestApply_TextMethodSwitch(t *testing.T) {
	query := []float32{1, 0}
	text := []float32{0, 1}

	opts := DefaultOptions()
	opts.TextMethod = TextMethodInterpolate
	got, _, err := Apply(query, nil, nil, text, opts)
	if err != nil {
		t.Fatal(err)
	}
	want, err := Interpolate(query, text, opts.InterpolationAlpha)
	if err != nil {
		t.Fatal(err)
	}
	floatsNear(t, got, want)

	opts.TextMethod = TextMethodAttention
	got, _, err = Apply(query, nil, nil, text, opts)
	if err != nil {
		t.Fatal(err)
	}
	want, err = Attention(query, text, opts.AttentionTemperature)
	if err != nil {
		t.Fatal(err)
	}
	floatsNear(t, got, want)
}

func TestApply_DimensionMismatch(t *testing.T) {
	var dimErr *DimensionError

	_, _, err := Apply([]float32{1, 0}, [][]float32{{0, 1, 0}}, nil, nil, DefaultOptions())
	if !errors.As(err, &dimErr) {
		t.Fatalf("docs path: expected DimensionError, got %v", err)
	}

	_, _, err = Apply([]float32{1, 0}, nil, nil, []float32{0, 1, 0}, DefaultOptions())
	if !errors.As(err, &dimErr) {
		t.Fatalf("text path: expected DimensionError, got %v", err)
	}
}
