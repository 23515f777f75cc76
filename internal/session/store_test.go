package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/feedback"
	"github.com/LeDaiKing/Wear-Search/internal/models"
	"github.com/LeDaiKing/Wear-Search/internal/projection"
	"github.com/LeDaiKing/Wear-Search/internal/refine"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// newTestStore builds a store over a small in-memory corpus. Doc "a" points
// along the first axis, "c" along the second, so feedback effects on the
// ranking are easy to predict.
func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	gw, err := vector.NewMemoryGateway(4)
	if err != nil {
		t.Fatalf("NewMemoryGateway: %v", err)
	}
	t.Cleanup(func() { gw.Close() })

	ids := []string{"a", "b", "c", "d", "e"}
	vecs := [][]float32{
		{1, 0, 0, 0},
		{0.9, 0.4, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	metas := make([]models.Metadata, len(ids))
	if err := gw.Add(context.Background(), ids, vecs, metas); err != nil {
		t.Fatalf("seed gateway: %v", err)
	}

	opts.Dimensions = 4
	return NewStore(gw, embedding.NewMockEmbedder(4), projection.NewProjector(gw, 16, nil), opts, nil)
}

func relevant(id string) models.FeedbackItem {
	return models.FeedbackItem{DocID: id, Polarity: models.PolarityRelevant}
}

func TestStoreCreate(t *testing.T) {
	st := newTestStore(t, Options{})
	out, err := st.Create(context.Background(), []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if out.SessionID == "" {
		t.Error("expected a session id")
	}
	if out.Iteration != 1 || out.Kind != KindInitial {
		t.Errorf("expected iteration 1 kind %q, got %d %q", KindInitial, out.Iteration, out.Kind)
	}
	if len(out.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out.Results))
	}
	if out.Results[0].DocID != "a" || out.Results[1].DocID != "b" {
		t.Errorf("expected a, b on top, got %s, %s", out.Results[0].DocID, out.Results[1].DocID)
	}
	if len(out.Trajectory) != 1 {
		t.Errorf("expected 1 trajectory point, got %d", len(out.Trajectory))
	}
	if st.Count() != 1 {
		t.Errorf("expected 1 live session, got %d", st.Count())
	}
}

func TestStoreCreateDimensionMismatch(t *testing.T) {
	st := newTestStore(t, Options{})
	_, err := st.Create(context.Background(), []float32{1, 0, 0}, "text", 3)
	var dimErr *refine.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dimErr.Want != 4 || dimErr.Got != 3 {
		t.Errorf("expected want 4 got 3, have want %d got %d", dimErr.Want, dimErr.Got)
	}
	if st.Count() != 0 {
		t.Errorf("failed create must not register a session, have %d", st.Count())
	}
}

func TestStoreFeedbackAdvancesIterations(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out2, err := st.ApplyFeedback(ctx, out.SessionID, []models.FeedbackItem{relevant("c")}, nil, 3)
	if err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}
	if out2.Iteration != 2 || out2.Kind != KindFeedback {
		t.Errorf("expected iteration 2 kind %q, got %d %q", KindFeedback, out2.Iteration, out2.Kind)
	}
	if len(out2.Trajectory) != 2 {
		t.Errorf("expected 2 trajectory points, got %d", len(out2.Trajectory))
	}
	// Pulling toward "c" must promote second-axis docs above pure "a".
	if out2.Results[0].DocID != "b" {
		t.Errorf("expected b first after feedback toward c, got %s", out2.Results[0].DocID)
	}

	// The next round judges docs from the *new* result set.
	out3, err := st.ApplyFeedback(ctx, out.SessionID, []models.FeedbackItem{relevant("a")}, nil, 3)
	if err != nil {
		t.Fatalf("second ApplyFeedback: %v", err)
	}
	if out3.Iteration != 3 {
		t.Errorf("expected iteration 3, got %d", out3.Iteration)
	}

	info, err := st.Get(out.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Iterations != 3 || info.Positive != 2 || info.Negative != 0 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestStoreFeedbackUnknownDocument(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = st.ApplyFeedback(ctx, out.SessionID, []models.FeedbackItem{relevant("ghost")}, nil, 3)
	var unknownErr *feedback.UnknownDocumentError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownDocumentError, got %v", err)
	}
	if unknownErr.DocID != "ghost" {
		t.Errorf("expected doc id ghost, got %s", unknownErr.DocID)
	}

	info, err := st.Get(out.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Iterations != 1 {
		t.Errorf("failed feedback must not commit, have %d iterations", info.Iterations)
	}
}

func TestStoreFeedbackEmpty(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = st.ApplyFeedback(ctx, out.SessionID, nil, []string{"   "}, 3)
	if !errors.Is(err, feedback.ErrEmptyFeedback) {
		t.Fatalf("expected ErrEmptyFeedback, got %v", err)
	}

	info, _ := st.Get(out.SessionID)
	if info.Iterations != 1 {
		t.Errorf("empty feedback must not commit, have %d iterations", info.Iterations)
	}
}

func TestStoreTextOnlyFeedback(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out2, err := st.ApplyFeedback(ctx, out.SessionID, nil, []string{"longer sleeves", "darker color"}, 3)
	if err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}
	if out2.Iteration != 2 || out2.Kind != KindFeedback {
		t.Errorf("expected iteration 2 kind %q, got %d %q", KindFeedback, out2.Iteration, out2.Kind)
	}

	info, err := st.Get(out.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Positive != 0 || info.Negative != 0 || info.Text != 1 {
		t.Errorf("expected one text round and no doc judgments, got %+v", info)
	}
}

func TestStorePseudoFeedback(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out2, err := st.ApplyPseudo(ctx, out.SessionID, 2, 3)
	if err != nil {
		t.Fatalf("ApplyPseudo: %v", err)
	}
	if out2.Iteration != 2 || out2.Kind != KindPseudo {
		t.Errorf("expected iteration 2 kind %q, got %d %q", KindPseudo, out2.Iteration, out2.Kind)
	}

	info, _ := st.Get(out.SessionID)
	if info.CurrentKind != KindPseudo {
		t.Errorf("expected current kind %q, got %q", KindPseudo, info.CurrentKind)
	}
	// Pseudo rounds carry no explicit judgments.
	if info.Positive != 0 || info.Negative != 0 {
		t.Errorf("pseudo feedback must not count as judgments: %+v", info)
	}
}

func TestStorePseudoInsufficientResults(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = st.ApplyPseudo(ctx, out.SessionID, 5, 3)
	var insErr *InsufficientResultsError
	if !errors.As(err, &insErr) {
		t.Fatalf("expected InsufficientResultsError, got %v", err)
	}
	if insErr.Requested != 5 || insErr.Available != 3 {
		t.Errorf("expected requested 5 available 3, got %+v", insErr)
	}

	info, _ := st.Get(out.SessionID)
	if info.Iterations != 1 {
		t.Errorf("failed pseudo feedback must not commit, have %d iterations", info.Iterations)
	}
}

func TestStoreClearFeedbackRoundTrip(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.ApplyFeedback(ctx, out.SessionID, []models.FeedbackItem{relevant("c")}, nil, 3); err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}

	cleared, err := st.ClearFeedback(ctx, out.SessionID)
	if err != nil {
		t.Fatalf("ClearFeedback: %v", err)
	}
	if cleared.Iteration != 1 || cleared.Kind != KindInitial {
		t.Errorf("expected rewind to iteration 1 %q, got %d %q", KindInitial, cleared.Iteration, cleared.Kind)
	}
	if len(cleared.Results) != len(out.Results) {
		t.Fatalf("expected %d results, got %d", len(out.Results), len(cleared.Results))
	}
	// The original result set comes back as-is, not re-queried.
	for i := range cleared.Results {
		if cleared.Results[i] != out.Results[i] {
			t.Errorf("result %d: expected the original entry %s back, got %s",
				i, out.Results[i].DocID, cleared.Results[i].DocID)
		}
	}
	if len(cleared.Trajectory) != 1 {
		t.Errorf("expected 1 trajectory point after clear, got %d", len(cleared.Trajectory))
	}

	// Clearing again changes nothing.
	again, err := st.ClearFeedback(ctx, out.SessionID)
	if err != nil {
		t.Fatalf("second ClearFeedback: %v", err)
	}
	if again.Iteration != 1 || len(again.Results) != len(cleared.Results) {
		t.Errorf("clear is not idempotent: iteration %d, %d results", again.Iteration, len(again.Results))
	}

	// The session keeps working after a rewind.
	out2, err := st.ApplyFeedback(ctx, out.SessionID, []models.FeedbackItem{relevant("a")}, nil, 3)
	if err != nil {
		t.Fatalf("ApplyFeedback after clear: %v", err)
	}
	if out2.Iteration != 2 {
		t.Errorf("expected iteration 2 after clear, got %d", out2.Iteration)
	}
}

func TestStoreSessionNotFound(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()

	ops := map[string]func() error{
		"feedback": func() error {
			_, err := st.ApplyFeedback(ctx, "missing", []models.FeedbackItem{relevant("a")}, nil, 3)
			return err
		},
		"pseudo": func() error {
			_, err := st.ApplyPseudo(ctx, "missing", 2, 3)
			return err
		},
		"clear": func() error {
			_, err := st.ClearFeedback(ctx, "missing")
			return err
		},
		"get": func() error {
			_, err := st.Get("missing")
			return err
		},
		"visualize": func() error {
			_, err := st.Visualize(ctx, "missing", false, 0)
			return err
		},
		"delete": func() error {
			return st.Delete("missing")
		},
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("%s: expected ErrSessionNotFound, got %v", name, err)
		}
	}
}

func TestStoreConcurrentFeedbackSerializes(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const rounds = 4
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := st.ApplyPseudo(ctx, out.SessionID, 2, 5)
			if err != nil {
				t.Errorf("ApplyPseudo: %v", err)
				return
			}
			mu.Lock()
			seen[res.Iteration] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Concurrent rounds must serialize into distinct consecutive iterations.
	for want := 2; want <= rounds+1; want++ {
		if !seen[want] {
			t.Errorf("missing iteration %d, have %v", want, seen)
		}
	}
	info, err := st.Get(out.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Iterations != rounds+1 {
		t.Errorf("expected %d iterations, got %d", rounds+1, info.Iterations)
	}
}

func TestStoreVisualize(t *testing.T) {
	st := newTestStore(t, Options{})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.ApplyFeedback(ctx, out.SessionID, []models.FeedbackItem{relevant("c")}, nil, 3); err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}

	viz, err := st.Visualize(ctx, out.SessionID, true, 5)
	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if viz.Iteration != 2 || len(viz.Trajectory) != 2 {
		t.Errorf("expected 2 iterations in trajectory, got iteration %d with %d points", viz.Iteration, len(viz.Trajectory))
	}
	if len(viz.Corpus) != 5 {
		t.Errorf("expected 5 corpus points, got %d", len(viz.Corpus))
	}

	// Repeat reads are bit-identical: the basis is fixed per session and the
	// corpus projection is cached.
	viz2, err := st.Visualize(ctx, out.SessionID, true, 5)
	if err != nil {
		t.Fatalf("second Visualize: %v", err)
	}
	for i := range viz.Trajectory {
		if viz.Trajectory[i] != viz2.Trajectory[i] {
			t.Errorf("trajectory point %d moved: %+v vs %+v", i, viz.Trajectory[i], viz2.Trajectory[i])
		}
	}
	for i := range viz.Corpus {
		if viz.Corpus[i] != viz2.Corpus[i] {
			t.Errorf("corpus point %d moved: %+v vs %+v", i, viz.Corpus[i], viz2.Corpus[i])
		}
	}

	bare, err := st.Visualize(ctx, out.SessionID, false, 0)
	if err != nil {
		t.Fatalf("Visualize without corpus: %v", err)
	}
	if bare.Corpus != nil {
		t.Errorf("expected no corpus background, got %d points", len(bare.Corpus))
	}
}

func TestStoreDelete(t *testing.T) {
	st := newTestStore(t, Options{})
	out, err := st.Create(context.Background(), []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := st.Delete(out.SessionID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(out.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if st.Count() != 0 {
		t.Errorf("expected 0 live sessions, got %d", st.Count())
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	st := newTestStore(t, Options{TTL: 20 * time.Millisecond, Cleanup: 5 * time.Millisecond})
	out, err := st.Create(context.Background(), []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := st.Get(out.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
}

func TestStoreMutationRefreshesTTL(t *testing.T) {
	st := newTestStore(t, Options{TTL: 200 * time.Millisecond, Cleanup: 50 * time.Millisecond})
	ctx := context.Background()
	out, err := st.Create(ctx, []float32{1, 0, 0, 0}, "text", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Keep touching the session past its original TTL.
	for i := 0; i < 3; i++ {
		time.Sleep(100 * time.Millisecond)
		if _, err := st.ClearFeedback(ctx, out.SessionID); err != nil {
			t.Fatalf("ClearFeedback at touch %d: %v", i, err)
		}
	}
	if _, err := st.Get(out.SessionID); err != nil {
		t.Errorf("session should survive while being touched: %v", err)
	}
}
