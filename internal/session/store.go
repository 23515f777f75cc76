package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/LeDaiKing/Wear-Search/internal/embedding"
	"github.com/LeDaiKing/Wear-Search/internal/feedback"
	"github.com/LeDaiKing/Wear-Search/internal/models"
	"github.com/LeDaiKing/Wear-Search/internal/projection"
	"github.com/LeDaiKing/Wear-Search/internal/refine"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
	"github.com/LeDaiKing/Wear-Search/pkg/utils"
)

// ErrSessionNotFound is returned for ids that do not exist or have expired.
var ErrSessionNotFound = errors.New("session not found")

// InsufficientResultsError reports a pseudo feedback request that assumed
// more top results than the current iteration holds.
type InsufficientResultsError struct {
	Requested int
	Available int
}

func (e *InsufficientResultsError) Error() string {
	return fmt.Sprintf("not enough results for pseudo feedback: requested top %d, have %d", e.Requested, e.Available)
}

// Options configures a Store. Zero values fall back to the production
// defaults.
type Options struct {
	Dimensions  int           // embedding dimensionality, required
	TTL         time.Duration // session lifetime, refreshed by every mutation
	Cleanup     time.Duration // arena sweep interval
	DefaultTopK int           // result count when a request passes none
	MaxTopK     int           // hard cap on requested result counts
	PseudoTopM  int           // default assumed-relevant count for pseudo feedback
	Refine      refine.Options
}

// Visualization is the 2D view of a session: the query trajectory across
// iterations, optionally with a projected corpus sample as background.
type Visualization struct {
	SessionID  string
	Iteration  int
	Trajectory []projection.Point
	Corpus     []projection.Point
}

// Store owns the live sessions. Sessions sit in an expiring arena; every
// mutating operation holds the session lock for its full span (aggregation,
// encoding, refinement, retrieval, commit) and recommits the session to
// refresh its TTL. Iterations are committed only after every fallible step
// has succeeded, so a failed operation leaves the session exactly as it was.
type Store struct {
	arena     *cache.Cache
	gateway   vector.Gateway
	embedder  embedding.Embedder
	projector *projection.Projector
	opts      Options
	logger    *zap.Logger
}

// NewStore creates a session store backed by the given retrieval gateway,
// encoder and projector.
func NewStore(gateway vector.Gateway, embedder embedding.Embedder, projector *projection.Projector, opts Options, logger *zap.Logger) *Store {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Cleanup <= 0 {
		opts.Cleanup = time.Hour
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 20
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = 500
	}
	if opts.PseudoTopM <= 0 {
		opts.PseudoTopM = 5
	}
	if opts.Refine.Weights == (refine.Weights{}) {
		opts.Refine = refine.DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	st := &Store{
		arena:     cache.New(opts.TTL, opts.Cleanup),
		gateway:   gateway,
		embedder:  embedder,
		projector: projector,
		opts:      opts,
		logger:    logger,
	}
	st.arena.OnEvicted(func(id string, _ interface{}) {
		st.logger.Debug("session evicted", zap.String("session_id", id))
	})
	return st
}

// Create starts a session from an initial query vector: runs the first
// retrieval, fixes the projection basis for the session's lifetime, and
// commits iteration 1. The caller's vector is copied, never retained.
func (st *Store) Create(ctx context.Context, initial []float32, origin string, topK int) (*Outcome, error) {
	if len(initial) != st.opts.Dimensions {
		return nil, &refine.DimensionError{Want: st.opts.Dimensions, Got: len(initial)}
	}

	results, err := st.gateway.Query(ctx, utils.NormalizedL2Copy(initial), st.clampTopK(topK))
	if err != nil {
		return nil, err
	}
	basis, err := st.projector.SessionBasis(ctx, initial)
	if err != nil {
		return nil, err
	}

	vec := copyVector(initial)
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Origin:    origin,
		basis:     basis,
	}
	s.commit(Iteration{
		Number:  1,
		Kind:    KindInitial,
		Vector:  vec,
		Results: results,
	}, basis.Project(vec))

	out := s.outcome()
	st.arena.Set(s.ID, s, cache.DefaultExpiration)
	st.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("origin", origin),
		zap.Int("results", len(results)))
	return out, nil
}

// ApplyFeedback aggregates one round of explicit feedback, refines the
// current query vector, re-queries, and commits the next iteration. Document
// feedback may only reference results of the current iteration.
func (st *Store) ApplyFeedback(ctx context.Context, id string, items []models.FeedbackItem, texts []string, topK int) (*Outcome, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := feedback.Aggregate(items, texts, s.resultCache)
	if err != nil {
		return nil, err
	}

	var text []float32
	if sub.HasText() {
		text, err = st.embedder.EmbedText(ctx, sub.Text)
		if err != nil {
			return nil, err
		}
		if len(text) != st.opts.Dimensions {
			return nil, &refine.DimensionError{Want: st.opts.Dimensions, Got: len(text)}
		}
	}

	cur := s.current()
	refined, strategy, err := refine.Apply(cur.Vector, sub.Relevant, sub.Irrelevant, text, st.opts.Refine)
	if err != nil {
		return nil, err
	}
	results, err := st.gateway.Query(ctx, utils.NormalizedL2Copy(refined), st.clampTopK(topK))
	if err != nil {
		return nil, err
	}

	next := cur.Number + 1
	s.commit(Iteration{
		Number:       next,
		Kind:         KindFeedback,
		Vector:       refined,
		Results:      results,
		PositiveIDs:  sub.PositiveIDs,
		NegativeIDs:  sub.NegativeIDs,
		TextFeedback: sub.Text,
	}, s.basis.Project(refined))

	out := s.outcome()
	st.arena.Set(id, s, cache.DefaultExpiration)
	st.logger.Info("feedback applied",
		zap.String("session_id", id),
		zap.Int("iteration", next),
		zap.String("strategy", string(strategy)),
		zap.Int("positive", len(sub.PositiveIDs)),
		zap.Int("negative", len(sub.NegativeIDs)),
		zap.Bool("text", sub.HasText()))
	return out, nil
}

// ApplyPseudo treats the current top-m results as relevant and refines
// without user input. Asking for more results than the current iteration has
// fails without touching the session.
func (st *Store) ApplyPseudo(ctx context.Context, id string, topM, topK int) (*Outcome, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if topM <= 0 {
		topM = st.opts.PseudoTopM
	}
	cur := s.current()
	if topM > len(cur.Results) {
		return nil, &InsufficientResultsError{Requested: topM, Available: len(cur.Results)}
	}

	top := make([][]float32, topM)
	for i := range top {
		top[i] = cur.Results[i].Vector
	}
	refined, err := refine.PseudoRelevance(cur.Vector, top, st.opts.Refine.Weights)
	if err != nil {
		return nil, err
	}
	results, err := st.gateway.Query(ctx, utils.NormalizedL2Copy(refined), st.clampTopK(topK))
	if err != nil {
		return nil, err
	}

	next := cur.Number + 1
	s.commit(Iteration{
		Number:  next,
		Kind:    KindPseudo,
		Vector:  refined,
		Results: results,
	}, s.basis.Project(refined))

	out := s.outcome()
	st.arena.Set(id, s, cache.DefaultExpiration)
	st.logger.Info("pseudo feedback applied",
		zap.String("session_id", id),
		zap.Int("iteration", next),
		zap.Int("top_m", topM))
	return out, nil
}

// ClearFeedback rewinds the session to its first iteration and returns that
// iteration's original results without re-querying. Clearing an already
// clean session is a no-op that returns the same state again.
func (st *Store) ClearFeedback(ctx context.Context, id string) (*Outcome, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := len(s.history) - 1
	s.rewind()
	out := s.outcome()
	st.arena.Set(id, s, cache.DefaultExpiration)
	if discarded > 0 {
		st.logger.Info("feedback cleared",
			zap.String("session_id", id),
			zap.Int("discarded_iterations", discarded))
	}
	return out, nil
}

// Get returns a read-only snapshot of session state.
func (st *Store) Get(id string) (*Info, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info(), nil
}

// Visualize returns the session's 2D trajectory, optionally with a projected
// corpus sample as background. Both go through the basis fixed at session
// creation, so points for past iterations never move.
func (st *Store) Visualize(ctx context.Context, id string, includeCorpus bool, sampleSize int) (*Visualization, error) {
	s, err := st.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	viz := &Visualization{
		SessionID:  s.ID,
		Iteration:  s.current().Number,
		Trajectory: make([]projection.Point, len(s.trajectory)),
	}
	copy(viz.Trajectory, s.trajectory)
	s.mu.RUnlock()

	if includeCorpus {
		pts, err := st.projector.CorpusSample(ctx, sampleSize)
		if err != nil {
			return nil, err
		}
		viz.Corpus = pts
	}
	return viz, nil
}

// Delete removes a session immediately.
func (st *Store) Delete(id string) error {
	if _, found := st.arena.Get(id); !found {
		return ErrSessionNotFound
	}
	st.arena.Delete(id)
	return nil
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	return st.arena.ItemCount()
}

func (st *Store) get(id string) (*Session, error) {
	v, found := st.arena.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	return v.(*Session), nil
}

func (st *Store) clampTopK(k int) int {
	if k <= 0 {
		return st.opts.DefaultTopK
	}
	if k > st.opts.MaxTopK {
		return st.opts.MaxTopK
	}
	return k
}

func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
