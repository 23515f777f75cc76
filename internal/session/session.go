// Package session owns the lifecycle of interactive retrieval sessions:
// iteration history, trajectory, per-session locking, and TTL eviction.
package session

import (
	"sync"
	"time"

	"github.com/LeDaiKing/Wear-Search/internal/projection"
	"github.com/LeDaiKing/Wear-Search/internal/vector"
)

// IterationKind tells how an iteration's query vector came to be.
type IterationKind string

const (
	KindInitial  IterationKind = "initial"
	KindFeedback IterationKind = "feedback"
	KindPseudo   IterationKind = "pseudo_feedback"
)

// Iteration is one committed step of a session. Once committed it is never
// modified; clear_feedback discards whole iterations, it does not edit them.
type Iteration struct {
	Number       int
	Kind         IterationKind
	Vector       []float32
	Results      []*vector.Result
	PositiveIDs  []string
	NegativeIDs  []string
	TextFeedback string
}

// Session is one interactive retrieval session. Iteration numbers start at 1
// and grow by exactly 1 per committed mutation; the current query vector is
// always the last iteration's. All mutable state sits behind mu, which every
// mutating operation holds for its full span so concurrent feedback on the
// same session serializes into distinct iterations.
type Session struct {
	ID        string
	CreatedAt time.Time
	Origin    string

	mu          sync.RWMutex
	history     []Iteration
	trajectory  []projection.Point
	basis       *projection.Basis
	resultCache map[string][]float32
}

// Outcome is the committed result of one session operation.
type Outcome struct {
	SessionID  string
	Iteration  int
	Kind       IterationKind
	Results    []*vector.Result
	Trajectory []projection.Point
}

// Info is a read-only snapshot of session state.
type Info struct {
	SessionID   string
	CreatedAt   time.Time
	Origin      string
	Iterations  int
	CurrentKind IterationKind
	Positive    int
	Negative    int
	Text        int
}

// commit appends one iteration and its trajectory point, and rebuilds the
// result cache to reflect the new current result set. Caller holds mu.
func (s *Session) commit(iter Iteration, pt projection.Point) {
	s.history = append(s.history, iter)
	s.trajectory = append(s.trajectory, pt)
	s.rebuildCache(iter.Results)
}

// rewind truncates the session back to its first iteration. Calling it on a
// session already at iteration 1 changes nothing. Caller holds mu.
func (s *Session) rewind() {
	s.history = s.history[:1]
	s.trajectory = s.trajectory[:1]
	s.rebuildCache(s.history[0].Results)
}

// current returns the latest committed iteration. Caller holds mu.
func (s *Session) current() *Iteration {
	return &s.history[len(s.history)-1]
}

func (s *Session) rebuildCache(results []*vector.Result) {
	s.resultCache = make(map[string][]float32, len(results))
	for _, r := range results {
		s.resultCache[r.DocID] = r.Vector
	}
}

// outcome snapshots the committed state for return to the caller. The
// trajectory slice is copied so later commits cannot alias into a response
// already handed out. Caller holds mu.
func (s *Session) outcome() *Outcome {
	cur := s.current()
	traj := make([]projection.Point, len(s.trajectory))
	copy(traj, s.trajectory)
	return &Outcome{
		SessionID:  s.ID,
		Iteration:  cur.Number,
		Kind:       cur.Kind,
		Results:    cur.Results,
		Trajectory: traj,
	}
}

// info snapshots session metadata. Caller holds mu (read lock suffices).
func (s *Session) info() *Info {
	inf := &Info{
		SessionID:   s.ID,
		CreatedAt:   s.CreatedAt,
		Origin:      s.Origin,
		Iterations:  len(s.history),
		CurrentKind: s.current().Kind,
	}
	for i := range s.history {
		inf.Positive += len(s.history[i].PositiveIDs)
		inf.Negative += len(s.history[i].NegativeIDs)
		if s.history[i].TextFeedback != "" {
			inf.Text++
		}
	}
	return inf
}
