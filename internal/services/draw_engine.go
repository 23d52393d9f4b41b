package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/logger"

	"secretsanta/internal/models"
)

// Draw outcomes reported to a DrawObserver.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient"
	OutcomeAlreadyDrawn = "already_drawn"
	OutcomeFailed       = "failed"
)

// DrawObserver is notified about every draw attempt made through the engine.
type DrawObserver interface {
	ObserveDraw(outcome string, attempts int)
}

// DrawEngine performs the Secret Santa draw once and keeps its results
// until Reset is called.
type DrawEngine struct {
	mu        sync.RWMutex
	rng       RandomSource
	observer  DrawObserver
	now       func() time.Time
	completed bool
	results   []models.DrawResult
	drawnAt   time.Time
}

// EngineOption configures a DrawEngine.
type EngineOption func(*DrawEngine)

// WithRandomSource replaces the default math/rand/v2 source.
func WithRandomSource(rng RandomSource) EngineOption {
	return func(e *DrawEngine) {
		e.rng = rng
	}
}

// WithObserver registers an observer for draw outcomes.
func WithObserver(observer DrawObserver) EngineOption {
	return func(e *DrawEngine) {
		e.observer = observer
	}
}

// WithClock overrides the clock used to stamp completed draws.
func WithClock(now func() time.Time) EngineOption {
	return func(e *DrawEngine) {
		e.now = now
	}
}

// NewDrawEngine creates a DrawEngine with no draw performed.
func NewDrawEngine(opts ...EngineOption) *DrawEngine {
	e := &DrawEngine{
		rng: globalSource{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute draws a derangement over participants and stores it. The slice is
// treated as a snapshot; the engine keeps no reference to it.
func (e *DrawEngine) Execute(participants []models.Participant) ([]models.DrawResult, error) {
	if len(participants) < MinParticipants {
		e.observe(OutcomeInsufficient, 0)
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientParticipants, len(participants))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.completed {
		e.observe(OutcomeAlreadyDrawn, 0)
		return nil, ErrAlreadyDrawn
	}

	receivers, attempts, ok := derange(participants, e.rng, MaxDrawAttempts)
	if !ok {
		e.observe(OutcomeFailed, attempts)
		logger.Warningf("No valid draw found for %d participants after %d attempts", len(participants), attempts)
		return nil, fmt.Errorf("%w after %d attempts", ErrDrawFailed, attempts)
	}

	results := make([]models.DrawResult, len(participants))
	for i, giver := range participants {
		results[i] = models.DrawResult{
			GiverID:      giver.ID,
			GiverName:    giver.Name,
			ReceiverID:   receivers[i].ID,
			ReceiverName: receivers[i].Name,
		}
	}

	e.results = results
	e.completed = true
	e.drawnAt = e.now()
	e.observe(OutcomeSuccess, attempts)
	logger.Infof("Draw completed for %d participants in %d attempt(s)", len(results), attempts)

	return copyResults(results), nil
}

// Reset discards the stored results so a new draw can be performed.
func (e *DrawEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.completed {
		logger.Infof("Draw reset, discarding %d results", len(e.results))
	}
	e.completed = false
	e.results = nil
	e.drawnAt = time.Time{}
}

// Status reports whether a draw happened, without revealing any pairing.
func (e *DrawEngine) Status() models.DrawStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := models.DrawStatus{
		Completed:         e.completed,
		TotalParticipants: len(e.results),
	}
	if e.completed {
		drawnAt := e.drawnAt
		status.DrawnAt = &drawnAt
	}
	return status
}

// FullResults returns every pairing of the completed draw.
func (e *DrawEngine) FullResults() ([]models.DrawResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.completed {
		return nil, ErrNotDrawn
	}
	return copyResults(e.results), nil
}

// ResultFor returns the assignment of a single giver. Only the giver's and
// the receiver's names are exposed.
func (e *DrawEngine) ResultFor(participantID int) (models.Assignment, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.completed {
		return models.Assignment{}, ErrNotDrawn
	}
	for _, r := range e.results {
		if r.GiverID == participantID {
			return models.Assignment{Giver: r.GiverName, Receiver: r.ReceiverName}, nil
		}
	}
	return models.Assignment{}, fmt.Errorf("%w: participant %d is not part of the draw", ErrNotFound, participantID)
}

func (e *DrawEngine) observe(outcome string, attempts int) {
	if e.observer != nil {
		e.observer.ObserveDraw(outcome, attempts)
	}
}

func copyResults(results []models.DrawResult) []models.DrawResult {
	out := make([]models.DrawResult, len(results))
	copy(out, results)
	return out
}
