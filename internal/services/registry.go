package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/logger"

	"secretsanta/internal/models"
)

// Registry holds the participants of the Secret Santa in insertion order.
type Registry struct {
	mu           sync.RWMutex
	participants []models.Participant
	// nextID only ever grows, so ids of removed participants are never handed out again.
	nextID int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make([]models.Participant, 0),
		nextID:       1,
	}
}

// List returns a copy of the current participants in insertion order.
func (r *Registry) List() []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participants := make([]models.Participant, len(r.participants))
	copy(participants, r.participants)
	return participants
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// Add registers a new participant with the next free id.
func (r *Registry) Add(name string) (models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Participant{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appendLocked(name), nil
}

// Import adds every non-blank name in one step. Blank names are skipped;
// an input without any usable name is rejected as a whole.
func (r *Registry) Import(names []string) ([]models.Participant, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no participant names found", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	added := make([]models.Participant, 0, len(cleaned))
	for _, name := range cleaned {
		added = append(added, r.appendLocked(name))
	}
	logger.Infof("Imported %d participants", len(added))
	return added, nil
}

// Remove deletes the participant with the given id and returns it.
// Results of a draw that already happened are left untouched.
func (r *Registry) Remove(id int) (models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.participants {
		if p.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return p, nil
		}
	}
	return models.Participant{}, fmt.Errorf("%w: participant %d", ErrNotFound, id)
}

func (r *Registry) appendLocked(name string) models.Participant {
	p := models.Participant{ID: r.nextID, Name: name}
	r.nextID++
	r.participants = append(r.participants, p)
	return p
}
