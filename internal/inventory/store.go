// Package inventory holds the appliance catalog a live session builds up,
// the per-session conversation state that gates tool use, and the tool
// handlers the model invokes against both.
package inventory

import (
	"sync"
	"time"
)

// Appliance lifecycle statuses. An appliance moves pending_confirmation →
// needs_details → completed; only completed appliances enter the catalog.
const (
	StatusPendingConfirmation = "pending_confirmation"
	StatusNeedsDetails        = "needs_details"
	StatusCompleted           = "completed"
)

// Appliance is one detected home appliance.
type Appliance struct {
	ID          string     `json:"id,omitempty"`
	Type        string     `json:"type"`
	Make        string     `json:"make,omitempty"`
	Model       string     `json:"model,omitempty"`
	Status      string     `json:"status"`
	DetectedAt  time.Time  `json:"detected_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Store is the appliance catalog: the completed list plus at most one
// pending appliance working its way through confirmation. One Store is
// shared across sessions and read by the HTTP inventory endpoint, so all
// access is mutex-guarded. Tool handlers are the only writers.
type Store struct {
	mu         sync.RWMutex
	appliances []Appliance
	pending    *Appliance
}

// NewStore returns an empty catalog.
func NewStore() *Store {
	return &Store{}
}

// TrySetPending starts tracking a newly detected appliance. Returns false
// when another appliance is already pending; the caller must finish or
// reject that one first.
func (s *Store) TrySetPending(applianceType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return false
	}
	s.pending = &Appliance{
		Type:       applianceType,
		Status:     StatusPendingConfirmation,
		DetectedAt: time.Now(),
	}
	return true
}

// Pending returns a copy of the pending appliance, if any.
func (s *Store) Pending() (Appliance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pending == nil {
		return Appliance{}, false
	}
	return *s.pending, true
}

// ConfirmPending assigns the given ID to the pending appliance and moves it
// to needs_details. Returns the updated appliance, or false when nothing is
// pending.
func (s *Store) ConfirmPending(id string) (Appliance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Appliance{}, false
	}
	now := time.Now()
	s.pending.ID = id
	s.pending.Status = StatusNeedsDetails
	s.pending.ConfirmedAt = &now
	return *s.pending, true
}

// RejectPending drops the pending appliance without adding it to the catalog.
func (s *Store) RejectPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// CompletePending fills in make and model and moves the pending appliance
// into the catalog. The expected ID must match the pending appliance's ID
// (the two-step confirm flow); on mismatch or no pending appliance it
// returns false and changes nothing. Returns the new catalog size.
func (s *Store) CompletePending(expectID, make, model string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.ID != expectID || expectID == "" {
		return len(s.appliances), false
	}
	now := time.Now()
	s.pending.Make = make
	s.pending.Model = model
	s.pending.Status = StatusCompleted
	s.pending.CompletedAt = &now

	s.appliances = append(s.appliances, *s.pending)
	s.pending = nil
	return len(s.appliances), true
}

// Appliances returns a copy of the completed catalog.
func (s *Store) Appliances() []Appliance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Appliance, len(s.appliances))
	copy(out, s.appliances)
	return out
}

// Total reports the number of completed appliances.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appliances)
}
