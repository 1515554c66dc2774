package inventory

import "sync"

// State is per-session conversation state. The gateway's read loop flips the
// spoken gate when the user finishes their first push-to-talk turn; tool
// handlers running on the session's receive loop read it, so access is
// mutex-guarded. A fresh State is created for every client connection.
type State struct {
	mu                 sync.Mutex
	userHasSpoken      bool
	currentApplianceID string
}

// NewState returns the initial state for a new session: the user has not
// spoken and no appliance is being worked on.
func NewState() *State {
	return &State{}
}

// MarkUserSpoken records that the user has completed at least one turn.
// The gate never resets within a session.
func (s *State) MarkUserSpoken() {
	s.mu.Lock()
	s.userHasSpoken = true
	s.mu.Unlock()
}

// UserHasSpoken reports whether the user has completed a turn yet.
func (s *State) UserHasSpoken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userHasSpoken
}

// SetCurrentApplianceID records the appliance the conversation is collecting
// details for.
func (s *State) SetCurrentApplianceID(id string) {
	s.mu.Lock()
	s.currentApplianceID = id
	s.mu.Unlock()
}

// CurrentApplianceID returns the appliance the conversation is collecting
// details for, or "" when there is none.
func (s *State) CurrentApplianceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentApplianceID
}

// ClearCurrentApplianceID resets the detail-collection target.
func (s *State) ClearCurrentApplianceID() {
	s.mu.Lock()
	s.currentApplianceID = ""
	s.mu.Unlock()
}
