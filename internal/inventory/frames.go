package inventory

import (
	"sync"
	"time"
)

// DefaultFrameCapacity is how many recent frames a ring keeps when the
// caller doesn't say otherwise.
const DefaultFrameCapacity = 10

// Frame is one video frame received from the client.
type Frame struct {
	Data       []byte
	MIMEType   string
	ReceivedAt time.Time
}

// FrameRing is a thread-safe fixed-capacity ring of the most recent video
// frames. New frames overwrite the oldest once the ring is full; a separate
// total counter keeps incrementing for the life of the session. The gateway's
// read loop writes frames while tool handlers read them, hence the mutex.
type FrameRing struct {
	mu     sync.RWMutex
	frames []Frame
	write  int
	count  int
	total  int
}

// NewFrameRing creates a ring holding up to capacity frames.
// Non-positive capacities fall back to DefaultFrameCapacity.
func NewFrameRing(capacity int) *FrameRing {
	if capacity <= 0 {
		capacity = DefaultFrameCapacity
	}
	return &FrameRing{
		frames: make([]Frame, capacity),
	}
}

// Add stores a frame, evicting the oldest when the ring is full.
func (fr *FrameRing) Add(data []byte, mimeType string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	fr.frames[fr.write] = Frame{
		Data:       data,
		MIMEType:   mimeType,
		ReceivedAt: time.Now(),
	}
	fr.write = (fr.write + 1) % len(fr.frames)
	if fr.count < len(fr.frames) {
		fr.count++
	}
	fr.total++
}

// Latest returns the most recently added frame.
func (fr *FrameRing) Latest() (Frame, bool) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	if fr.count == 0 {
		return Frame{}, false
	}
	idx := (fr.write - 1 + len(fr.frames)) % len(fr.frames)
	return fr.frames[idx], true
}

// Count reports how many frames are currently buffered (at most capacity).
func (fr *FrameRing) Count() int {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	return fr.count
}

// Total reports how many frames have ever been added.
func (fr *FrameRing) Total() int {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	return fr.total
}

// Clear drops all buffered frames. The total counter is preserved.
func (fr *FrameRing) Clear() {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	for i := range fr.frames {
		fr.frames[i] = Frame{}
	}
	fr.write = 0
	fr.count = 0
}
