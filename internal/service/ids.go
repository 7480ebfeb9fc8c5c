package service

import (
	"sync"
	"time"
)

// idSource issues wall-clock-derived identifiers (unix milliseconds).
// Two creations inside the same millisecond bump the counter so ids
// are never reused within a process.
type idSource struct {
	mu   sync.Mutex
	last int64
}

func (s *idSource) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}
