package deadletter

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
)

// Sink collects input fragments which failed extraction or validation,
// preserving the original text and the diagnostic reason instead of
// discarding them.
type Sink struct {
	mu      sync.Mutex
	entries []database.DeadLetter
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Add(fragment, field, reason string) database.DeadLetter {
	entry := database.DeadLetter{
		ID:        uuid.NewString(),
		Fragment:  fragment,
		Field:     field,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	return entry
}

func (s *Sink) Entries() []database.DeadLetter {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]database.DeadLetter, len(s.entries))
	copy(out, s.entries)

	return out
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
