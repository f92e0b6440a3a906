package scenario

import (
	"sync"
	"sync/atomic"

	"crisisdrill/internal/domain"
)

// Store holds the current snapshot. Reads are wait-free; writers are
// serialized and replace the snapshot as a whole, so a reader sees either the
// old or the new version, never a mix.
type Store struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.snap.Store(Empty())
	return s
}

// Current returns the snapshot in effect. Never nil.
func (s *Store) Current() *Snapshot {
	return s.snap.Load()
}

// Replace installs a new snapshot.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Store(snap)
}

// ReplaceTweets swaps in a snapshot with only the tweet collection replaced,
// leaving messages and countdowns as they were.
func (s *Store) ReplaceTweets(tweets []domain.Tweet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Store(s.snap.Load().WithTweets(tweets))
}
