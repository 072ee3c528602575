package verification

import (
	"sync"
	"time"

	"github.com/Void-Roleplay/backend/internal/model"
)

// Store holds outstanding link requests. It is the only mutable shared
// structure in the linking core: Put, Resolve and SweepExpired serialize on
// one mutex so a given entry can be consumed exactly once.
type Store struct {
	mu sync.Mutex

	entries map[entryKey]*model.PendingVerification

	// byPlayer is a secondary index for "do you already have a pending
	// link?" queries; the entries map is authoritative
	byPlayer map[model.PlayerID]map[entryKey]struct{}
}

type entryKey struct {
	platform model.Platform
	handle   model.Handle
}

// NewStore creates an empty verification store
func NewStore() *Store {
	return &Store{
		entries:  make(map[entryKey]*model.PendingVerification),
		byPlayer: make(map[model.PlayerID]map[entryKey]struct{}),
	}
}

// Put registers a pending verification. It fails with
// model.ErrVerificationConflict if an entry already exists for the same
// (platform, handle); callers must cancel the old one explicitly rather than
// silently stealing an in-flight link.
func (s *Store) Put(entry *model.PendingVerification) error {
	key := entryKey{entry.Platform, entry.Handle}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return model.ErrVerificationConflict
	}

	s.entries[key] = entry
	if s.byPlayer[entry.PlayerUUID] == nil {
		s.byPlayer[entry.PlayerUUID] = make(map[entryKey]struct{})
	}
	s.byPlayer[entry.PlayerUUID][key] = struct{}{}
	return nil
}

// Resolve removes and returns the entry for (platform, handle). The removal
// is atomic, so exactly one of approve/reject/timeout can act on a request.
func (s *Store) Resolve(platform model.Platform, handle model.Handle) (*model.PendingVerification, bool) {
	key := entryKey{platform, handle}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.remove(key, entry)
	return entry, true
}

// CancelForPlayer removes and returns the player's pending entry on the given
// platform, if any
func (s *Store) CancelForPlayer(playerID model.PlayerID, platform model.Platform) (*model.PendingVerification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.byPlayer[playerID] {
		if key.platform != platform {
			continue
		}
		entry := s.entries[key]
		s.remove(key, entry)
		return entry, true
	}
	return nil, false
}

// PendingForPlayer returns the player's outstanding requests across platforms
func (s *Store) PendingForPlayer(playerID model.PlayerID) []*model.PendingVerification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.PendingVerification
	for key := range s.byPlayer[playerID] {
		out = append(out, s.entries[key])
	}
	return out
}

// SweepExpired removes and returns every entry whose deadline has passed.
// Called by the background sweeper, never inline with user-facing calls.
func (s *Store) SweepExpired(now time.Time) []*model.PendingVerification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*model.PendingVerification
	for key, entry := range s.entries {
		if entry.Expired(now) {
			expired = append(expired, entry)
			s.remove(key, entry)
		}
	}
	return expired
}

// Len returns the number of outstanding entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// remove deletes an entry and its index reference. Caller holds the mutex.
func (s *Store) remove(key entryKey, entry *model.PendingVerification) {
	delete(s.entries, key)
	if idx := s.byPlayer[entry.PlayerUUID]; idx != nil {
		delete(idx, key)
		if len(idx) == 0 {
			delete(s.byPlayer, entry.PlayerUUID)
		}
	}
}
