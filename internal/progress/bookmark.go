package progress

import (
	"log/slog"
	"slices"
	"sync"
)

// BookmarkSlot is the KV slot holding bookmarked question ids.
const BookmarkSlot = "BookmarkedQuestionIDs"

// BookmarkStore is the set of bookmarked question ids. Insertion order is not
// tracked, so ids are listed lexicographically.
type BookmarkStore struct {
	slot slot
	ids  map[string]struct{}
	mu   sync.RWMutex
}

// NewBookmarkStore loads bookmarks from kv. A missing or unreadable slot
// starts an empty store.
func NewBookmarkStore(kv KV, logger *slog.Logger) *BookmarkStore {
	s := &BookmarkStore{
		slot: newSlot(kv, BookmarkSlot, logger),
		ids:  make(map[string]struct{}),
	}

	stored, _ := loadSlot[[]string](s.slot)
	for _, id := range stored {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// IsBookmarked reports whether id is bookmarked.
func (s *BookmarkStore) IsBookmarked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// ToggleBookmark flips the membership of id and returns the new state.
func (s *BookmarkStore) ToggleBookmark(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, on := s.ids[id]
	if on {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.slot.save(s.sortedLocked())
	return !on
}

// OrderedIDs returns bookmarked ids in lexicographic order.
func (s *BookmarkStore) OrderedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Len returns the number of bookmarks.
func (s *BookmarkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *BookmarkStore) sortedLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
