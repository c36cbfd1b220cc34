package progress

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// WrongAnswerSlot is the KV slot holding wrong-answer records.
const WrongAnswerSlot = "WrongQuestionRecords"

// WrongAnswerRecord tracks the mistakes made on one question.
type WrongAnswerRecord struct {
	ID          string    `json:"id"`
	LastWrongAt time.Time `json:"lastWrongDate"`
	TimesWrong  int       `json:"timesWrong"`
}

// WrongAnswerStore tracks questions answered incorrectly. Every mutation is
// written through to the KV before the call returns.
type WrongAnswerStore struct {
	slot    slot
	records []WrongAnswerRecord
	now     func() time.Time
	mu      sync.RWMutex
}

// NewWrongAnswerStore loads the wrong-answer records from kv. A missing or
// unreadable slot starts an empty store.
func NewWrongAnswerStore(kv KV, logger *slog.Logger) *WrongAnswerStore {
	s := &WrongAnswerStore{
		slot: newSlot(kv, WrongAnswerSlot, logger),
		now:  time.Now,
	}

	stored, _ := loadSlot[[]WrongAnswerRecord](s.slot)
	seen := make(map[string]bool, len(stored))
	for _, rec := range stored {
		if rec.ID == "" || seen[rec.ID] {
			continue
		}
		if rec.TimesWrong < 1 {
			rec.TimesWrong = 1
		}
		seen[rec.ID] = true
		s.records = append(s.records, rec)
	}
	return s
}

// RecordWrong registers an incorrect answer for id.
func (s *WrongAnswerStore) RecordWrong(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if i := s.indexOf(id); i >= 0 {
		s.records[i].TimesWrong++
		s.records[i].LastWrongAt = now
	} else {
		s.records = append(s.records, WrongAnswerRecord{
			ID:          id,
			LastWrongAt: now,
			TimesWrong:  1,
		})
	}
	s.slot.save(s.records)
}

// RemoveRecord forgets id after a correct answer. Nothing is written when
// id had no record.
func (s *WrongAnswerStore) RemoveRecord(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.slot.save(s.records)
}

// ClearAll drops every record.
func (s *WrongAnswerStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.slot.save([]WrongAnswerRecord{})
}

// OrderedIDsOldestFirst returns record ids by ascending LastWrongAt.
func (s *WrongAnswerStore) OrderedIDsOldestFirst() []string {
	recs := s.Records()
	slices.SortStableFunc(recs, func(a, b WrongAnswerRecord) int {
		return a.LastWrongAt.Compare(b.LastWrongAt)
	})

	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

// Record returns the record for id.
func (s *WrongAnswerStore) Record(id string) (WrongAnswerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return WrongAnswerRecord{}, false
}

// Records returns a copy of all records in storage order.
func (s *WrongAnswerStore) Records() []WrongAnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]WrongAnswerRecord(nil), s.records...)
}

// Len returns the number of records.
func (s *WrongAnswerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *WrongAnswerStore) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r WrongAnswerRecord) bool { return r.ID == id })
}
