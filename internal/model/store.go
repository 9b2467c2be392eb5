package model

import (
	"image"
	"sync"
)

// Store holds the current ordered feed snapshot.
//
// Records are replaced wholesale when a new snapshot arrives; the only
// per-record mutation is SetIcon, which succeeds once per record.
type Store struct {
	mu      sync.RWMutex
	records []*FeedRecord
	index   map[RowKey]int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{index: make(map[RowKey]int)}
}

// Replace swaps the whole snapshot. Records with an empty ID or a duplicate
// ID are skipped so that every key maps to exactly one row.
func (s *Store) Replace(records []*FeedRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*FeedRecord, 0, len(records))
	s.index = make(map[RowKey]int, len(records))
	for _, r := range records {
		if r == nil || r.ID == "" {
			continue
		}
		if _, dup := s.index[r.Key()]; dup {
			continue
		}
		s.index[r.Key()] = len(s.records)
		s.records = append(s.records, r)
	}
}

// Len returns the number of records in the snapshot
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Loaded reports whether a snapshot has been supplied yet
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records != nil
}

// At returns the record at position i
func (s *Store) At(i int) (*FeedRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.records) {
		return nil, false
	}
	return s.records[i], true
}

// Get returns the record for key
func (s *Store) Get(key RowKey) (*FeedRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.records[i], true
}

// IndexOf returns the current row position of key
func (s *Store) IndexOf(key RowKey) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[key]
	return i, ok
}

// Keys returns the row keys in feed order
func (s *Store) Keys() []RowKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]RowKey, len(s.records))
	for i, r := range s.records {
		keys[i] = r.Key()
	}
	return keys
}

// KeysInRange returns the keys of rows [first, last], clamped to the snapshot
func (s *Store) KeysInRange(first, last int) []RowKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if first < 0 {
		first = 0
	}
	if last >= len(s.records) {
		last = len(s.records) - 1
	}
	if first > last {
		return nil
	}
	keys := make([]RowKey, 0, last-first+1)
	for _, r := range s.records[first : last+1] {
		keys = append(keys, r.Key())
	}
	return keys
}

// HasIcon reports whether the record for key already holds an icon
func (s *Store) HasIcon(key RowKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[key]
	return ok && s.records[i].Icon != nil
}

// Icon returns the decoded icon for key, or nil
func (s *Store) Icon(key RowKey) image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[key]; ok {
		return s.records[i].Icon
	}
	return nil
}

// SetIcon stores img on the record for key. It returns false when the key
// is unknown, img is nil, or the record already has an icon.
func (s *Store) SetIcon(key RowKey, img image.Image) bool {
	if img == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[key]
	if !ok || s.records[i].Icon != nil {
		return false
	}
	s.records[i].Icon = img
	return true
}

// Reset drops the snapshot; Loaded reports false afterwards
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[RowKey]int)
}
