package template

import "sync"

// SequenceStore holds named counters for {{sequence("name")}} markers.
// It is safe for concurrent use.
type SequenceStore struct {
	mu        sync.Mutex
	sequences map[string]int64
}

// NewSequenceStore creates an empty store.
func NewSequenceStore() *SequenceStore {
	return &SequenceStore{sequences: make(map[string]int64)}
}

// Next returns the current value of name and increments it. A new sequence
// starts at start.
func (s *SequenceStore) Next(name string, start int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.sequences[name]
	if !ok {
		v = start
	}
	s.sequences[name] = v + 1
	return v
}

// Reset forgets name so it restarts from its start value.
func (s *SequenceStore) Reset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sequences, name)
}
