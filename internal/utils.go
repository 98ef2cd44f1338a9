package internal

import "sync"

// SafeMap is a mutex guarded set of keys.
type SafeMap struct {
	mu sync.Mutex
	v  map[string]bool
}

func NewSafeMap() *SafeMap {
	return &SafeMap{v: make(map[string]bool)}
}

// Add records key as present.
func (s *SafeMap) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v[key] = true
}

// Delete releases key so the set does not grow with finished work.
func (s *SafeMap) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.v, key)
}

func (s *SafeMap) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.v)
}
