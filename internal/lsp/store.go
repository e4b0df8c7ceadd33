package lsp

import "sync"

// Store holds the open documents and their latest analysis.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*entry // uri -> entry
}

type entry struct {
	text     string
	analysis *Analysis
}

func NewStore() *Store {
	return &Store{docs: map[string]*entry{}}
}

// Set replaces the text of uri and re-analyzes it.
func (s *Store) Set(uri, text string) *Analysis {
	a := Analyze(uri, text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &entry{text: text, analysis: a}
	return a
}

func (s *Store) Get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[uri]
	if !ok {
		return "", false
	}
	return e.text, true
}

func (s *Store) Analysis(uri string) (*Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[uri]
	if !ok {
		return nil, false
	}
	return e.analysis, true
}

func (s *Store) Delete(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}
