package formapi

import (
	"sync"
	"time"

	"github.com/goliatone/go-contentforms/pkg/form"
)

type session struct {
	id      string
	formID  string
	form    *form.Form
	created time.Time
}

// sessions keeps live forms in insertion order so the oldest can be evicted.
type sessions struct {
	mu      sync.Mutex
	entries map[string]*session
	order   []string
	max     int
}

func newSessions(limit int) *sessions {
	return &sessions{entries: make(map[string]*session), max: limit}
}

func (s *sessions) add(entry *session) {
	var evicted []*session
	s.mu.Lock()
	s.entries[entry.id] = entry
	s.order = append(s.order, entry.id)
	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		if e, ok := s.entries[oldest]; ok {
			evicted = append(evicted, e)
			delete(s.entries, oldest)
		}
	}
	s.mu.Unlock()

	for _, e := range evicted {
		e.form.Dispose()
	}
}

func (s *sessions) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	return entry, ok
}

func (s *sessions) remove(id string) bool {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
		for i, candidate := range s.order {
			if candidate == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if ok {
		entry.form.Dispose()
	}
	return ok
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *sessions) close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*session)
	s.order = nil
	s.mu.Unlock()

	for _, entry := range entries {
		entry.form.Dispose()
	}
}
