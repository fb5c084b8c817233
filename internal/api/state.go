package api

import (
	"sync"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// requestsCache tracks the orchestrator actor of each in-flight request so
// /status can reach it. Entries are removed once the request replies.
type requestsCache struct {
	mu  sync.Mutex
	ids map[uuid.UUID]*actor.PID
}

func newRequestsCache() *requestsCache {
	return &requestsCache{
		ids: map[uuid.UUID]*actor.PID{},
	}
}

func (s *requestsCache) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *requestsCache) add(id uuid.UUID, pid *actor.PID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = pid
}

func (s *requestsCache) get(id uuid.UUID) (*actor.PID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid, ok := s.ids[id]
	return pid, ok
}
