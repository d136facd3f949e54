package core

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryPendingPermissionStore struct {
	mu      sync.RWMutex
	pending map[int]PermissionRequest
}

func NewMemoryPendingPermissionStore() *MemoryPendingPermissionStore {
	return &MemoryPendingPermissionStore{pending: map[int]PermissionRequest{}}
}

func (s *MemoryPendingPermissionStore) Save(_ context.Context, req PermissionRequest) error {
	if s == nil {
		return dependencyError("core: pending permission store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req.Permissions = copyStrings(req.Permissions)
	s.pending[req.Code] = req
	return nil
}

func (s *MemoryPendingPermissionStore) Get(_ context.Context, code int) (PermissionRequest, error) {
	if s == nil {
		return PermissionRequest{}, ErrPendingPermissionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.pending[code]
	if !ok {
		return PermissionRequest{}, ErrPendingPermissionNotFound
	}
	req.Permissions = copyStrings(req.Permissions)
	return req, nil
}

func (s *MemoryPendingPermissionStore) Take(_ context.Context, code int) (PermissionRequest, error) {
	if s == nil {
		return PermissionRequest{}, ErrPendingPermissionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pending[code]
	if !ok {
		return PermissionRequest{}, ErrPendingPermissionNotFound
	}
	delete(s.pending, code)
	return req, nil
}

func (s *MemoryPendingPermissionStore) Delete(_ context.Context, code int) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, code)
	return nil
}

type MemoryEventJournal struct {
	mu     sync.RWMutex
	events []ErrorEvent
}

func NewMemoryEventJournal() *MemoryEventJournal {
	return &MemoryEventJournal{}
}

func (j *MemoryEventJournal) Record(_ context.Context, event ErrorEvent) error {
	if j == nil {
		return dependencyError("core: event journal is nil")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

// List returns events newest first.
func (j *MemoryEventJournal) List(_ context.Context, filter ErrorEventFilter) ([]ErrorEvent, error) {
	if j == nil {
		return []ErrorEvent{}, nil
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	sessionID := strings.TrimSpace(filter.SessionID)
	out := make([]ErrorEvent, 0, len(j.events))
	for i := len(j.events) - 1; i >= 0; i-- {
		event := j.events[i]
		if sessionID != "" && event.SessionID != sessionID {
			continue
		}
		out = append(out, event)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].OccurredAt.After(out[b].OccurredAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
