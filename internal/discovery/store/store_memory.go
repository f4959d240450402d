package store

import (
	"context"
	"sync"

	catalogstore "astrarium/internal/catalog/store"
	"astrarium/internal/discovery/models"
	id "astrarium/pkg/domain"
	"astrarium/pkg/platform/sentinel"
)

// Memory is an in-memory discovery store for tests and local development.
type Memory struct {
	mu     sync.RWMutex
	byID   map[id.DiscoveryID]models.Discovery
	byBody map[id.BodyID]id.DiscoveryID
}

// NewMemory builds an empty in-memory discovery store.
func NewMemory() *Memory {
	return &Memory{
		byID:   make(map[id.DiscoveryID]models.Discovery),
		byBody: make(map[id.BodyID]id.DiscoveryID),
	}
}

func (s *Memory) Insert(_ context.Context, d *models.Discovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[d.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byBody[d.BodyID]; exists {
		// Mirrors the unique constraint on discoveries.body_id.
		return sentinel.ErrConflict
	}
	s.byID[d.ID] = *d
	s.byBody[d.BodyID] = d.ID
	return nil
}

func (s *Memory) FindByID(_ context.Context, discoveryID id.DiscoveryID) (*models.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[discoveryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

func (s *Memory) FindByBodyID(_ context.Context, bodyID id.BodyID) (*models.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	discoveryID, ok := s.byBody[bodyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	d := s.byID[discoveryID]
	return &d, nil
}

func (s *Memory) Update(_ context.Context, d *models.Discovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[d.ID] = *d
	return nil
}

func (s *Memory) Delete(_ context.Context, discoveryID id.DiscoveryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[discoveryID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, discoveryID)
	delete(s.byBody, d.BodyID)
	return nil
}

// StatusByBodyID implements the catalog memory store's visibility lookup.
func (s *Memory) StatusByBodyID(_ context.Context, bodyID id.BodyID) (models.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	discoveryID, ok := s.byBody[bodyID]
	if !ok {
		return 0, false
	}
	return s.byID[discoveryID].Status, true
}

func (s *Memory) snapshot() (map[id.DiscoveryID]models.Discovery, map[id.BodyID]id.DiscoveryID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := make(map[id.DiscoveryID]models.Discovery, len(s.byID))
	for k, v := range s.byID {
		byID[k] = v
	}
	byBody := make(map[id.BodyID]id.DiscoveryID, len(s.byBody))
	for k, v := range s.byBody {
		byBody[k] = v
	}
	return byID, byBody
}

func (s *Memory) restore(byID map[id.DiscoveryID]models.Discovery, byBody map[id.BodyID]id.DiscoveryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = byID
	s.byBody = byBody
}

// MemoryTxRunner gives tests the same all-or-nothing semantics the postgres
// transaction adapter provides in production: on error both stores rewind to
// their pre-transaction snapshots.
type MemoryTxRunner struct {
	Bodies      *catalogstore.Memory
	Discoveries *Memory
}

func (r *MemoryTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	bodySnap := r.Bodies.Snapshot()
	byID, byBody := r.Discoveries.snapshot()
	if err := fn(ctx); err != nil {
		r.Bodies.Restore(bodySnap)
		r.Discoveries.restore(byID, byBody)
		return err
	}
	return nil
}
