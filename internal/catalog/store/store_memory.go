package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"astrarium/internal/catalog/models"
	discovery "astrarium/internal/discovery/models"
	id "astrarium/pkg/domain"
	"astrarium/pkg/platform/sentinel"
)

// DiscoveryStatusLookup answers visibility questions for the memory store.
// The postgres store resolves this with a join; in memory we ask the
// discovery store directly.
type DiscoveryStatusLookup interface {
	StatusByBodyID(ctx context.Context, bodyID id.BodyID) (discovery.Status, bool)
}

// Memory is an in-memory body store for tests and local development.
type Memory struct {
	mu          sync.RWMutex
	bodies      map[id.BodyID]models.CelestialBody
	discoveries DiscoveryStatusLookup
}

// NewMemory builds an empty in-memory body store. The discovery lookup may
// be nil, in which case every body counts as visible.
func NewMemory(discoveries DiscoveryStatusLookup) *Memory {
	return &Memory{
		bodies:      make(map[id.BodyID]models.CelestialBody),
		discoveries: discoveries,
	}
}

// SetDiscoveryLookup wires the discovery store after construction, breaking
// the chicken-and-egg between the two memory stores.
func (s *Memory) SetDiscoveryLookup(discoveries DiscoveryStatusLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discoveries = discoveries
}

func (s *Memory) Insert(_ context.Context, body *models.CelestialBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bodies[body.ID]; exists {
		return sentinel.ErrConflict
	}
	s.bodies[body.ID] = *body
	return nil
}

func (s *Memory) FindByID(_ context.Context, bodyID id.BodyID) (*models.CelestialBody, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.bodies[bodyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &body, nil
}

func (s *Memory) FindVisibleByID(ctx context.Context, bodyID id.BodyID) (*models.CelestialBody, error) {
	body, err := s.FindByID(ctx, bodyID)
	if err != nil {
		return nil, err
	}
	if !s.visible(ctx, bodyID) {
		return nil, sentinel.ErrNotFound
	}
	return body, nil
}

func (s *Memory) ListVisible(ctx context.Context) ([]models.CelestialBody, error) {
	s.mu.RLock()
	bodies := make([]models.CelestialBody, 0, len(s.bodies))
	for _, body := range s.bodies {
		bodies = append(bodies, body)
	}
	s.mu.RUnlock()

	visible := bodies[:0]
	for _, body := range bodies {
		if s.visible(ctx, body.ID) {
			visible = append(visible, body)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return strings.ToLower(visible[i].Name) < strings.ToLower(visible[j].Name)
	})
	return visible, nil
}

func (s *Memory) Update(_ context.Context, body *models.CelestialBody) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bodies[body.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.bodies[body.ID] = *body
	return nil
}

func (s *Memory) Delete(_ context.Context, bodyID id.BodyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bodies[bodyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.bodies, bodyID)
	return nil
}

func (s *Memory) visible(ctx context.Context, bodyID id.BodyID) bool {
	if s.discoveries == nil {
		return true
	}
	status, ok := s.discoveries.StatusByBodyID(ctx, bodyID)
	if !ok {
		return true
	}
	return status == discovery.StatusAccepted
}

// Snapshot copies the current state; Restore rewinds to it. The memory
// transaction runner uses these to mimic rollback semantics in tests.
func (s *Memory) Snapshot() map[id.BodyID]models.CelestialBody {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make(map[id.BodyID]models.CelestialBody, len(s.bodies))
	for k, v := range s.bodies {
		copied[k] = v
	}
	return copied
}

func (s *Memory) Restore(snapshot map[id.BodyID]models.CelestialBody) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = snapshot
}
