package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrarium/internal/discovery/models"
	"astrarium/internal/discovery/store"
	id "astrarium/pkg/domain"
	"astrarium/pkg/platform/sentinel"
)

func draft(owner id.UserID) *models.Discovery {
	return &models.Discovery{
		ID:     id.NewDiscoveryID(),
		Title:  "t",
		UserID: owner,
		BodyID: id.NewBodyID(),
		Status: models.StatusDraft,
	}
}

func TestMemory_OneDiscoveryPerBody(t *testing.T) {
	s := store.NewMemory()
	owner := id.UserID{}

	first := draft(owner)
	require.NoError(t, s.Insert(context.Background(), first))

	// A second dossier for the same body mirrors the database's unique
	// constraint on body_id.
	second := draft(owner)
	second.BodyID = first.BodyID
	err := s.Insert(context.Background(), second)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestMemory_StatusByBodyID(t *testing.T) {
	s := store.NewMemory()
	d := draft(id.UserID{})
	require.NoError(t, s.Insert(context.Background(), d))

	status, ok := s.StatusByBodyID(context.Background(), d.BodyID)
	require.True(t, ok)
	assert.Equal(t, models.StatusDraft, status)

	_, ok = s.StatusByBodyID(context.Background(), id.NewBodyID())
	assert.False(t, ok)
}

func TestMemory_DeleteClearsBodyIndex(t *testing.T) {
	s := store.NewMemory()
	d := draft(id.UserID{})
	require.NoError(t, s.Insert(context.Background(), d))
	require.NoError(t, s.Delete(context.Background(), d.ID))

	_, err := s.FindByBodyID(context.Background(), d.BodyID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// The body slot is free again.
	replacement := draft(id.UserID{})
	replacement.BodyID = d.BodyID
	assert.NoError(t, s.Insert(context.Background(), replacement))
}
