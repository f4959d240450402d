package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "astrarium/internal/catalog/models"
	"astrarium/internal/catalog/policy"
	discovery "astrarium/internal/discovery/models"
	discoverystore "astrarium/internal/discovery/store"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
)

func seedBodyWithDiscovery(t *testing.T, discoveries *discoverystore.Memory, bodyType catalog.BodyType, owner id.UserID, status discovery.Status) *catalog.CelestialBody {
	t.Helper()
	body := &catalog.CelestialBody{
		ID:   id.NewBodyID(),
		Name: "Test Object",
		Type: bodyType,
		Spec: catalog.NewSpecialization(bodyType),
	}
	require.NoError(t, discoveries.Insert(context.Background(), &discovery.Discovery{
		ID:        id.NewDiscoveryID(),
		Title:     "Test Submission",
		UserID:    owner,
		BodyID:    body.ID,
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))
	return body
}

func TestCanMutate_OwnershipTable(t *testing.T) {
	owner := mustUserID("8a3c2f6e-1111-4222-8333-444455556666")

	// Expected owner-mutability per subtype and discovery status. The
	// asteroid row is all-false on purpose; see TestCanMutate_AsteroidNeverMutable.
	cases := map[catalog.BodyType]map[discovery.Status]bool{
		catalog.TypeStar: {
			discovery.StatusDraft:         true,
			discovery.StatusPendingReview: false,
			discovery.StatusAccepted:      false,
			discovery.StatusDeclined:      true,
		},
		catalog.TypePlanet: {
			discovery.StatusDraft:         true,
			discovery.StatusPendingReview: false,
			discovery.StatusAccepted:      false,
			discovery.StatusDeclined:      false,
		},
		catalog.TypeAsteroid: {
			discovery.StatusDraft:         false,
			discovery.StatusPendingReview: false,
			discovery.StatusAccepted:      false,
			discovery.StatusDeclined:      false,
		},
		catalog.TypeSatellite: {
			discovery.StatusDraft:         true,
			discovery.StatusPendingReview: false,
			discovery.StatusAccepted:      false,
			discovery.StatusDeclined:      true,
		},
		catalog.TypeGalaxyQuasar: {
			discovery.StatusDraft:         true,
			discovery.StatusPendingReview: false,
			discovery.StatusAccepted:      false,
			discovery.StatusDeclined:      true,
		},
		catalog.TypeComet: {
			discovery.StatusDraft:         true,
			discovery.StatusPendingReview: false,
			discovery.StatusAccepted:      false,
			discovery.StatusDeclined:      true,
		},
	}

	for bodyType, byStatus := range cases {
		for status, wantAllowed := range byStatus {
			name := bodyType.String() + "/" + status.String()
			t.Run(name, func(t *testing.T) {
				discoveries := discoverystore.NewMemory()
				body := seedBodyWithDiscovery(t, discoveries, bodyType, owner, status)
				evaluator := policy.New(discoveries)

				err := evaluator.CanMutate(context.Background(), body, owner, id.RoleUser)
				if wantAllowed {
					assert.NoError(t, err)
				} else {
					assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden), "expected forbidden, got %v", err)
				}
			})
		}
	}
}

// Non-admin owners can never mutate an asteroid in any status. The underlying
// condition reads "draft AND declined", which no status satisfies; the
// behavior is intentionally preserved, and this test pins it.
func TestCanMutate_AsteroidNeverMutable(t *testing.T) {
	owner := mustUserID("8a3c2f6e-1111-4222-8333-444455556666")

	for _, status := range []discovery.Status{
		discovery.StatusDraft,
		discovery.StatusPendingReview,
		discovery.StatusAccepted,
		discovery.StatusDeclined,
	} {
		t.Run(status.String(), func(t *testing.T) {
			discoveries := discoverystore.NewMemory()
			body := seedBodyWithDiscovery(t, discoveries, catalog.TypeAsteroid, owner, status)
			evaluator := policy.New(discoveries)

			err := evaluator.CanMutate(context.Background(), body, owner, id.RoleUser)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		})
	}
}

func TestCanMutate_AdminAlwaysAllowed(t *testing.T) {
	admin := mustUserID("00000000-0000-4000-8000-000000000001")
	owner := mustUserID("00000000-0000-4000-8000-000000000002")

	discoveries := discoverystore.NewMemory()
	body := seedBodyWithDiscovery(t, discoveries, catalog.TypeAsteroid, owner, discovery.StatusAccepted)
	evaluator := policy.New(discoveries)

	assert.NoError(t, evaluator.CanMutate(context.Background(), body, admin, id.RoleAdmin))
}

func TestCanMutate_NonOwnerDenied(t *testing.T) {
	owner := mustUserID("00000000-0000-4000-8000-000000000002")
	stranger := mustUserID("00000000-0000-4000-8000-000000000003")

	discoveries := discoverystore.NewMemory()
	body := seedBodyWithDiscovery(t, discoveries, catalog.TypeStar, owner, discovery.StatusDraft)
	evaluator := policy.New(discoveries)

	err := evaluator.CanMutate(context.Background(), body, stranger, id.RoleUser)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

// A body with no discovery is administrator-owned canonical data: regular
// users are denied with the same opaque forbidden as every other denial.
func TestCanMutate_NoDiscoveryDenied(t *testing.T) {
	user := mustUserID("00000000-0000-4000-8000-000000000004")

	discoveries := discoverystore.NewMemory()
	body := &catalog.CelestialBody{ID: id.NewBodyID(), Name: "Ganymede", Type: catalog.TypeSatellite}
	evaluator := policy.New(discoveries)

	err := evaluator.CanMutate(context.Background(), body, user, id.RoleUser)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	var de *dErrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "not allowed to modify this object", de.Message)
}

type failingLookup struct{}

func (failingLookup) FindByBodyID(context.Context, id.BodyID) (*discovery.Discovery, error) {
	return nil, errors.New("connection reset")
}

func TestCanMutate_LookupFailureIsInternal(t *testing.T) {
	user := mustUserID("00000000-0000-4000-8000-000000000005")
	body := &catalog.CelestialBody{ID: id.NewBodyID(), Name: "Vega", Type: catalog.TypeStar}

	evaluator := policy.New(failingLookup{})
	err := evaluator.CanMutate(context.Background(), body, user, id.RoleUser)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func mustUserID(s string) id.UserID {
	parsed, err := id.ParseUserID(s)
	if err != nil {
		panic(err)
	}
	return parsed
}
