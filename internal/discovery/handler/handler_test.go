package handler_test

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cataloghandler "astrarium/internal/catalog/handler"
	"astrarium/internal/catalog/policy"
	catalogservice "astrarium/internal/catalog/service"
	catalogstore "astrarium/internal/catalog/store"
	discoveryhandler "astrarium/internal/discovery/handler"
	discoveryservice "astrarium/internal/discovery/service"
	discoverystore "astrarium/internal/discovery/store"
	id "astrarium/pkg/domain"
	"astrarium/pkg/platform/audit"
	"astrarium/pkg/testutil"
)

const (
	submitterID = "11111111-1111-4111-8111-111111111111"
	adminID     = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
)

type appFixture struct {
	router      chi.Router
	bodies      *catalogstore.Memory
	discoveries *discoverystore.Memory
}

// newApp wires both handlers onto one router the way main does, minus the
// auth middleware: tests inject identity straight into the request context.
func newApp(t *testing.T) *appFixture {
	t.Helper()
	discoveries := discoverystore.NewMemory()
	bodies := catalogstore.NewMemory(discoveries)
	auditor := audit.NewPublisher(audit.NewMemoryStore())
	tx := &discoverystore.MemoryTxRunner{Bodies: bodies, Discoveries: discoveries}
	logger := slog.New(slog.DiscardHandler)

	workflow := discoveryservice.New(bodies, discoveries, tx, auditor, nil)
	catalog := catalogservice.New(bodies, policy.New(discoveries), tx, auditor, nil)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		cataloghandler.New(catalog, logger).RegisterPublic(r)
		cataloghandler.New(catalog, logger).RegisterProtected(r)
		discoveryhandler.New(workflow, logger).Register(r)
	})
	return &appFixture{router: router, bodies: bodies, discoveries: discoveries}
}

type submitPayload struct {
	Title   string         `json:"title"`
	Details map[string]any `json:"details"`
}

func submitPlanet(t *testing.T, fx *appFixture, user string) map[string]any {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/planets", submitPayload{
		Title:   "Candidate exoplanet",
		Details: map[string]any{"name": "Kepler-442b", "mass": 2.3},
	})
	req = testutil.WithAuth(req, user, id.RoleUser)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatusOK(t, rr)
	return *testutil.UnmarshalResponse[map[string]any](t, rr)
}

func TestSubmit_ReturnsCompositeView(t *testing.T) {
	fx := newApp(t)
	view := submitPlanet(t, fx, submitterID)

	assert.Equal(t, "Candidate exoplanet", view["title"])
	assert.Equal(t, "draft", view["status"])
	assert.Equal(t, submitterID, view["user_id"])

	body, ok := view["body"].(map[string]any)
	require.True(t, ok, "response must embed the created body")
	assert.Equal(t, "Kepler-442b", body["name"])
	assert.Equal(t, "planet", body["type"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.3, details["mass"])
}

func TestSubmit_UnknownSubtypeRejected(t *testing.T) {
	fx := newApp(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/black-holes", submitPayload{Title: "t"})
	req = testutil.WithAuth(req, submitterID, id.RoleUser)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unsupported_operation")
}

func TestSubmit_SatellitesNotSubmittable(t *testing.T) {
	fx := newApp(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/satellites", submitPayload{
		Title:   "t",
		Details: map[string]any{"name": "Moonlet"},
	})
	req = testutil.WithAuth(req, submitterID, id.RoleUser)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unsupported_operation")
	assert.Empty(t, fx.bodies.Snapshot())
}

func TestSubmit_RequiresAuthenticatedUser(t *testing.T) {
	fx := newApp(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/planets", submitPayload{
		Title:   "t",
		Details: map[string]any{"name": "n"},
	})
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestGet_InvalidIDIsBadRequest(t *testing.T) {
	fx := newApp(t)
	req := testutil.NewRequest(t, http.MethodGet, "/api/discoveries/not-a-uuid")
	req = testutil.WithAuth(req, submitterID, id.RoleUser)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestModerate_RequiresAdminRole(t *testing.T) {
	fx := newApp(t)
	view := submitPlanet(t, fx, submitterID)
	discoveryID := view["id"].(string)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/"+discoveryID+"/moderate",
		map[string]any{"status": 3})
	req = testutil.WithAuth(req, submitterID, id.RoleUser)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
}

func TestModerate_AdminAccepts(t *testing.T) {
	fx := newApp(t)
	view := submitPlanet(t, fx, submitterID)
	discoveryID := view["id"].(string)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/"+discoveryID+"/moderate",
		map[string]any{"status": 3, "alias_status": 2})
	req = testutil.WithAuth(req, adminID, id.RoleAdmin)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	// The accepted dossier now shows its moderated state to the owner.
	get := testutil.NewRequest(t, http.MethodGet, "/api/discoveries/"+discoveryID)
	get = testutil.WithAuth(get, submitterID, id.RoleUser)
	rr = testutil.DoRequest(fx.router, get)
	testutil.AssertStatusOK(t, rr)
	updated := *testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, "accepted", updated["status"])
	assert.Equal(t, "approved", updated["alias_status"])
}

// End-to-end moderation scenario over HTTP: a user's planet is editable only
// until a moderator accepts it.
func TestPlanetModerationScenario(t *testing.T) {
	fx := newApp(t)
	var bodyID, discoveryID string

	testutil.Given(t, "a user submitted a planet discovery", func(t *testing.T) {
		view := submitPlanet(t, fx, submitterID)
		discoveryID = view["id"].(string)
		bodyID = view["body"].(map[string]any)["id"].(string)
	})

	testutil.When(t, "the dossier is still a draft", func(t *testing.T) {
		t.Run("the owner may edit the planet", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPut, "/api/planets/"+bodyID,
				map[string]any{"details": map[string]any{"mass": 3.1}})
			req = testutil.WithAuth(req, submitterID, id.RoleUser)
			rr := testutil.DoRequest(fx.router, req)
			testutil.AssertStatus(t, rr, http.StatusNoContent)
		})
	})

	testutil.When(t, "a moderator accepts the dossier", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/discoveries/"+discoveryID+"/moderate",
			map[string]any{"status": 3})
		req = testutil.WithAuth(req, adminID, id.RoleAdmin)
		rr := testutil.DoRequest(fx.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	testutil.Then(t, "the owner can no longer edit the planet", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/planets/"+bodyID,
			map[string]any{"details": map[string]any{"mass": 9.9}})
		req = testutil.WithAuth(req, submitterID, id.RoleUser)
		rr := testutil.DoRequest(fx.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	testutil.Then(t, "the accepted planet is publicly visible", func(t *testing.T) {
		rr := testutil.DoRequest(fx.router, testutil.NewRequest(t, http.MethodGet, "/api/celestial-bodies/"+bodyID))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "name", "Kepler-442b")
	})
}

func TestDeleteDraft_OwnerWithdraws(t *testing.T) {
	fx := newApp(t)
	view := submitPlanet(t, fx, submitterID)
	discoveryID := view["id"].(string)

	req := testutil.NewRequest(t, http.MethodDelete, "/api/discoveries/"+discoveryID)
	req = testutil.WithAuth(req, submitterID, id.RoleUser)
	rr := testutil.DoRequest(fx.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Empty(t, fx.bodies.Snapshot(), "the body is withdrawn with the dossier")
}
