package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrarium/internal/platform/middleware"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
	"astrarium/pkg/requestcontext"
)

var discard = slog.New(slog.DiscardHandler)

type staticValidator struct {
	claims *middleware.TokenClaims
	err    error
}

func (v staticValidator) ValidateToken(string) (*middleware.TokenClaims, error) {
	return v.claims, v.err
}

type staticRevocation struct {
	revoked bool
	err     error
}

func (r staticRevocation) IsRevoked(context.Context, string) (bool, error) {
	return r.revoked, r.err
}

func validClaims(t *testing.T) *middleware.TokenClaims {
	t.Helper()
	userID, err := id.ParseUserID("11111111-1111-4111-8111-111111111111")
	require.NoError(t, err)
	return &middleware.TokenClaims{UserID: userID, Role: id.RoleUser, JTI: "jti-1"}
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when none is supplied", func(t *testing.T) {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
	})

	t.Run("an inbound id survives proxies", func(t *testing.T) {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-id")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "upstream-id", seen)
		assert.Equal(t, "upstream-id", rr.Header().Get("X-Request-ID"))
	})
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("missing bearer token", func(t *testing.T) {
		h := middleware.RequireAuth(staticValidator{claims: validClaims(t)}, nil, discard)(next)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		h := middleware.RequireAuth(staticValidator{err: dErrors.New(dErrors.CodeUnauthorized, "bad")}, nil, discard)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer whatever")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token populates identity in the context", func(t *testing.T) {
		claims := validClaims(t)
		var gotUser id.UserID
		var gotRole id.Role
		h := middleware.RequireAuth(staticValidator{claims: claims}, nil, discard)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = requestcontext.UserID(r.Context())
				gotRole = requestcontext.Role(r.Context())
			}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, claims.UserID, gotUser)
		assert.Equal(t, id.RoleUser, gotRole)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		h := middleware.RequireAuth(staticValidator{claims: validClaims(t)}, staticRevocation{revoked: true}, discard)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("revocation check failure is an internal error", func(t *testing.T) {
		h := middleware.RequireAuth(staticValidator{claims: validClaims(t)}, staticRevocation{err: errors.New("redis down")}, discard)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := middleware.RequireAdmin(discard)(next)

	t.Run("user role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithRole(req.Context(), id.RoleUser))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin role passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithRole(req.Context(), id.RoleAdmin))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusTeapot, rr.Code)
	})
}

func TestContentTypeJSON(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := middleware.ContentTypeJSON(next)

	t.Run("rejects non-JSON bodies on POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Content-Type", "text/xml")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("allows JSON and bodyless requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
