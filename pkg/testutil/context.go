package testutil

import (
	"net/http"

	id "astrarium/pkg/domain"
	"astrarium/pkg/requestcontext"
)

// WithUserID adds an authenticated user id to the request context,
// simulating what the auth middleware does. Invalid ids are silently
// ignored so tests can exercise the unauthenticated path.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}

// WithRole sets the actor role on the request context.
func WithRole(req *http.Request, role id.Role) *http.Request {
	return req.WithContext(requestcontext.WithRole(req.Context(), role))
}

// WithAuth adds both user id and role, the typical state of an
// authenticated request.
func WithAuth(req *http.Request, userID string, role id.Role) *http.Request {
	return WithRole(WithUserID(req, userID), role)
}
