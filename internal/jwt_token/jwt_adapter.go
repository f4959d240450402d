package jwttoken

import (
	"astrarium/internal/platform/middleware"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
)

// MiddlewareAdapter bridges JWTService to the middleware's validator
// interface, converting raw claims into typed ids.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &middleware.TokenClaims{
		UserID: userID,
		Role:   id.ParseRole(claims.Role),
		JTI:    claims.ID,
	}, nil
}
