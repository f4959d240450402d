package handler

import (
	"time"

	"astrarium/internal/catalog/models"
)

// BodyResponse is the public JSON view of a celestial body. Details carries
// the type-specific specialization fields and is omitted for bare rows.
type BodyResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Alias     *string               `json:"alias,omitempty"`
	Type      string                `json:"type"`
	Details   models.Specialization `json:"details,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewBodyResponse renders a body for the wire.
func NewBodyResponse(b *models.CelestialBody) BodyResponse {
	return BodyResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		Alias:     b.Alias,
		Type:      b.Type.String(),
		Details:   b.Spec,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type searchResponse struct {
	Items []BodyResponse `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
}
