// Package domain holds typed identifiers shared across the service. Wrapping
// uuid.UUID in distinct types makes cross-type assignment a compile error, so
// a discovery id can never be passed where a body id is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "astrarium/pkg/domain-errors"
)

// UserID identifies a submitter or moderator.
type UserID uuid.UUID

// BodyID identifies a celestial body; its specialization shares the same id.
type BodyID uuid.UUID

// DiscoveryID identifies a discovery dossier.
type DiscoveryID uuid.UUID

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id BodyID) String() string      { return uuid.UUID(id).String() }
func (id DiscoveryID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id BodyID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id DiscoveryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewBodyID allocates a fresh body id. Ids are always server-assigned.
func NewBodyID() BodyID { return BodyID(uuid.New()) }

// NewDiscoveryID allocates a fresh discovery id.
func NewDiscoveryID() DiscoveryID { return DiscoveryID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and converts a raw string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return UserID(uuid.Nil), err
	}
	return UserID(parsed), nil
}

// ParseBodyID validates and converts a raw string into a BodyID.
func ParseBodyID(raw string) (BodyID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return BodyID(uuid.Nil), err
	}
	return BodyID(parsed), nil
}

// ParseDiscoveryID validates and converts a raw string into a DiscoveryID.
func ParseDiscoveryID(raw string) (DiscoveryID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return DiscoveryID(uuid.Nil), err
	}
	return DiscoveryID(parsed), nil
}
