// Package models defines the discovery dossier: the moderation record that
// tracks who submitted a celestial body and where it sits in the approval
// lifecycle. A body has zero or one discovery; zero means the body is
// administrator-owned canonical data.
package models

import (
	"time"

	catalog "astrarium/internal/catalog/models"
	id "astrarium/pkg/domain"
)

// Status is the discovery lifecycle state. Values are wire-visible and match
// the discovery_statuses reference table.
type Status int

const (
	StatusDraft         Status = 1
	StatusPendingReview Status = 2
	StatusAccepted      Status = 3
	StatusDeclined      Status = 4
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	return s >= StatusDraft && s <= StatusDeclined
}

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusPendingReview:
		return "pending_review"
	case StatusAccepted:
		return "accepted"
	case StatusDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// AliasStatus tracks moderation of a proposed alias name, decoupled from the
// main lifecycle but judged by the same moderator.
type AliasStatus int

const (
	AliasPending  AliasStatus = 1
	AliasApproved AliasStatus = 2
	AliasRejected AliasStatus = 3
)

// Valid reports whether a is a known alias state.
func (a AliasStatus) Valid() bool {
	return a >= AliasPending && a <= AliasRejected
}

func (a AliasStatus) String() string {
	switch a {
	case AliasPending:
		return "pending"
	case AliasApproved:
		return "approved"
	case AliasRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Discovery is the moderation dossier for one celestial body.
type Discovery struct {
	ID                  id.DiscoveryID
	Title               string
	UserID              id.UserID
	BodyID              id.BodyID
	Status              Status
	ApprovalUserID      *id.UserID
	AliasStatus         *AliasStatus
	AliasApprovalUserID *id.UserID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EditableByOwner reports whether the owner may still change the dossier's
// title or withdraw it. Accepted discoveries are immutable historical record;
// pending ones are frozen while under review.
func (d Discovery) EditableByOwner() bool {
	return d.Status == StatusDraft || d.Status == StatusDeclined
}

// SubmitInput is the validated submission payload. The subtype is implied by
// Spec.Kind(); all ids are server-assigned.
type SubmitInput struct {
	Title string
	Name  string
	Alias *string
	Spec  catalog.Specialization
}

// ModerateInput is a moderator's judgment of a dossier.
type ModerateInput struct {
	Status      Status
	AliasStatus *AliasStatus
}
