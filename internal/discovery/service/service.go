// Package service implements the discovery workflow engine: polymorphic
// submission, moderation, and owner edits of discovery dossiers. Every write
// path runs inside a single database transaction supplied by the TxRunner,
// so a partially created dossier is never observable.
package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	catalog "astrarium/internal/catalog/models"
	"astrarium/internal/discovery/models"
	"astrarium/internal/platform/metrics"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
	"astrarium/pkg/platform/audit"
	"astrarium/pkg/platform/sentinel"
	"astrarium/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=../../../mocks/discovery/mocks.go -package=discoverymocks

// BodyStore is the slice of the celestial body store the workflow needs.
type BodyStore interface {
	Insert(ctx context.Context, body *catalog.CelestialBody) error
	FindByID(ctx context.Context, bodyID id.BodyID) (*catalog.CelestialBody, error)
	Delete(ctx context.Context, bodyID id.BodyID) error
}

// Store persists discovery dossiers.
type Store interface {
	Insert(ctx context.Context, d *models.Discovery) error
	FindByID(ctx context.Context, discoveryID id.DiscoveryID) (*models.Discovery, error)
	FindByBodyID(ctx context.Context, bodyID id.BodyID) (*models.Discovery, error)
	Update(ctx context.Context, d *models.Discovery) error
	Delete(ctx context.Context, discoveryID id.DiscoveryID) error
}

// TxRunner wraps fn in one database transaction. Stores pick the transaction
// up from the context, so everything fn writes commits or rolls back as a
// unit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher records workflow decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the discovery workflow.
type Service struct {
	bodies      BodyStore
	discoveries Store
	tx          TxRunner
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// New builds the workflow service. metrics may be nil in tests.
func New(bodies BodyStore, discoveries Store, tx TxRunner, auditor AuditPublisher, m *metrics.Metrics) *Service {
	return &Service{
		bodies:      bodies,
		discoveries: discoveries,
		tx:          tx,
		auditor:     auditor,
		metrics:     m,
		tracer:      otel.Tracer("astrarium/discovery"),
	}
}

// submittable lists the subtypes users may submit dossiers for. Satellites
// are seeded administratively and deliberately absent.
var submittable = map[catalog.BodyType]bool{
	catalog.TypeStar:         true,
	catalog.TypePlanet:       true,
	catalog.TypeAsteroid:     true,
	catalog.TypeGalaxyQuasar: true,
	catalog.TypeComet:        true,
}

// Submit creates the celestial body, its specialization, and the draft
// dossier as one atomic unit and returns the created records. All ids are
// server-assigned; nothing the client supplies can attach a dossier to an
// existing body.
func (s *Service) Submit(ctx context.Context, in models.SubmitInput, submitterID id.UserID) (*models.Discovery, *catalog.CelestialBody, error) {
	ctx, span := s.tracer.Start(ctx, "discovery.Submit")
	defer span.End()

	if submitterID.IsNil() {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if in.Spec == nil || !submittable[in.Spec.Kind()] {
		return nil, nil, dErrors.New(dErrors.CodeUnsupported, "objects of this type cannot be submitted as discoveries")
	}
	if in.Title == "" {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}
	if in.Name == "" {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, "name must not be empty")
	}
	span.SetAttributes(attribute.String("subtype", in.Spec.Kind().String()))

	now := requestcontext.Now(ctx)
	body := &catalog.CelestialBody{
		ID:        id.NewBodyID(),
		Name:      in.Name,
		Alias:     in.Alias,
		Type:      in.Spec.Kind(),
		Spec:      in.Spec,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d := &models.Discovery{
		ID:        id.NewDiscoveryID(),
		Title:     in.Title,
		UserID:    submitterID,
		BodyID:    body.ID,
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bodies.Insert(ctx, body); err != nil {
			return err
		}
		if err := s.discoveries.Insert(ctx, d); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:      audit.ActionDiscoverySubmitted,
			ActorID:     audit.ActorString(submitterID),
			DiscoveryID: d.ID.String(),
			BodyID:      body.ID.String(),
			Subtype:     body.Type.String(),
			RequestID:   requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission could not be persisted")
	}

	if s.metrics != nil {
		s.metrics.DiscoveriesSubmitted.Inc()
	}
	return d, body, nil
}

// Moderate records a moderator's judgment. Role is re-validated here even
// though the route is admin-gated. Any status-to-status transition is
// currently permitted; there is no transition table, and concurrent
// moderation of the same dossier is last-write-wins.
func (s *Service) Moderate(ctx context.Context, discoveryID id.DiscoveryID, in models.ModerateInput, moderatorID id.UserID, role id.Role) error {
	ctx, span := s.tracer.Start(ctx, "discovery.Moderate")
	defer span.End()

	if !role.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "moderation requires an admin role")
	}
	if !in.Status.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown discovery status")
	}
	if in.AliasStatus != nil && !in.AliasStatus.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown alias status")
	}
	span.SetAttributes(attribute.String("decision", in.Status.String()))

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		d, err := s.discoveries.FindByID(ctx, discoveryID)
		if err != nil {
			return err
		}
		d.Status = in.Status
		d.ApprovalUserID = &moderatorID
		if in.AliasStatus != nil {
			d.AliasStatus = in.AliasStatus
			d.AliasApprovalUserID = &moderatorID
		}
		d.UpdatedAt = requestcontext.Now(ctx)
		if err := s.discoveries.Update(ctx, d); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:      audit.ActionDiscoveryModerated,
			ActorID:     audit.ActorString(moderatorID),
			ActorRole:   string(role),
			DiscoveryID: d.ID.String(),
			BodyID:      d.BodyID.String(),
			Decision:    in.Status.String(),
			RequestID:   requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "discovery not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "moderation could not be persisted")
	}

	if s.metrics != nil {
		s.metrics.Moderations.WithLabelValues(in.Status.String()).Inc()
	}
	return nil
}

// UpdateTitle edits the dossier's general metadata. Accepted dossiers are
// immutable historical record and pending ones are frozen under review, so
// the edit is legal only in draft or declined state, for anyone.
func (s *Service) UpdateTitle(ctx context.Context, discoveryID id.DiscoveryID, title string, actorID id.UserID, role id.Role) error {
	if title == "" {
		return dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		d, err := s.discoveries.FindByID(ctx, discoveryID)
		if err != nil {
			return err
		}
		if !d.EditableByOwner() {
			return dErrors.New(dErrors.CodeInvalidState, "discovery can no longer be edited")
		}
		if d.UserID != actorID && !role.IsAdmin() {
			return dErrors.New(dErrors.CodeForbidden, "not allowed to modify this discovery")
		}
		d.Title = title
		d.UpdatedAt = requestcontext.Now(ctx)
		if err := s.discoveries.Update(ctx, d); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:      audit.ActionDiscoveryUpdated,
			ActorID:     audit.ActorString(actorID),
			DiscoveryID: d.ID.String(),
			BodyID:      d.BodyID.String(),
			RequestID:   requestcontext.RequestID(ctx),
		})
	})
	return translateWorkflowErr(err, "discovery update could not be persisted")
}

// Delete withdraws a dossier together with its body and specialization.
// Owners may withdraw while the dossier is still mutable; admins may always
// delete.
func (s *Service) Delete(ctx context.Context, discoveryID id.DiscoveryID, actorID id.UserID, role id.Role) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		d, err := s.discoveries.FindByID(ctx, discoveryID)
		if err != nil {
			return err
		}
		if !role.IsAdmin() {
			if d.UserID != actorID || !d.EditableByOwner() {
				return dErrors.New(dErrors.CodeForbidden, "not allowed to delete this discovery")
			}
		}
		if err := s.discoveries.Delete(ctx, d.ID); err != nil {
			return err
		}
		if err := s.bodies.Delete(ctx, d.BodyID); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:      audit.ActionDiscoveryDeleted,
			ActorID:     audit.ActorString(actorID),
			ActorRole:   string(role),
			DiscoveryID: d.ID.String(),
			BodyID:      d.BodyID.String(),
			RequestID:   requestcontext.RequestID(ctx),
		})
	})
	return translateWorkflowErr(err, "discovery delete could not be persisted")
}

// Get returns the dossier and its body for the owner or an admin. Dossiers
// are invisible to everyone else until accepted, and accepted ones are served
// through the public catalog instead.
func (s *Service) Get(ctx context.Context, discoveryID id.DiscoveryID, actorID id.UserID, role id.Role) (*models.Discovery, *catalog.CelestialBody, error) {
	d, err := s.discoveries.FindByID(ctx, discoveryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "discovery not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load discovery")
	}
	if d.UserID != actorID && !role.IsAdmin() {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "not allowed to view this discovery")
	}
	body, err := s.bodies.FindByID(ctx, d.BodyID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "load celestial body")
	}
	return d, body, nil
}

// translateWorkflowErr maps store sentinels and passes domain errors through.
func translateWorkflowErr(err error, internalMsg string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "discovery not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}
