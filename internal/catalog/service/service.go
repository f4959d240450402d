// Package service orchestrates reads and policy-gated mutations of the
// public celestial body catalog.
package service

import (
	"context"
	"errors"
	"time"

	"astrarium/internal/catalog/models"
	"astrarium/internal/catalog/search"
	"astrarium/internal/platform/metrics"
	id "astrarium/pkg/domain"
	dErrors "astrarium/pkg/domain-errors"
	"astrarium/pkg/platform/audit"
	"astrarium/pkg/platform/sentinel"
	"astrarium/pkg/requestcontext"
)

// Store is the body persistence the catalog needs.
type Store interface {
	FindByID(ctx context.Context, bodyID id.BodyID) (*models.CelestialBody, error)
	FindVisibleByID(ctx context.Context, bodyID id.BodyID) (*models.CelestialBody, error)
	ListVisible(ctx context.Context) ([]models.CelestialBody, error)
	Update(ctx context.Context, body *models.CelestialBody) error
	Delete(ctx context.Context, bodyID id.BodyID) error
}

// Policy gates every specialization mutation.
type Policy interface {
	CanMutate(ctx context.Context, body *models.CelestialBody, actorID id.UserID, role id.Role) error
}

// TxRunner wraps fn in one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher records catalog mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// UpdateInput carries a specialization edit. Nil fields are left unchanged;
// a non-nil Spec replaces the scientific fields wholesale.
type UpdateInput struct {
	Name  *string
	Alias *string
	Spec  models.Specialization
}

// Service serves the catalog read and mutation paths.
type Service struct {
	store   Store
	policy  Policy
	tx      TxRunner
	auditor AuditPublisher
	metrics *metrics.Metrics
}

// New builds the catalog service. metrics may be nil in tests.
func New(store Store, policy Policy, tx TxRunner, auditor AuditPublisher, m *metrics.Metrics) *Service {
	return &Service{store: store, policy: policy, tx: tx, auditor: auditor, metrics: m}
}

// Search runs the query engine over the visible catalog. page and pageSize
// must already be clamped to at least 1 by the caller.
func (s *Service) Search(ctx context.Context, filter models.SearchFilter, page, pageSize int) ([]models.CelestialBody, int, error) {
	start := time.Now()
	bodies, err := s.store.ListVisible(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "list catalog")
	}
	items, total := search.Apply(bodies, filter, page, pageSize)
	if s.metrics != nil {
		s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}
	return items, total, nil
}

// Get returns a publicly visible body.
func (s *Service) Get(ctx context.Context, bodyID id.BodyID) (*models.CelestialBody, error) {
	body, err := s.store.FindVisibleByID(ctx, bodyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "celestial body not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load celestial body")
	}
	return body, nil
}

// Update mutates a body's name, alias, or specialization, gated by the
// policy evaluator. subtype comes from the route; a mismatch with the stored
// discriminator is indistinguishable from an unknown id on purpose.
func (s *Service) Update(ctx context.Context, bodyID id.BodyID, subtype models.BodyType, in UpdateInput, actorID id.UserID, role id.Role) error {
	body, err := s.load(ctx, bodyID, subtype)
	if err != nil {
		return err
	}
	if err := s.policy.CanMutate(ctx, body, actorID, role); err != nil {
		return err
	}
	if in.Spec != nil && in.Spec.Kind() != body.Type {
		return dErrors.New(dErrors.CodeBadRequest, "payload does not match the object's type")
	}

	if in.Name != nil {
		if *in.Name == "" {
			return dErrors.New(dErrors.CodeBadRequest, "name must not be empty")
		}
		body.Name = *in.Name
	}
	if in.Alias != nil {
		body.Alias = in.Alias
	}
	if in.Spec != nil {
		body.Spec = in.Spec
	}
	body.UpdatedAt = requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, body); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:    audit.ActionBodyUpdated,
			ActorID:   audit.ActorString(actorID),
			ActorRole: string(role),
			BodyID:    body.ID.String(),
			Subtype:   body.Type.String(),
			RequestID: requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update could not be persisted")
	}
	return nil
}

// Delete removes a body and, by cascade, its specialization and discovery.
func (s *Service) Delete(ctx context.Context, bodyID id.BodyID, subtype models.BodyType, actorID id.UserID, role id.Role) error {
	body, err := s.load(ctx, bodyID, subtype)
	if err != nil {
		return err
	}
	if err := s.policy.CanMutate(ctx, body, actorID, role); err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, bodyID); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:    audit.ActionBodyDeleted,
			ActorID:   audit.ActorString(actorID),
			ActorRole: string(role),
			BodyID:    body.ID.String(),
			Subtype:   body.Type.String(),
			RequestID: requestcontext.RequestID(ctx),
		})
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete could not be persisted")
	}
	return nil
}

func (s *Service) load(ctx context.Context, bodyID id.BodyID, subtype models.BodyType) (*models.CelestialBody, error) {
	body, err := s.store.FindByID(ctx, bodyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "celestial body not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load celestial body")
	}
	if body.Type != subtype {
		return nil, dErrors.New(dErrors.CodeNotFound, "celestial body not found")
	}
	return body, nil
}
