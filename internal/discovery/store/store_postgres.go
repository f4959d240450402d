package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"astrarium/internal/discovery/models"
	id "astrarium/pkg/domain"
	"astrarium/pkg/platform/sentinel"
	txcontext "astrarium/pkg/platform/tx"
)

// Postgres persists discovery dossiers. The body_id column carries a unique
// constraint so the database, not the application, enforces "at most one
// discovery per body" under concurrent submissions.
type Postgres struct {
	db *sql.DB
}

// NewPostgres builds a postgres-backed discovery store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Insert(ctx context.Context, d *models.Discovery) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO discoveries
			(id, title, user_id, body_id, status, approval_user_id, alias_status, alias_approval_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(d.ID), d.Title, uuid.UUID(d.UserID), uuid.UUID(d.BodyID), int(d.Status),
		nullableUser(d.ApprovalUserID), nullableAlias(d.AliasStatus), nullableUser(d.AliasApprovalUserID),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("insert discovery: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert discovery: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, discoveryID id.DiscoveryID) (*models.Discovery, error) {
	return s.scan(s.q(ctx).QueryRowContext(ctx, `
		SELECT id, title, user_id, body_id, status, approval_user_id, alias_status, alias_approval_user_id, created_at, updated_at
		FROM discoveries WHERE id = $1`, uuid.UUID(discoveryID)))
}

func (s *Postgres) FindByBodyID(ctx context.Context, bodyID id.BodyID) (*models.Discovery, error) {
	return s.scan(s.q(ctx).QueryRowContext(ctx, `
		SELECT id, title, user_id, body_id, status, approval_user_id, alias_status, alias_approval_user_id, created_at, updated_at
		FROM discoveries WHERE body_id = $1`, uuid.UUID(bodyID)))
}

func (s *Postgres) Update(ctx context.Context, d *models.Discovery) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE discoveries
		SET title = $2, status = $3, approval_user_id = $4, alias_status = $5, alias_approval_user_id = $6, updated_at = $7
		WHERE id = $1`,
		uuid.UUID(d.ID), d.Title, int(d.Status),
		nullableUser(d.ApprovalUserID), nullableAlias(d.AliasStatus), nullableUser(d.AliasApprovalUserID),
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update discovery: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, discoveryID id.DiscoveryID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM discoveries WHERE id = $1`, uuid.UUID(discoveryID))
	if err != nil {
		return fmt.Errorf("delete discovery: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scan(row *sql.Row) (*models.Discovery, error) {
	var d models.Discovery
	var rawID, rawUser, rawBody uuid.UUID
	var rawStatus int
	var approval, aliasApproval uuid.NullUUID
	var aliasStatus sql.NullInt64

	err := row.Scan(&rawID, &d.Title, &rawUser, &rawBody, &rawStatus,
		&approval, &aliasStatus, &aliasApproval, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan discovery: %w", err)
	}

	d.ID = id.DiscoveryID(rawID)
	d.UserID = id.UserID(rawUser)
	d.BodyID = id.BodyID(rawBody)
	d.Status = models.Status(rawStatus)
	if approval.Valid {
		u := id.UserID(approval.UUID)
		d.ApprovalUserID = &u
	}
	if aliasStatus.Valid {
		a := models.AliasStatus(aliasStatus.Int64)
		d.AliasStatus = &a
	}
	if aliasApproval.Valid {
		u := id.UserID(aliasApproval.UUID)
		d.AliasApprovalUserID = &u
	}
	return &d, nil
}

func nullableUser(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func nullableAlias(a *models.AliasStatus) sql.NullInt64 {
	if a == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*a), Valid: true}
}
