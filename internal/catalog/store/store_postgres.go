package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"astrarium/internal/catalog/models"
	discovery "astrarium/internal/discovery/models"
	id "astrarium/pkg/domain"
	"astrarium/pkg/platform/sentinel"
	txcontext "astrarium/pkg/platform/tx"
)

// Postgres persists celestial bodies and their specializations. The root row
// lives in celestial_bodies; each variant has its own table sharing the body
// id as primary key. All methods honor a transaction carried in the context,
// so the same code path serves pooled reads and the submission transaction.
type Postgres struct {
	db *sql.DB
}

// NewPostgres builds a postgres-backed body store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Insert writes the root row and, when present, the specialization row.
func (s *Postgres) Insert(ctx context.Context, body *models.CelestialBody) error {
	q := s.q(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO celestial_bodies (id, name, alias, body_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(body.ID), body.Name, body.Alias, int(body.Type), body.CreatedAt, body.UpdatedAt,
	)
	if err != nil {
		return translatePQ(err, "insert celestial body")
	}
	if body.Spec == nil {
		return nil
	}
	return s.insertSpec(ctx, q, body.ID, body.Spec)
}

func (s *Postgres) insertSpec(ctx context.Context, q querier, bodyID id.BodyID, spec models.Specialization) error {
	var err error
	switch v := spec.(type) {
	case *models.Star:
		_, err = q.ExecContext(ctx, `
			INSERT INTO stars (body_id, mass, radius, temperature, luminosity, distance, spectral_class_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.UUID(bodyID), v.Mass, v.Radius, v.Temperature, v.Luminosity, v.Distance, v.SpectralClassID)
	case *models.Planet:
		_, err = q.ExecContext(ctx, `
			INSERT INTO planets (body_id, mass, radius, distance, orbital_period_days, moon_count, planet_type_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.UUID(bodyID), v.Mass, v.Radius, v.Distance, v.OrbitalPeriodDays, v.MoonCount, v.PlanetTypeID)
	case *models.Asteroid:
		_, err = q.ExecContext(ctx, `
			INSERT INTO asteroids (body_id, diameter_min, diameter_max, distance, hazardous, orbital_class_id)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(bodyID), v.DiameterMin, v.DiameterMax, v.Distance, v.Hazardous, v.OrbitalClassID)
	case *models.Satellite:
		_, err = q.ExecContext(ctx, `
			INSERT INTO satellites (body_id, radius, orbital_period_days, apoapsis, periapsis, parent_name)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(bodyID), v.Radius, v.OrbitalPeriodDays, v.Apoapsis, v.Periapsis, v.ParentName)
	case *models.GalaxyQuasar:
		_, err = q.ExecContext(ctx, `
			INSERT INTO galaxy_quasars (body_id, distance, mass, redshift, galaxy_quasar_class_id)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.UUID(bodyID), v.Distance, v.Mass, v.Redshift, v.GalaxyQuasarClassID)
	case *models.Comet:
		_, err = q.ExecContext(ctx, `
			INSERT INTO comets (body_id, orbital_period_days, eccentricity, aphelion, perihelion, diameter)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(bodyID), v.OrbitalPeriodDays, v.Eccentricity, v.Aphelion, v.Perihelion, v.Diameter)
	default:
		return fmt.Errorf("unknown specialization %T", spec)
	}
	if err != nil {
		return translatePQ(err, "insert specialization")
	}
	return nil
}

// FindByID loads a body regardless of discovery visibility.
func (s *Postgres) FindByID(ctx context.Context, bodyID id.BodyID) (*models.CelestialBody, error) {
	q := s.q(ctx)
	body, err := s.scanBody(q.QueryRowContext(ctx, `
		SELECT id, name, alias, body_type, created_at, updated_at
		FROM celestial_bodies WHERE id = $1`, uuid.UUID(bodyID)))
	if err != nil {
		return nil, err
	}
	if err := s.loadSpecs(ctx, q, []*models.CelestialBody{body}); err != nil {
		return nil, err
	}
	return body, nil
}

// FindVisibleByID loads a body only when it is publicly visible: no
// discovery at all, or an accepted one.
func (s *Postgres) FindVisibleByID(ctx context.Context, bodyID id.BodyID) (*models.CelestialBody, error) {
	q := s.q(ctx)
	body, err := s.scanBody(q.QueryRowContext(ctx, `
		SELECT b.id, b.name, b.alias, b.body_type, b.created_at, b.updated_at
		FROM celestial_bodies b
		LEFT JOIN discoveries d ON d.body_id = b.id
		WHERE b.id = $1 AND (d.id IS NULL OR d.status = $2)`,
		uuid.UUID(bodyID), int(discovery.StatusAccepted)))
	if err != nil {
		return nil, err
	}
	if err := s.loadSpecs(ctx, q, []*models.CelestialBody{body}); err != nil {
		return nil, err
	}
	return body, nil
}

// ListVisible returns every publicly visible body with its specialization
// attached. The query engine composes everything finer-grained in memory.
func (s *Postgres) ListVisible(ctx context.Context) ([]models.CelestialBody, error) {
	q := s.q(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT b.id, b.name, b.alias, b.body_type, b.created_at, b.updated_at
		FROM celestial_bodies b
		LEFT JOIN discoveries d ON d.body_id = b.id
		WHERE d.id IS NULL OR d.status = $1
		ORDER BY b.name`, int(discovery.StatusAccepted))
	if err != nil {
		return nil, fmt.Errorf("list visible bodies: %w", err)
	}
	defer rows.Close()

	var bodies []*models.CelestialBody
	for rows.Next() {
		body, err := s.scanBody(rows)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visible bodies: %w", err)
	}
	if err := s.loadSpecs(ctx, q, bodies); err != nil {
		return nil, err
	}
	out := make([]models.CelestialBody, len(bodies))
	for i, b := range bodies {
		out[i] = *b
	}
	return out, nil
}

// Update rewrites the root row and replaces the specialization row.
func (s *Postgres) Update(ctx context.Context, body *models.CelestialBody) error {
	q := s.q(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE celestial_bodies SET name = $2, alias = $3, updated_at = $4 WHERE id = $1`,
		uuid.UUID(body.ID), body.Name, body.Alias, body.UpdatedAt)
	if err != nil {
		return translatePQ(err, "update celestial body")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	if body.Spec == nil {
		return nil
	}
	if err := s.deleteSpec(ctx, q, body.ID, body.Type); err != nil {
		return err
	}
	return s.insertSpec(ctx, q, body.ID, body.Spec)
}

// Delete removes the root row; specialization and discovery rows cascade.
func (s *Postgres) Delete(ctx context.Context, bodyID id.BodyID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM celestial_bodies WHERE id = $1`, uuid.UUID(bodyID))
	if err != nil {
		return translatePQ(err, "delete celestial body")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

var specTables = map[models.BodyType]string{
	models.TypeStar:         "stars",
	models.TypePlanet:       "planets",
	models.TypeAsteroid:     "asteroids",
	models.TypeSatellite:    "satellites",
	models.TypeGalaxyQuasar: "galaxy_quasars",
	models.TypeComet:        "comets",
}

func (s *Postgres) deleteSpec(ctx context.Context, q querier, bodyID id.BodyID, t models.BodyType) error {
	table, ok := specTables[t]
	if !ok {
		return fmt.Errorf("unknown body type %d", t)
	}
	_, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE body_id = $1`, uuid.UUID(bodyID))
	if err != nil {
		return translatePQ(err, "delete specialization")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanBody(row rowScanner) (*models.CelestialBody, error) {
	var body models.CelestialBody
	var rawID uuid.UUID
	var rawType int
	err := row.Scan(&rawID, &body.Name, &body.Alias, &rawType, &body.CreatedAt, &body.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan celestial body: %w", err)
	}
	body.ID = id.BodyID(rawID)
	body.Type = models.BodyType(rawType)
	return &body, nil
}

// loadSpecs batch-loads each variant table for the given bodies.
func (s *Postgres) loadSpecs(ctx context.Context, q querier, bodies []*models.CelestialBody) error {
	byType := make(map[models.BodyType][]uuid.UUID)
	index := make(map[uuid.UUID]*models.CelestialBody, len(bodies))
	for _, b := range bodies {
		byType[b.Type] = append(byType[b.Type], uuid.UUID(b.ID))
		index[uuid.UUID(b.ID)] = b
	}
	for t, ids := range byType {
		if err := s.loadSpecType(ctx, q, t, ids, index); err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) loadSpecType(ctx context.Context, q querier, t models.BodyType, ids []uuid.UUID, index map[uuid.UUID]*models.CelestialBody) error {
	var query string
	switch t {
	case models.TypeStar:
		query = `SELECT body_id, mass, radius, temperature, luminosity, distance, spectral_class_id
			FROM stars WHERE body_id = ANY($1)`
	case models.TypePlanet:
		query = `SELECT body_id, mass, radius, distance, orbital_period_days, moon_count, planet_type_id
			FROM planets WHERE body_id = ANY($1)`
	case models.TypeAsteroid:
		query = `SELECT body_id, diameter_min, diameter_max, distance, hazardous, orbital_class_id
			FROM asteroids WHERE body_id = ANY($1)`
	case models.TypeSatellite:
		query = `SELECT body_id, radius, orbital_period_days, apoapsis, periapsis, parent_name
			FROM satellites WHERE body_id = ANY($1)`
	case models.TypeGalaxyQuasar:
		query = `SELECT body_id, distance, mass, redshift, galaxy_quasar_class_id
			FROM galaxy_quasars WHERE body_id = ANY($1)`
	case models.TypeComet:
		query = `SELECT body_id, orbital_period_days, eccentricity, aphelion, perihelion, diameter
			FROM comets WHERE body_id = ANY($1)`
	default:
		return fmt.Errorf("unknown body type %d", t)
	}

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load %s: %w", specTables[t], err)
	}
	defer rows.Close()

	for rows.Next() {
		var bodyID uuid.UUID
		var spec models.Specialization
		switch t {
		case models.TypeStar:
			v := &models.Star{}
			err = rows.Scan(&bodyID, &v.Mass, &v.Radius, &v.Temperature, &v.Luminosity, &v.Distance, &v.SpectralClassID)
			spec = v
		case models.TypePlanet:
			v := &models.Planet{}
			err = rows.Scan(&bodyID, &v.Mass, &v.Radius, &v.Distance, &v.OrbitalPeriodDays, &v.MoonCount, &v.PlanetTypeID)
			spec = v
		case models.TypeAsteroid:
			v := &models.Asteroid{}
			err = rows.Scan(&bodyID, &v.DiameterMin, &v.DiameterMax, &v.Distance, &v.Hazardous, &v.OrbitalClassID)
			spec = v
		case models.TypeSatellite:
			v := &models.Satellite{}
			err = rows.Scan(&bodyID, &v.Radius, &v.OrbitalPeriodDays, &v.Apoapsis, &v.Periapsis, &v.ParentName)
			spec = v
		case models.TypeGalaxyQuasar:
			v := &models.GalaxyQuasar{}
			err = rows.Scan(&bodyID, &v.Distance, &v.Mass, &v.Redshift, &v.GalaxyQuasarClassID)
			spec = v
		case models.TypeComet:
			v := &models.Comet{}
			err = rows.Scan(&bodyID, &v.OrbitalPeriodDays, &v.Eccentricity, &v.Aphelion, &v.Perihelion, &v.Diameter)
			spec = v
		}
		if err != nil {
			return fmt.Errorf("scan %s: %w", specTables[t], err)
		}
		if body, ok := index[bodyID]; ok {
			body.Spec = spec
		}
	}
	return rows.Err()
}

// translatePQ maps driver errors onto store sentinels.
func translatePQ(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
