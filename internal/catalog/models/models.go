// Package models defines the celestial body aggregate: a root record with a
// type discriminator plus at most one type-specific specialization sharing
// its id. The specialization is a tagged union keyed by BodyType, so query
// and policy code dispatch on the tag instead of probing nullable fields.
package models

import (
	"time"

	id "astrarium/pkg/domain"
)

// BodyType discriminates the concrete specialization of a celestial body.
// Values are wire-visible and match the reference data seeded in the
// celestial_body_types table.
type BodyType int

const (
	TypeStar         BodyType = 1
	TypePlanet       BodyType = 2
	TypeAsteroid     BodyType = 3
	TypeSatellite    BodyType = 4
	TypeGalaxyQuasar BodyType = 5
	TypeComet        BodyType = 6
)

// Valid reports whether t is a known body type.
func (t BodyType) Valid() bool {
	return t >= TypeStar && t <= TypeComet
}

var typeSlugs = map[BodyType]string{
	TypeStar:         "stars",
	TypePlanet:       "planets",
	TypeAsteroid:     "asteroids",
	TypeSatellite:    "satellites",
	TypeGalaxyQuasar: "galaxy-quasars",
	TypeComet:        "comets",
}

// Slug returns the URL path segment for the type, e.g. "galaxy-quasars".
func (t BodyType) Slug() string { return typeSlugs[t] }

func (t BodyType) String() string {
	switch t {
	case TypeStar:
		return "star"
	case TypePlanet:
		return "planet"
	case TypeAsteroid:
		return "asteroid"
	case TypeSatellite:
		return "satellite"
	case TypeGalaxyQuasar:
		return "galaxy_quasar"
	case TypeComet:
		return "comet"
	default:
		return "unknown"
	}
}

// TypeFromSlug resolves a URL path segment back to a body type.
func TypeFromSlug(slug string) (BodyType, bool) {
	for t, s := range typeSlugs {
		if s == slug {
			return t, true
		}
	}
	return 0, false
}

// CelestialBody is the root record for any astronomical object. A body owns
// at most one specialization (Spec may be nil for bare reference rows) and
// zero or one discovery dossier, tracked by the discovery domain.
type CelestialBody struct {
	ID        id.BodyID
	Name      string
	Alias     *string
	Type      BodyType
	Spec      Specialization
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Specialization is the tagged union of type-specific detail records. A
// specialization shares its identity with the owning body.
type Specialization interface {
	// Kind returns the discriminator tag for this variant.
	Kind() BodyType
	// SubclassID returns the optional sub-classification foreign key
	// (spectral class, planet type, orbital class, galaxy/quasar class),
	// or nil for variants without one.
	SubclassID() *int
}

// Star holds stellar parameters. Distances are light years, masses solar
// masses, temperatures kelvin.
type Star struct {
	Mass            *float64 `json:"mass,omitempty"`
	Radius          *float64 `json:"radius,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	Luminosity      *float64 `json:"luminosity,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	SpectralClassID *int     `json:"spectral_class_id,omitempty"`
}

func (*Star) Kind() BodyType     { return TypeStar }
func (s *Star) SubclassID() *int { return s.SpectralClassID }

// Planet holds planetary parameters. Masses are Earth masses, radii km.
type Planet struct {
	Mass              *float64 `json:"mass,omitempty"`
	Radius            *float64 `json:"radius,omitempty"`
	Distance          *float64 `json:"distance,omitempty"`
	OrbitalPeriodDays *float64 `json:"orbital_period_days,omitempty"`
	MoonCount         *int     `json:"moon_count,omitempty"`
	PlanetTypeID      *int     `json:"planet_type_id,omitempty"`
}

func (*Planet) Kind() BodyType     { return TypePlanet }
func (p *Planet) SubclassID() *int { return p.PlanetTypeID }

// Asteroid holds minor-planet parameters. Diameters are km.
type Asteroid struct {
	DiameterMin    *float64 `json:"diameter_min,omitempty"`
	DiameterMax    *float64 `json:"diameter_max,omitempty"`
	Distance       *float64 `json:"distance,omitempty"`
	Hazardous      bool     `json:"hazardous"`
	OrbitalClassID *int     `json:"orbital_class_id,omitempty"`
}

func (*Asteroid) Kind() BodyType     { return TypeAsteroid }
func (a *Asteroid) SubclassID() *int { return a.OrbitalClassID }

// Satellite holds natural-satellite parameters. Satellites are seeded
// administratively and are not submittable through the discovery pipeline.
type Satellite struct {
	Radius            *float64 `json:"radius,omitempty"`
	OrbitalPeriodDays *float64 `json:"orbital_period_days,omitempty"`
	Apoapsis          *float64 `json:"apoapsis,omitempty"`
	Periapsis         *float64 `json:"periapsis,omitempty"`
	ParentName        *string  `json:"parent_name,omitempty"`
}

func (*Satellite) Kind() BodyType   { return TypeSatellite }
func (*Satellite) SubclassID() *int { return nil }

// GalaxyQuasar holds deep-sky parameters. Distance is megaparsecs.
type GalaxyQuasar struct {
	Distance            *float64 `json:"distance,omitempty"`
	Mass                *float64 `json:"mass,omitempty"`
	Redshift            *float64 `json:"redshift,omitempty"`
	GalaxyQuasarClassID *int     `json:"galaxy_quasar_class_id,omitempty"`
}

func (*GalaxyQuasar) Kind() BodyType     { return TypeGalaxyQuasar }
func (g *GalaxyQuasar) SubclassID() *int { return g.GalaxyQuasarClassID }

// Comet holds cometary orbit parameters. Aphelion/perihelion are AU.
type Comet struct {
	OrbitalPeriodDays *float64 `json:"orbital_period_days,omitempty"`
	Eccentricity      *float64 `json:"eccentricity,omitempty"`
	Aphelion          *float64 `json:"aphelion,omitempty"`
	Perihelion        *float64 `json:"perihelion,omitempty"`
	Diameter          *float64 `json:"diameter,omitempty"`
}

func (*Comet) Kind() BodyType   { return TypeComet }
func (*Comet) SubclassID() *int { return nil }

// NewSpecialization returns a zero-valued variant for the given type, used
// when decoding type-tagged payloads.
func NewSpecialization(t BodyType) Specialization {
	switch t {
	case TypeStar:
		return &Star{}
	case TypePlanet:
		return &Planet{}
	case TypeAsteroid:
		return &Asteroid{}
	case TypeSatellite:
		return &Satellite{}
	case TypeGalaxyQuasar:
		return &GalaxyQuasar{}
	case TypeComet:
		return &Comet{}
	default:
		return nil
	}
}
