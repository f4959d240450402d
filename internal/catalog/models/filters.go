package models

// Range is an optional closed numeric interval. A nil bound is open. When
// either bound is set, a body whose projected value is absent does not match.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether the range places no constraint at all.
func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// Contains reports whether the optional value v satisfies the range.
func (r Range) Contains(v *float64) bool {
	if r.IsZero() {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// StarFilter narrows stars when the search targets exactly that type.
type StarFilter struct {
	Temperature Range `json:"temperature"`
	Mass        Range `json:"mass"`
	Distance    Range `json:"distance"`
}

// PlanetFilter narrows planets when the search targets exactly that type.
type PlanetFilter struct {
	Mass     Range `json:"mass"`
	Distance Range `json:"distance"`
	Radius   Range `json:"radius"`
}

// AsteroidFilter narrows asteroids when the search targets exactly that type.
type AsteroidFilter struct {
	Diameter  Range `json:"diameter"`
	Hazardous *bool `json:"hazardous,omitempty"`
}

// GalaxyQuasarFilter narrows galaxies/quasars when the search targets exactly
// that type.
type GalaxyQuasarFilter struct {
	Distance Range `json:"distance"`
	Redshift Range `json:"redshift"`
}

// CometFilter narrows comets when the search targets exactly that type.
type CometFilter struct {
	OrbitalPeriodDays Range `json:"orbital_period_days"`
	Eccentricity      Range `json:"eccentricity"`
}

// SearchFilter is the composite search request. Subtype filter blocks apply
// only when Types selects exactly one type; with zero or several types there
// is no way to tell which block describes which row, so they are skipped.
type SearchFilter struct {
	Text       string     `json:"text"`
	Types      []BodyType `json:"types"`
	SubclassID *int       `json:"subclass_id,omitempty"`

	Star         *StarFilter         `json:"star,omitempty"`
	Planet       *PlanetFilter       `json:"planet,omitempty"`
	Asteroid     *AsteroidFilter     `json:"asteroid,omitempty"`
	GalaxyQuasar *GalaxyQuasarFilter `json:"galaxy_quasar,omitempty"`
	Comet        *CometFilter        `json:"comet,omitempty"`

	SortBy   string `json:"sort_by"`
	SortDesc bool   `json:"sort_desc"`
}

// SingleType returns the requested type when exactly one is selected.
func (f SearchFilter) SingleType() (BodyType, bool) {
	if len(f.Types) == 1 {
		return f.Types[0], true
	}
	return 0, false
}

// WantsType reports whether t passes the coarse type-membership predicate.
func (f SearchFilter) WantsType(t BodyType) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}
