// Package search implements the public catalog query engine. Filtering and
// sorting are strategy-dispatched: a registry keyed by body type supplies the
// subtype sub-filter, and a registry keyed by sort key supplies the sort
// projection. New subtypes register here without touching the core loop.
package search

import (
	"sort"
	"strings"

	"astrarium/internal/catalog/models"
)

// DefaultSortKey is used when the requested sort key is unknown or empty.
const DefaultSortKey = "name"

// subFilter narrows results for one concrete subtype. It only runs when the
// request selects exactly that type, since nested filter blocks cannot be
// attributed to rows of a heterogeneous result set.
type subFilter func(f models.SearchFilter, body models.CelestialBody) bool

var subFilters = map[models.BodyType]subFilter{
	models.TypeStar:         filterStar,
	models.TypePlanet:       filterPlanet,
	models.TypeAsteroid:     filterAsteroid,
	models.TypeGalaxyQuasar: filterGalaxyQuasar,
	models.TypeComet:        filterComet,
}

// projection computes a nullable sort key for a body. Bodies projecting nil
// sort after all others regardless of direction.
type projection func(body models.CelestialBody) *float64

var sortKeys = map[string]projection{
	"distance":    projectDistance,
	"radius":      projectRadius,
	"mass":        projectMass,
	"temperature": projectTemperature,
	// "name" is handled separately: it sorts on a string, not a number.
}

// Apply runs the composed predicates, sorts, and paginates. The caller is
// responsible for supplying only publicly visible bodies and for clamping
// page and pageSize to at least 1. Total is the match count before paging.
func Apply(bodies []models.CelestialBody, f models.SearchFilter, page, pageSize int) ([]models.CelestialBody, int) {
	matched := make([]models.CelestialBody, 0, len(bodies))
	single, hasSingle := f.SingleType()
	for _, body := range bodies {
		if !f.WantsType(body.Type) {
			continue
		}
		if !matchText(f.Text, body) {
			continue
		}
		if !matchSubclass(f.SubclassID, body) {
			continue
		}
		if hasSingle && body.Type == single {
			if sub, ok := subFilters[single]; ok && !sub(f, body) {
				continue
			}
		}
		matched = append(matched, body)
	}

	sortBodies(matched, f.SortBy, f.SortDesc)

	total := len(matched)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []models.CelestialBody{}, total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return matched[offset:end], total
}

// matchText is a case-insensitive substring match against name or alias.
func matchText(text string, body models.CelestialBody) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(body.Name), needle) {
		return true
	}
	return body.Alias != nil && strings.Contains(strings.ToLower(*body.Alias), needle)
}

// matchSubclass matches the sub-classification across whichever variant is
// present. At most one branch can hold since a body has one specialization.
func matchSubclass(subclassID *int, body models.CelestialBody) bool {
	if subclassID == nil {
		return true
	}
	if body.Spec == nil {
		return false
	}
	got := body.Spec.SubclassID()
	return got != nil && *got == *subclassID
}

func sortBodies(bodies []models.CelestialBody, key string, desc bool) {
	project, ok := sortKeys[strings.ToLower(key)]
	if !ok {
		// Unknown or empty key falls back to the name strategy.
		sort.SliceStable(bodies, func(i, j int) bool {
			a, b := strings.ToLower(bodies[i].Name), strings.ToLower(bodies[j].Name)
			if desc {
				return a > b
			}
			return a < b
		})
		return
	}
	sort.SliceStable(bodies, func(i, j int) bool {
		a, b := project(bodies[i]), project(bodies[j])
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false // nils last
		case b == nil:
			return true
		case desc:
			return *a > *b
		default:
			return *a < *b
		}
	})
}
