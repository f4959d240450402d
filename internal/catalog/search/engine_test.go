package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrarium/internal/catalog/models"
	"astrarium/internal/catalog/search"
	id "astrarium/pkg/domain"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func strp(s string) *string  { return &s }

// fixture returns a small heterogeneous catalog in non-alphabetical order so
// sorting tests mean something.
func fixture() []models.CelestialBody {
	return []models.CelestialBody{
		{
			ID: id.NewBodyID(), Name: "Vega", Type: models.TypeStar,
			Spec: &models.Star{Mass: f64(2.1), Radius: f64(2.3), Temperature: f64(9600), Distance: f64(25), SpectralClassID: intp(1)},
		},
		{
			ID: id.NewBodyID(), Name: "Proxima Centauri", Alias: strp("Alpha Centauri C"), Type: models.TypeStar,
			Spec: &models.Star{Mass: f64(0.12), Radius: f64(0.15), Temperature: f64(3042), Distance: f64(4.2), SpectralClassID: intp(5)},
		},
		{
			ID: id.NewBodyID(), Name: "Kepler-452b", Type: models.TypePlanet,
			Spec: &models.Planet{Mass: f64(5.0), Radius: f64(9500), Distance: f64(1800), PlanetTypeID: intp(1)},
		},
		{
			ID: id.NewBodyID(), Name: "Bennu", Type: models.TypeAsteroid,
			Spec: &models.Asteroid{DiameterMin: f64(0.48), DiameterMax: f64(0.51), Distance: f64(0.9), Hazardous: true, OrbitalClassID: intp(2)},
		},
		{
			ID: id.NewBodyID(), Name: "Ceres", Type: models.TypeAsteroid,
			Spec: &models.Asteroid{DiameterMin: f64(939), DiameterMax: f64(964), Hazardous: false, OrbitalClassID: intp(3)},
		},
		{
			ID: id.NewBodyID(), Name: "3C 273", Type: models.TypeGalaxyQuasar,
			Spec: &models.GalaxyQuasar{Distance: f64(749000), Redshift: f64(0.158), GalaxyQuasarClassID: intp(2)},
		},
		{
			ID: id.NewBodyID(), Name: "Halley", Type: models.TypeComet,
			Spec: &models.Comet{OrbitalPeriodDays: f64(27500), Eccentricity: f64(0.967)},
		},
	}
}

func names(bodies []models.CelestialBody) []string {
	out := make([]string, len(bodies))
	for i, b := range bodies {
		out[i] = b.Name
	}
	return out
}

func TestApply_NoFilterSortsByName(t *testing.T) {
	items, total := search.Apply(fixture(), models.SearchFilter{}, 1, 50)
	assert.Equal(t, 7, total)
	assert.Equal(t, []string{"3C 273", "Bennu", "Ceres", "Halley", "Kepler-452b", "Proxima Centauri", "Vega"}, names(items))
}

func TestApply_TextMatchesNameAndAlias(t *testing.T) {
	items, total := search.Apply(fixture(), models.SearchFilter{Text: "centauri"}, 1, 50)
	require.Equal(t, 1, total)
	assert.Equal(t, "Proxima Centauri", items[0].Name)

	// Alias-only match.
	items, _ = search.Apply(fixture(), models.SearchFilter{Text: "alpha"}, 1, 50)
	require.Len(t, items, 1)
	assert.Equal(t, "Proxima Centauri", items[0].Name)
}

func TestApply_TypeMembership(t *testing.T) {
	filter := models.SearchFilter{Types: []models.BodyType{models.TypeStar, models.TypeComet}}
	items, total := search.Apply(fixture(), filter, 1, 50)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Halley", "Proxima Centauri", "Vega"}, names(items))
}

func TestApply_SubclassMatchesAcrossVariants(t *testing.T) {
	// Subclass 2 is held by an asteroid (orbital class) and a quasar
	// (galaxy/quasar class); the match ORs across whichever variant is present.
	items, total := search.Apply(fixture(), models.SearchFilter{SubclassID: intp(2)}, 1, 50)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"3C 273", "Bennu"}, names(items))
}

func TestApply_SingleTypeSubFilter(t *testing.T) {
	hazardous := true
	filter := models.SearchFilter{
		Types:    []models.BodyType{models.TypeAsteroid},
		Asteroid: &models.AsteroidFilter{Hazardous: &hazardous},
	}
	items, total := search.Apply(fixture(), filter, 1, 50)
	require.Equal(t, 1, total)
	assert.Equal(t, "Bennu", items[0].Name)
}

func TestApply_SubFilterDiameterRange(t *testing.T) {
	filter := models.SearchFilter{
		Types:    []models.BodyType{models.TypeAsteroid},
		Asteroid: &models.AsteroidFilter{Diameter: models.Range{Min: f64(100)}},
	}
	items, total := search.Apply(fixture(), filter, 1, 50)
	require.Equal(t, 1, total)
	assert.Equal(t, "Ceres", items[0].Name)
}

// Sub-filter blocks only apply when exactly one type is requested; with a
// heterogeneous result set the block cannot be attributed to rows and is
// skipped.
func TestApply_SubFilterSkippedForMultipleTypes(t *testing.T) {
	hazardous := true
	filter := models.SearchFilter{
		Types:    []models.BodyType{models.TypeAsteroid, models.TypeComet},
		Asteroid: &models.AsteroidFilter{Hazardous: &hazardous},
	}
	_, total := search.Apply(fixture(), filter, 1, 50)
	assert.Equal(t, 3, total, "both asteroids and the comet should pass")
}

func TestApply_SortByDistance(t *testing.T) {
	items, _ := search.Apply(fixture(), models.SearchFilter{SortBy: "distance"}, 1, 50)
	// Ceres and Halley project no distance and sort last regardless of order.
	assert.Equal(t, []string{"Bennu", "Proxima Centauri", "Vega", "Kepler-452b", "3C 273", "Ceres", "Halley"}, names(items))
}

func TestApply_SortByDistanceDescending(t *testing.T) {
	items, _ := search.Apply(fixture(), models.SearchFilter{SortBy: "distance", SortDesc: true}, 1, 50)
	got := names(items)
	assert.Equal(t, []string{"3C 273", "Kepler-452b", "Vega", "Proxima Centauri", "Bennu"}, got[:5])
	// Nil projections stay at the tail even when descending.
	assert.ElementsMatch(t, []string{"Ceres", "Halley"}, got[5:])
}

func TestApply_SortByTemperature(t *testing.T) {
	filter := models.SearchFilter{Types: []models.BodyType{models.TypeStar}, SortBy: "temperature"}
	items, _ := search.Apply(fixture(), filter, 1, 50)
	assert.Equal(t, []string{"Proxima Centauri", "Vega"}, names(items))
}

// An unknown sort key must behave exactly like the default name sort.
func TestApply_UnknownSortKeyFallsBackToName(t *testing.T) {
	byName, _ := search.Apply(fixture(), models.SearchFilter{SortBy: "name"}, 1, 50)
	byBogus, _ := search.Apply(fixture(), models.SearchFilter{SortBy: "gravitational_flux"}, 1, 50)
	assert.Equal(t, names(byName), names(byBogus))

	byNameDesc, _ := search.Apply(fixture(), models.SearchFilter{SortBy: "name", SortDesc: true}, 1, 50)
	byBogusDesc, _ := search.Apply(fixture(), models.SearchFilter{SortBy: "gravitational_flux", SortDesc: true}, 1, 50)
	assert.Equal(t, names(byNameDesc), names(byBogusDesc))
}

func TestApply_Pagination(t *testing.T) {
	page1, total := search.Apply(fixture(), models.SearchFilter{}, 1, 3)
	require.Equal(t, 7, total)
	assert.Equal(t, []string{"3C 273", "Bennu", "Ceres"}, names(page1))

	page2, _ := search.Apply(fixture(), models.SearchFilter{}, 2, 3)
	assert.Equal(t, []string{"Halley", "Kepler-452b", "Proxima Centauri"}, names(page2))

	page3, _ := search.Apply(fixture(), models.SearchFilter{}, 3, 3)
	assert.Equal(t, []string{"Vega"}, names(page3))

	// Past the end: empty page, total preserved.
	page9, total := search.Apply(fixture(), models.SearchFilter{}, 9, 3)
	assert.Empty(t, page9)
	assert.Equal(t, 7, total)
}

func TestApply_RangeBounds(t *testing.T) {
	star := models.SearchFilter{
		Types: []models.BodyType{models.TypeStar},
		Star:  &models.StarFilter{Distance: models.Range{Max: f64(10)}},
	}
	items, _ := search.Apply(fixture(), star, 1, 50)
	require.Len(t, items, 1)
	assert.Equal(t, "Proxima Centauri", items[0].Name)

	// An empty sub-filter block constrains nothing.
	unconstrained := models.SearchFilter{
		Types:    []models.BodyType{models.TypeAsteroid},
		Asteroid: &models.AsteroidFilter{},
	}
	_, total := search.Apply(fixture(), unconstrained, 1, 50)
	assert.Equal(t, 2, total)
}
