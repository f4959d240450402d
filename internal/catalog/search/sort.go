package search

import "astrarium/internal/catalog/models"

// Sort projections reach across whichever specialization is populated. With
// the tagged union there is exactly one variant per body, so "first non-null
// wins" reduces to a switch on the tag.

func projectDistance(body models.CelestialBody) *float64 {
	switch spec := body.Spec.(type) {
	case *models.Planet:
		return spec.Distance
	case *models.Star:
		return spec.Distance
	case *models.GalaxyQuasar:
		return spec.Distance
	case *models.Asteroid:
		return spec.Distance
	default:
		return nil
	}
}

func projectRadius(body models.CelestialBody) *float64 {
	switch spec := body.Spec.(type) {
	case *models.Planet:
		return spec.Radius
	case *models.Star:
		return spec.Radius
	case *models.Satellite:
		return spec.Radius
	case *models.Asteroid:
		// Asteroids record a diameter span; half the upper bound stands in
		// for a radius.
		if spec.DiameterMax == nil {
			return nil
		}
		r := *spec.DiameterMax / 2
		return &r
	default:
		return nil
	}
}

func projectMass(body models.CelestialBody) *float64 {
	switch spec := body.Spec.(type) {
	case *models.Planet:
		return spec.Mass
	case *models.Star:
		return spec.Mass
	case *models.GalaxyQuasar:
		return spec.Mass
	default:
		return nil
	}
}

func projectTemperature(body models.CelestialBody) *float64 {
	if star, ok := body.Spec.(*models.Star); ok {
		return star.Temperature
	}
	return nil
}
