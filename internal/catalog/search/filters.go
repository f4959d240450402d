package search

import "astrarium/internal/catalog/models"

func filterStar(f models.SearchFilter, body models.CelestialBody) bool {
	if f.Star == nil {
		return true
	}
	star, ok := body.Spec.(*models.Star)
	if !ok {
		return false
	}
	return f.Star.Temperature.Contains(star.Temperature) &&
		f.Star.Mass.Contains(star.Mass) &&
		f.Star.Distance.Contains(star.Distance)
}

func filterPlanet(f models.SearchFilter, body models.CelestialBody) bool {
	if f.Planet == nil {
		return true
	}
	planet, ok := body.Spec.(*models.Planet)
	if !ok {
		return false
	}
	return f.Planet.Mass.Contains(planet.Mass) &&
		f.Planet.Distance.Contains(planet.Distance) &&
		f.Planet.Radius.Contains(planet.Radius)
}

func filterAsteroid(f models.SearchFilter, body models.CelestialBody) bool {
	if f.Asteroid == nil {
		return true
	}
	asteroid, ok := body.Spec.(*models.Asteroid)
	if !ok {
		return false
	}
	if f.Asteroid.Hazardous != nil && asteroid.Hazardous != *f.Asteroid.Hazardous {
		return false
	}
	return f.Asteroid.Diameter.Contains(asteroid.DiameterMax)
}

func filterGalaxyQuasar(f models.SearchFilter, body models.CelestialBody) bool {
	if f.GalaxyQuasar == nil {
		return true
	}
	gq, ok := body.Spec.(*models.GalaxyQuasar)
	if !ok {
		return false
	}
	return f.GalaxyQuasar.Distance.Contains(gq.Distance) &&
		f.GalaxyQuasar.Redshift.Contains(gq.Redshift)
}

func filterComet(f models.SearchFilter, body models.CelestialBody) bool {
	if f.Comet == nil {
		return true
	}
	comet, ok := body.Spec.(*models.Comet)
	if !ok {
		return false
	}
	return f.Comet.OrbitalPeriodDays.Contains(comet.OrbitalPeriodDays) &&
		f.Comet.Eccentricity.Contains(comet.Eccentricity)
}
