package services

import (
	"math"
	"sort"

	"food-storefront/models"
)

// StoreWithDistance pairs a store with its distance from the user.
type StoreWithDistance struct {
	Store    models.Store
	Distance float64
}

// HaversineDistanceKm returns the great-circle distance in km, rounded to 2 decimals.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(R*c*100) / 100
}

// SortStoresByDistance computes distance from the user and returns stores nearest first.
// Stores without coordinates are skipped.
func SortStoresByDistance(userLat, userLon float64, stores []models.Store) []StoreWithDistance {
	withDist := make([]StoreWithDistance, 0, len(stores))
	for _, s := range stores {
		if !s.HasCoords() {
			continue
		}
		withDist = append(withDist, StoreWithDistance{
			Store:    s,
			Distance: HaversineDistanceKm(userLat, userLon, *s.Lat, *s.Lon),
		})
	}
	sort.SliceStable(withDist, func(i, j int) bool {
		return withDist[i].Distance < withDist[j].Distance
	})
	return withDist
}
