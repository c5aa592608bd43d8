// Package geo provides great-circle distance and travel time estimates
// for dispatch decisions.
package geo

import "math"

const earthRadiusKm = 6371.0

// Unit travel speeds in km/h used for ETA estimates.
const (
	SpeedAmbulance = 40.0
	SpeedFireTruck = 50.0
	SpeedPatrol    = 45.0
)

// DistanceKm returns the haversine distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// ETAMinutes converts a distance into whole minutes at the given speed.
// The result is truncated and never below one minute.
func ETAMinutes(distanceKm, speedKmh float64) int {
	eta := int(distanceKm / speedKmh * 60)
	if eta < 1 {
		eta = 1
	}
	return eta
}
