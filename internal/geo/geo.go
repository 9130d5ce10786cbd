// Package geo provides great-circle distance math for nearby queries and
// travel-time heuristics.
package geo

import "math"

// EarthRadiusM is the mean Earth radius in meters (WGS84 approximate).
const EarthRadiusM = 6371000.0

// DistanceMeters returns the haversine great-circle distance in meters
// between two points given in degrees.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}

// BoundingBox returns approximate lat/lng deltas in degrees for a box that
// contains a circle of radiusM meters centred on (lat, lng). Used as an
// index-friendly prefilter before the exact haversine check.
func BoundingBox(lat, _ float64, radiusM float64) (dLat, dLng float64) {
	// 1 deg latitude ~ 111 km; 1 deg longitude ~ 111 km * cos(lat).
	km := radiusM / 1000.0
	dLat = km / 111.0
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLng = km / (111.0 * cosLat)
	return dLat, dLng
}
