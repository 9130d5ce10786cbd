package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quadroute/quadroute/internal/geo"
)

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{40.11, -88.22, 40.1138, -88.2246},
		{52.3676, 4.9041, 52.0907, 5.1214},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{0, 0, 0, 180},
	}

	for _, p := range pairs {
		ab := geo.DistanceMeters(p[0], p[1], p[2], p[3])
		ba := geo.DistanceMeters(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-6)
	}
}

func TestDistanceMeters_Zero(t *testing.T) {
	assert.Equal(t, 0.0, geo.DistanceMeters(40.11, -88.22, 40.11, -88.22))
	assert.Equal(t, 0.0, geo.DistanceMeters(0, 0, 0, 0))
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	// Equator point and its antipode at 180 degrees longitude: half the
	// Earth's circumference, pi * R, within 1 km.
	d := geo.DistanceMeters(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*geo.EarthRadiusM, d, 1000)
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// Roughly 500 m across the UIUC quad area.
	d := geo.DistanceMeters(40.1096, -88.2272, 40.1066, -88.2235)
	assert.Greater(t, d, 300.0)
	assert.Less(t, d, 700.0)
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	lat, lng := 40.11, -88.22
	dLat, dLng := geo.BoundingBox(lat, lng, 800)

	// Box edge points must be at least 800 m away.
	assert.GreaterOrEqual(t, geo.DistanceMeters(lat, lng, lat+dLat, lng), 790.0)
	assert.GreaterOrEqual(t, geo.DistanceMeters(lat, lng, lat, lng+dLng), 790.0)
}

func TestBoundingBox_NearPoles(t *testing.T) {
	// Longitude delta is clamped so the box never degenerates at high latitudes.
	_, dLng := geo.BoundingBox(89.9, 0, 800)
	assert.False(t, math.IsInf(dLng, 1))
	assert.False(t, math.IsNaN(dLng))
}
