package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(provider DataProvider) *Service {
	return NewService(Config{Provider: provider, Logger: zerolog.Nop()})
}

func TestRecommendResolvesBuilding(t *testing.T) {
	now := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		building: func(_ context.Context, id string) (*Building, error) {
			require.Equal(t, "siebel", id)
			return &Building{ID: "siebel", Name: "Siebel Center", Lat: destPos.Lat, Lng: destPos.Lng}, nil
		},
	}

	options, err := newTestService(provider).Recommend(context.Background(), Request{
		Lat:                   riderPos.Lat,
		Lng:                   riderPos.Lng,
		DestinationBuildingID: "siebel",
		ArriveBy:              now.Add(45 * time.Minute).Format(time.RFC3339),
		WalkingSpeedMPS:       1.4,
		BufferMinutes:         2,
		MaxOptions:            3,
		Now:                   now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, options)
	assert.Contains(t, options[0].Summary, "Siebel Center")
}

func TestRecommendExplicitCoordinatesWinOverBuilding(t *testing.T) {
	now := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		building: func(_ context.Context, _ string) (*Building, error) {
			t.Fatal("building lookup must be skipped when coordinates are given")
			return nil, nil
		},
	}

	lat, lng := destPos.Lat, destPos.Lng
	options, err := newTestService(provider).Recommend(context.Background(), Request{
		Lat:                   riderPos.Lat,
		Lng:                   riderPos.Lng,
		DestinationBuildingID: "siebel",
		DestinationLat:        &lat,
		DestinationLng:        &lng,
		DestinationName:       "somewhere",
		ArriveBy:              now.Add(45 * time.Minute).Format(time.RFC3339),
		WalkingSpeedMPS:       1.4,
		MaxOptions:            3,
		Now:                   now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, options)
}

func TestRecommendBuildingNotFound(t *testing.T) {
	provider := &fakeProvider{
		building: func(_ context.Context, _ string) (*Building, error) { return nil, nil },
	}

	_, err := newTestService(provider).Recommend(context.Background(), Request{
		DestinationBuildingID: "nope",
		ArriveBy:              time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrBuildingNotFound)
}

func TestRecommendMissingDestination(t *testing.T) {
	_, err := newTestService(&fakeProvider{}).Recommend(context.Background(), Request{
		ArriveBy: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrMissingDestination)
}

func TestRecommendInvalidArriveBy(t *testing.T) {
	for _, raw := range []string{"", "tomorrow", "2025-09-15 10:00"} {
		_, err := newTestService(&fakeProvider{}).Recommend(context.Background(), Request{
			DestinationBuildingID: "siebel",
			ArriveBy:              raw,
		})
		assert.ErrorIs(t, err, ErrInvalidArriveBy, "input %q", raw)
	}
}
