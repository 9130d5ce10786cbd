package building

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, b := range []*Building{
		{ID: "siebel", Name: "Siebel Center for Computer Science", Aliases: []string{"SC", "Siebel"}, Lat: 40.1138, Lng: -88.2249},
		{ID: "grainger", Name: "Grainger Engineering Library", Aliases: []string{"Grainger"}, Lat: 40.1124, Lng: -88.2269},
		{ID: "union", Name: "Illini Union", Aliases: []string{"Union"}, Lat: 40.1092, Lng: -88.2272},
		{ID: "ecell", Name: "Electrical and Computer Engineering Building", Aliases: []string{"ECEB"}, Lat: 40.1149, Lng: -88.2281},
	} {
		require.NoError(t, repo.Upsert(ctx, b))
	}

	return NewService(ServiceConfig{Repository: repo, Logger: zerolog.Nop()})
}

func TestServiceGet(t *testing.T) {
	svc := seededService(t)

	b, err := svc.Get(context.Background(), "siebel")
	require.NoError(t, err)
	assert.Equal(t, "Siebel Center for Computer Science", b.Name)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBuildingNotFound)
}

func TestServiceListOrderedByName(t *testing.T) {
	svc := seededService(t)

	buildings, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, buildings, 4)
	for i := 1; i < len(buildings); i++ {
		assert.Less(t, buildings[i-1].Name, buildings[i].Name)
	}
}

func TestSearchExactAliasWins(t *testing.T) {
	svc := seededService(t)

	matches, err := svc.Search(context.Background(), "ECEB", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "ecell", matches[0].Building.ID)
}

func TestSearchPrefix(t *testing.T) {
	svc := seededService(t)

	matches, err := svc.Search(context.Background(), "grain", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "grainger", matches[0].Building.ID)
}

func TestSearchAllTokensPreferred(t *testing.T) {
	svc := seededService(t)

	// Both "siebel" and "eceb" contain "computer"; only Siebel matches both
	// tokens, so it must rank first.
	matches, err := svc.Search(context.Background(), "siebel computer", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "siebel", matches[0].Building.ID)
}

func TestSearchFallsBackToPartialMatches(t *testing.T) {
	svc := seededService(t)

	// No building matches "zzz", but "union" matches the other token.
	matches, err := svc.Search(context.Background(), "union zzz", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "union", matches[0].Building.ID)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := seededService(t)

	matches, err := svc.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchRespectsLimit(t *testing.T) {
	svc := seededService(t)

	matches, err := svc.Search(context.Background(), "e", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestTokenScore(t *testing.T) {
	tests := []struct {
		query     string
		candidate string
		expected  int
	}{
		{"siebel", "siebel", scoreExact},
		{"sie", "siebel", scorePrefix},
		{"siebelcenter", "siebel", scoreQueryPrefix},
		{"ebe", "siebel", scoreContains},
		{"xyz", "siebel", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tokenScore(tt.query, tt.candidate), "%s vs %s", tt.query, tt.candidate)
	}
}
