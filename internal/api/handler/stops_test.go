package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/transit"
)

type failingDepartureProvider struct{}

func (p *failingDepartureProvider) GetDeparturesByStop(_ context.Context, _ string, _ int) ([]transit.Departure, error) {
	return nil, errors.New("connection refused")
}

func (p *failingDepartureProvider) Name() string { return "failing" }

func newStopsTestRouter(provider transit.DepartureProvider) http.Handler {
	transitService := transit.NewService(transit.ServiceConfig{
		Departures: provider,
		Logger:     zerolog.New(io.Discard),
	})
	h := NewStopsHandler(nil, transitService)

	r := chi.NewRouter()
	r.Get("/v1/stops/nearby", h.Nearby)
	r.Get("/v1/stops/{stopID}/departures", h.Departures)
	return r
}

func TestStopsHandler_Departures_ProviderDown(t *testing.T) {
	router := newStopsTestRouter(&failingDepartureProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stops/IU/departures", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeBadGateway, problem.Type)
}

func TestStopsHandler_Departures_WindowOutOfRange(t *testing.T) {
	router := newStopsTestRouter(&failingDepartureProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stops/IU/departures?minutes=500", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStopsHandler_Nearby_LatOutOfRange(t *testing.T) {
	router := newStopsTestRouter(&failingDepartureProvider{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stops/nearby?lat=123.4&lng=-88.2", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
