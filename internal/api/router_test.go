package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/quadroute/quadroute/internal/api"
	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/auth"
	"github.com/quadroute/quadroute/internal/building"
	"github.com/quadroute/quadroute/internal/dataprovider"
	"github.com/quadroute/quadroute/internal/directions"
	"github.com/quadroute/quadroute/internal/geocode"
	"github.com/quadroute/quadroute/internal/gtfs"
	"github.com/quadroute/quadroute/internal/recommend"
	"github.com/quadroute/quadroute/internal/schedule"
	"github.com/quadroute/quadroute/internal/stops"
	"github.com/quadroute/quadroute/internal/transit"
	"github.com/quadroute/quadroute/pkg/polyline"
)

const testAPIKey = "key-test-1234"

// Campus fixture: Illini Union area coordinates.
const (
	unionLat = 40.1092
	unionLng = -88.2272
)

type stubDepartureProvider struct{}

func (p *stubDepartureProvider) GetDeparturesByStop(_ context.Context, stopID string, _ int) ([]transit.Departure, error) {
	if stopID != "IU" {
		return []transit.Departure{}, nil
	}
	at := time.Now().Add(6 * time.Minute)
	return []transit.Departure{
		{StopID: "IU", Route: "22N", Headsign: "Illini North", ExpectedMins: 6, Realtime: true, ExpectedAt: &at},
	}, nil
}

func (p *stubDepartureProvider) Name() string { return "stub-departures" }

type stubVehicleProvider struct{}

func (p *stubVehicleProvider) GetVehicles(_ context.Context) ([]transit.Vehicle, error) {
	return []transit.Vehicle{
		{ID: "v1", RouteID: "22N", Lat: unionLat, Lng: unionLng, Heading: 90, UpdatedAt: time.Now()},
		{ID: "v2", RouteID: "5W", Lat: unionLat, Lng: unionLng, Heading: 270, UpdatedAt: time.Now()},
	}, nil
}

func (p *stubVehicleProvider) Name() string { return "stub-vehicles" }

type stubGeocoder struct{}

func (p *stubGeocoder) Search(_ context.Context, query string, limit int, _ bool) ([]geocode.Place, error) {
	place := geocode.Place{
		Name:        "Green Street Cafe",
		DisplayName: "Green Street Cafe, Champaign, IL",
		Lat:         40.1103,
		Lng:         -88.2330,
	}
	if limit < 1 {
		return nil, nil
	}
	_ = query
	return []geocode.Place{place}, nil
}

func (p *stubGeocoder) Name() string { return "stub-geocoder" }

type stubWalkRouter struct{}

func (p *stubWalkRouter) WalkRoute(_ context.Context, origLat, origLng, destLat, destLng float64) (*directions.WalkRoute, error) {
	return &directions.WalkRoute{
		Coords: []polyline.Coordinate{
			{Lat: origLat, Lng: origLng},
			{Lat: destLat, Lng: destLng},
		},
		DistanceM: 420,
		DurationS: 300,
	}, nil
}

func (p *stubWalkRouter) Name() string { return "stub-walk" }

type testEnv struct {
	router http.Handler
	auth   *auth.Service
}

func newTestEnv(t *testing.T, authRequired bool) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	authService := auth.NewService(auth.ServiceConfig{
		Required: authRequired,
		APIKeys:  testAPIKey,
		JWT: auth.NewJWTService(auth.JWTConfig{
			SigningKey: "test-secret-key-for-testing-only",
			Issuer:     "https://api.quadroute.app",
			Audience:   "quadroute-api",
		}),
		Logger: logger,
	})

	buildingRepo := building.NewInMemoryRepository()
	require.NoError(t, buildingRepo.Upsert(context.Background(), &building.Building{
		ID:   "grainger",
		Name: "Grainger Engineering Library",
		Lat:  40.1125,
		Lng:  -88.2269,
	}))
	buildingService := building.NewService(building.ServiceConfig{
		Repository: buildingRepo,
		Logger:     logger,
	})

	scheduleService := schedule.NewService(schedule.NewInMemoryRepository())

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	stopsRepo := stops.NewSQLiteRepository(db)
	require.NoError(t, stopsRepo.EnsureSchema(context.Background()))
	require.NoError(t, stopsRepo.ReplaceAll(context.Background(), []stops.Stop{
		{ID: "IU", Code: "IU", Name: "Illini Union", Lat: 40.1095, Lng: -88.2273},
	}))

	gtfsDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	gtfsDB.SetMaxOpenConns(1)
	t.Cleanup(func() { gtfsDB.Close() })
	gtfsRepo := gtfs.NewSQLiteRepository(gtfsDB)
	require.NoError(t, gtfsRepo.EnsureSchema(context.Background()))

	transitService := transit.NewService(transit.ServiceConfig{
		Departures: &stubDepartureProvider{},
		Vehicles:   &stubVehicleProvider{},
		Logger:     logger,
	})

	provider := dataprovider.New(dataprovider.Config{
		Buildings: buildingService,
		Stops:     stopsRepo,
		Transit:   transitService,
		Logger:    logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2026-01-01T00:00:00Z",
		Logger:      logger,
		AuthService: authService,
		RecommendService: recommend.NewService(recommend.Config{
			Provider: provider,
			Logger:   logger,
		}),
		TransitService:  transitService,
		StopsRepository: stopsRepo,
		BuildingService: buildingService,
		ScheduleService: scheduleService,
		GeocodeService: geocode.NewService(geocode.ServiceConfig{
			Provider: &stubGeocoder{},
			Logger:   logger,
		}),
		DirectionsService: directions.NewService(directions.ServiceConfig{
			Provider: &stubWalkRouter{},
			Logger:   logger,
		}),
		GTFSService: gtfs.NewService(gtfs.ServiceConfig{
			Repository: gtfsRepo,
			Logger:     logger,
		}),
	})

	return &testEnv{router: router, auth: authService}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SystemStatus_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_SystemStatus(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/ops/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotEmpty(t, status.Subsystems)
}

func TestRouter_AuthToken(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token",
		bytes.NewReader([]byte(fmt.Sprintf(`{"api_key":%q}`, testAPIKey))))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// The minted token works as a bearer credential
	statusReq := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	statusReq.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	statusW := httptest.NewRecorder()
	env.router.ServeHTTP(statusW, statusReq)
	assert.Equal(t, http.StatusOK, statusW.Code)
}

func TestRouter_AuthToken_InvalidKey(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token",
		bytes.NewReader([]byte(`{"api_key":"wrong"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Geocode(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/geocode?q=green+street+cafe", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var place models.Place
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &place))
	assert.Equal(t, "Green Street Cafe", place.Name)
	assert.InDelta(t, 40.1103, place.Lat, 1e-6)
}

func TestRouter_Geocode_MissingQuery(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/geocode", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Autocomplete_BuildingsFirst(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/autocomplete?q=grainger", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SuggestionList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "building", resp.Suggestions[0].Source)
	assert.Equal(t, "grainger", resp.Suggestions[0].BuildingID)
}

func TestRouter_NearbyStops(t *testing.T) {
	env := newTestEnv(t, true)

	path := fmt.Sprintf("/v1/stops/nearby?lat=%f&lng=%f&radius_m=800", unionLat, unionLng)
	w := env.do(t, http.MethodGet, path, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.NearbyStopList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Stops, 1)
	assert.Equal(t, "IU", resp.Stops[0].ID)
	assert.Greater(t, resp.Stops[0].DistanceM, 0.0)
}

func TestRouter_NearbyStops_BadRadius(t *testing.T) {
	env := newTestEnv(t, true)

	path := fmt.Sprintf("/v1/stops/nearby?lat=%f&lng=%f&radius_m=50", unionLat, unionLng)
	w := env.do(t, http.MethodGet, path, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Departures(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/stops/IU/departures?minutes=30", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var board models.DepartureBoard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Equal(t, "IU", board.StopID)
	require.Len(t, board.Departures, 1)
	assert.Equal(t, "22N", board.Departures[0].Route)
}

func TestRouter_Departures_InvalidStopID(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/stops/bad%20id/departures", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Vehicles_FilteredByRoute(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/vehicles?route_id=22N", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.VehicleList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Vehicles, 1)
	assert.Equal(t, "v1", resp.Vehicles[0].ID)
}

func TestRouter_Buildings(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/buildings", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.BuildingList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Buildings, 1)
	assert.Equal(t, "grainger", resp.Buildings[0].ID)
}

func TestRouter_BuildingSearch(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/buildings/search?q=grainger+library", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.BuildingMatchList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Matches)
	assert.Equal(t, "grainger", resp.Matches[0].Building.ID)
	assert.Positive(t, resp.Matches[0].Score)
}

func TestRouter_ScheduleLifecycle(t *testing.T) {
	env := newTestEnv(t, true)

	create := models.ClassCreateRequest{
		Title:      "CS 225",
		Days:       []string{"MON", "WED", "FRI"},
		StartTime:  "10:00",
		EndTime:    "10:50",
		BuildingID: strPtr("grainger"),
	}
	w := env.do(t, http.MethodPost, "/v1/schedule/classes", create)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var class models.Class
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &class))
	assert.Equal(t, "CS 225", class.Title)
	assert.NotEmpty(t, class.ID)

	w = env.do(t, http.MethodGet, "/v1/schedule/classes", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var list models.ClassList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = env.do(t, http.MethodDelete, "/v1/schedule/classes/"+class.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/schedule/classes/"+class.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ComputeRecommendations(t *testing.T) {
	env := newTestEnv(t, true)

	input := models.RecommendationRequest{
		Lat:                   unionLat,
		Lng:                   unionLng,
		DestinationBuildingID: "grainger",
		ArriveBy:              time.Now().Add(45 * time.Minute).Format(time.RFC3339),
	}
	w := env.do(t, http.MethodPost, "/v1/recommendations:compute", input)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Options)

	// The walk option is always present within a generous deadline
	var sawWalk bool
	for _, opt := range resp.Options {
		if opt.Type == "WALK" {
			sawWalk = true
			require.Len(t, opt.Steps, 1)
			assert.Equal(t, "WALK_TO_DEST", opt.Steps[0].Type)
		}
	}
	assert.True(t, sawWalk)
}

func TestRouter_ComputeRecommendations_UnknownBuilding(t *testing.T) {
	env := newTestEnv(t, true)

	input := models.RecommendationRequest{
		Lat:                   unionLat,
		Lng:                   unionLng,
		DestinationBuildingID: "nope",
		ArriveBy:              time.Now().Add(45 * time.Minute).Format(time.RFC3339),
	}
	w := env.do(t, http.MethodPost, "/v1/recommendations:compute", input)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
}

func TestRouter_ComputeRecommendations_BadArriveBy(t *testing.T) {
	env := newTestEnv(t, true)

	input := models.RecommendationRequest{
		Lat:                   unionLat,
		Lng:                   unionLng,
		DestinationBuildingID: "grainger",
		ArriveBy:              "tomorrow-ish",
	}
	w := env.do(t, http.MethodPost, "/v1/recommendations:compute", input)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ComputeRecommendations_MissingDestination(t *testing.T) {
	env := newTestEnv(t, true)

	input := models.RecommendationRequest{
		Lat:      unionLat,
		Lng:      unionLng,
		ArriveBy: time.Now().Add(45 * time.Minute).Format(time.RFC3339),
	}
	w := env.do(t, http.MethodPost, "/v1/recommendations:compute", input)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_WalkDirections(t *testing.T) {
	env := newTestEnv(t, true)

	path := fmt.Sprintf("/v1/directions/walk?orig_lat=%f&orig_lng=%f&dest_lat=%f&dest_lng=%f",
		unionLat, unionLng, 40.1125, -88.2269)
	w := env.do(t, http.MethodGet, path, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.WalkDirections
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Coords, 2)
	assert.False(t, resp.Fallback)
	assert.InDelta(t, 420, resp.DistanceM, 1e-9)
}

func TestRouter_WalkDirections_MissingParam(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/directions/walk?orig_lat=40.1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RouteStops_EmptyDataset(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet,
		"/v1/gtfs/route-stops?route_id=22N&from_stop_id=IU&to_stop_id=TRANSIT&after_time=10:00", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RouteStops
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Stops)
	assert.Empty(t, resp.TripID)
}

func TestRouter_AuthDisabled_NoCredentialNeeded(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/v1/buildings", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.do(t, http.MethodGet, "/v1/nonexistent", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func strPtr(s string) *string {
	return &s
}
