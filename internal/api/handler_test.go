package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/balloon-scene/internal/models"
	"github.com/mr1hm/balloon-scene/internal/stream"
)

// mockSource implements SceneSource for testing
type mockSource struct {
	mu    sync.Mutex
	scene *models.Scene
	err   error
	calls int
}

func (m *mockSource) Get(ctx context.Context) (*models.Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.scene, m.err
}

func float(f float64) *float64 { return &f }

func testScene() *models.Scene {
	ts := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC)
	fire := models.Fire{Lat: 12, Lon: 22, Brightness: float(300), Satellite: "N"}

	return &models.Scene{
		Flights: []models.Flight{
			{
				ID: "balloon-0",
				Track: []models.Point{
					{ID: "balloon-0", Lat: 9, Lon: 19, Timestamp: ts.Add(-time.Hour)},
					{ID: "balloon-0", Lat: 10, Lon: 20, Altitude: float(100), Timestamp: ts},
				},
				Latest:      models.Point{ID: "balloon-0", Lat: 10, Lon: 20, Altitude: float(100), Timestamp: ts},
				FireSummary: models.FireSummary{MinDistanceKM: float(313.6), ClosestFire: &fire},
			},
			{
				ID:     "balloon-1",
				Track:  []models.Point{{ID: "balloon-1", Lat: 11, Lon: 21, Timestamp: ts}},
				Latest: models.Point{ID: "balloon-1", Lat: 11, Lon: 21, Timestamp: ts},
			},
		},
		Fires:       []models.Fire{fire},
		Bounds:      &models.BoundingRegion{MinLat: 7, MaxLat: 13, MinLon: 17, MaxLon: 23},
		GeneratedAt: ts,
	}
}

func setupTestRouter(source SceneSource, b *stream.Broadcaster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(source, b, time.Minute)
	handler.RegisterRoutes(router)
	return router
}

func TestGetScene_ReturnsScene(t *testing.T) {
	router := setupTestRouter(&mockSource{scene: testScene()}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/scene", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	for _, key := range []string{"flights", "fires", "bounds", "generated_at"} {
		if _, ok := body[key]; !ok {
			t.Errorf("expected key %q in response", key)
		}
	}

	flights := body["flights"].([]any)
	if len(flights) != 2 {
		t.Fatalf("expected 2 flights, got %d", len(flights))
	}
	second := flights[1].(map[string]any)
	summary := second["fire_summary"].(map[string]any)
	if summary["min_distance_km"] != nil || summary["closest_fire"] != nil {
		t.Errorf("expected null fire summary fields, got %v", summary)
	}
	latest := second["latest"].(map[string]any)
	if v, ok := latest["altitude"]; !ok || v != nil {
		t.Errorf("expected altitude to be present and null, got %v", v)
	}
	bounds := body["bounds"].(map[string]any)
	if bounds["minLat"] != float64(7) || bounds["maxLon"] != float64(23) {
		t.Errorf("unexpected bounds: %v", bounds)
	}
}

func TestGetScene_Error(t *testing.T) {
	router := setupTestRouter(&mockSource{err: errors.New("boom")}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/scene", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Error("expected an error indicator in the body")
	}
}

func TestGetSceneGeoJSON(t *testing.T) {
	router := setupTestRouter(&mockSource{scene: testScene()}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/scene/geojson", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}

	wantTypes := []string{"LineString", "Point", "Point"}
	wantKinds := []string{"flight", "flight", "fire"}
	for i, f := range fc.Features {
		if f.Geometry.Type != wantTypes[i] {
			t.Errorf("feature %d: expected %s, got %s", i, wantTypes[i], f.Geometry.Type)
		}
		if f.Properties["kind"] != wantKinds[i] {
			t.Errorf("feature %d: expected kind %s, got %v", i, wantKinds[i], f.Properties["kind"])
		}
	}

	var line [][]float64
	json.Unmarshal(fc.Features[0].Geometry.Coordinates, &line)
	if len(line) != 2 || line[1][0] != 20 || line[1][1] != 10 {
		t.Errorf("expected [lon, lat] line coordinates, got %v", line)
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(&mockSource{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestStreamScene_Disabled(t *testing.T) {
	router := setupTestRouter(&mockSource{scene: testScene()}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/scene/stream", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestStreamScene_SendsCurrentAndNewer(t *testing.T) {
	b := stream.NewBroadcaster()
	defer b.Close()

	initial := testScene()
	router := setupTestRouter(&mockSource{scene: initial}, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(ctx, "GET", "/api/scene/stream", nil)

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// same generation is not repeated
	b.Broadcast(initial)

	newer := testScene()
	newer.GeneratedAt = initial.GeneratedAt.Add(5 * time.Minute)
	b.Broadcast(newer)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after client disconnect")
	}

	body := w.Body.String()
	if n := strings.Count(body, "event:scene"); n != 2 {
		t.Errorf("expected 2 scene events, got %d:\n%s", n, body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("expected text/event-stream, got %s", ct)
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("expected stream to unsubscribe, got %d subscribers", b.SubscriberCount())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(2))
	NewHandler(&mockSource{}, nil, time.Minute).RegisterRoutes(router)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Error("expected Retry-After on a limited response")
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected burst of 2 to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request to be limited, got %d", codes[2])
	}
}
