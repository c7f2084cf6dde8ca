package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"route-sequencer-service/internal/adapters/repositories"
	"route-sequencer-service/internal/api/dto"
	"route-sequencer-service/internal/api/handlers"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/metrics"
	"route-sequencer-service/internal/ports"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "acme"

func newTestServer(t *testing.T, limiter *TenantLimiter) (*httptest.Server, *repositories.MemoryRepository) {
	t.Helper()

	repo := repositories.NewMemoryRepository()
	add := func(id string, lat, lng *float64, status string) {
		repo.AddOrder(tenant, "driver-1", ports.OrderStop{
			ID:       id,
			Location: domain.NewCoordinates(lat, lng),
			Payload: domain.OrderPayload{
				CustomerName: "Customer " + id,
				AddressText:  "Address " + id,
				Status:       status,
			},
		}, nil)
	}
	f := func(v float64) *float64 { return &v }

	add("east-far", f(-34.9011), f(-56.1325), domain.OrderStatusPending)
	add("north", f(-34.8961), f(-56.1645), domain.OrderStatusPending)
	add("no-geo", nil, nil, domain.OrderStatusPending)
	add("east", f(-34.9011), f(-56.1545), domain.OrderStatusInProgress)
	add("done", f(-34.90), f(-56.16), domain.OrderStatusDelivered)

	routes := &handlers.RouteHandler{Repo: repo, Locations: repo, Store: repo}
	srv := httptest.NewServer(NewRouter(routes, limiter))
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, srv *httptest.Server, method, path, tenantID, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if tenantID != "" {
		req.Header.Set(handlers.TenantHeader, tenantID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res := do(t, srv, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, res))

	res = do(t, srv, http.MethodPost, "/health", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestOptimizeDriverRoute(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res := do(t, srv, http.MethodPost, "/v1/orders/optimize", tenant, `{"driver_id": "driver-1"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decode[dto.OptimizeResponse](t, res)
	ids := make([]string, 0, len(body.Route))
	for i, s := range body.Route {
		assert.Equal(t, i+1, s.DeliverySequence)
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"north", "east", "east-far", "no-geo"}, ids)
	assert.Nil(t, body.Route[3].Lat)
	assert.Equal(t, "Customer north", body.Route[0].CustomerName)

	assert.Equal(t, domain.StartFromDriver, body.StartLocation.Type)
	assert.Equal(t, domain.DefaultStart.Lat, body.StartLocation.Lat)
	assert.Equal(t, 3, body.Stats.ValidStops)
	assert.Equal(t, 1, body.Stats.InvalidStops)
	assert.LessOrEqual(t, body.Stats.RefinedMeters, body.Stats.ConstructedMeters)
}

func TestOptimizeRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		tenant string
		body   string
		status int
	}{
		{"missing tenant", "", `{"driver_id": "driver-1"}`, http.StatusBadRequest},
		{"bad json", tenant, `{"driver_id":`, http.StatusBadRequest},
		{"unknown field", tenant, `{"driver": "driver-1"}`, http.StatusBadRequest},
		{"no selection", tenant, `{}`, http.StatusBadRequest},
		{"bad start_from", tenant, `{"driver_id": "driver-1", "start_from": "moon"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, srv, http.MethodPost, "/v1/orders/optimize", tt.tenant, tt.body)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.NotEmpty(t, decode[map[string]string](t, res)["error"])
		})
	}

	res := do(t, srv, http.MethodGet, "/v1/orders/optimize", tenant, "")
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestSaveSequenceAndLoadingSheet(t *testing.T) {
	srv, repo := newTestServer(t, nil)

	res := do(t, srv, http.MethodPost, "/v1/orders/sequence", tenant,
		`{"sequences": [{"id": "north", "delivery_sequence": 1}, {"id": "east", "delivery_sequence": 2}, {"id": "east-far", "delivery_sequence": 3}]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "sequence updated successfully", decode[dto.MessageResponse](t, res).Message)

	seq, ok := repo.DeliverySequence(tenant, "east-far")
	require.True(t, ok)
	assert.Equal(t, 3, seq)

	res = do(t, srv, http.MethodGet, "/v1/orders/loading-sheet?driver_id=driver-1", tenant, "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	sheet := decode[dto.LoadingSheetResponse](t, res)
	assert.Equal(t, "driver-1", sheet.DriverID)
	ids := make([]string, 0, len(sheet.Items))
	for _, it := range sheet.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"east-far", "east", "north", "no-geo"}, ids)
	assert.Equal(t, 1, sheet.Items[0].LoadPosition)
	assert.Nil(t, sheet.Items[3].DeliverySequence)
}

func TestSaveSequenceErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing sequences", `{}`, http.StatusBadRequest},
		{"not an array", `{"sequences": {"id": "north"}}`, http.StatusBadRequest},
		{"zero sequence", `{"sequences": [{"id": "north", "delivery_sequence": 0}]}`, http.StatusBadRequest},
		{"duplicate id", `{"sequences": [{"id": "north", "delivery_sequence": 1}, {"id": "north", "delivery_sequence": 2}]}`, http.StatusBadRequest},
		{"unknown order", `{"sequences": [{"id": "ghost", "delivery_sequence": 1}]}`, http.StatusNotFound},
		{"empty list", `{"sequences": []}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, srv, http.MethodPost, "/v1/orders/sequence", tenant, tt.body)
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}

func TestLoadingSheetRequiresDriver(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	res := do(t, srv, http.MethodGet, "/v1/orders/loading-sheet", tenant, "")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "driver_id is required", decode[map[string]string](t, res)["error"])

	res = do(t, srv, http.MethodGet, "/v1/orders/loading-sheet?driver_id=driver-1", "", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRateLimitPerTenant(t *testing.T) {
	srv, _ := newTestServer(t, NewTenantLimiter(0.001, 2))
	body := `{"driver_id": "driver-1"}`

	for i := 0; i < 2; i++ {
		res := do(t, srv, http.MethodPost, "/v1/orders/optimize", tenant, body)
		require.Equal(t, http.StatusOK, res.StatusCode, "request %d", i+1)
	}

	res := do(t, srv, http.MethodPost, "/v1/orders/optimize", tenant, body)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("Retry-After"))

	// Other tenants have their own bucket.
	res = do(t, srv, http.MethodPost, "/v1/orders/optimize", "other", body)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// Loading sheets are not limited.
	res = do(t, srv, http.MethodGet, "/v1/orders/loading-sheet?driver_id=driver-1", tenant, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *TenantLimiter
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow(tenant))
	}
	assert.True(t, NewTenantLimiter(0, 0).Allow(tenant))
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RegisterDefault()
	srv, _ := newTestServer(t, nil)

	do(t, srv, http.MethodGet, "/health", "", "")

	res := do(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `http_requests_total{method="GET",path="/health",status="200"}`)
}
