package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/chrisdamba/trafficsim/internal/devices"
	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/incidents"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/repositories/memory"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticPredictor struct{}

func (staticPredictor) PredictTraffic(ctx context.Context, location string) string {
	return "light traffic at " + location
}

func (staticPredictor) AnalyzeTrends(ctx context.Context) string {
	return "steady"
}

func newTestServer(t *testing.T) (*httptest.Server, *simulator.Simulator) {
	t.Helper()
	cfg := &models.Config{
		Locations:       models.DefaultLocations,
		BootstrapWindow: models.DefaultTickInterval,
		CityLat:         models.DefaultCityLat,
		CityLon:         models.DefaultCityLon,
	}
	factory := factories.NewTrafficSampleFactory(factories.NewRand(1), cfg.BaseLocation())
	sim := simulator.NewSimulator(cfg, memory.NewTrafficSampleRepository(), factory)
	reg := devices.NewRegistry(memory.NewDeviceRepository())
	inc := incidents.NewService(memory.NewIncidentRepository(), zap.NewNop())

	srv := httptest.NewServer(NewServer(sim, reg, inc, staticPredictor{}, zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	return srv, sim
}

func getJSON(t *testing.T, rawURL string, v interface{}) int {
	t.Helper()
	res, err := http.Get(rawURL)
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	return res.StatusCode
}

func postJSON(t *testing.T, rawURL, body string) *http.Response {
	t.Helper()
	res, err := http.Post(rawURL, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func doPut(t *testing.T, rawURL string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, rawURL, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/actuator/health", &body))
	assert.Equal(t, "UP", body["status"])
}

func TestTrafficEndpoints(t *testing.T) {
	srv, sim := newTestServer(t)
	require.NoError(t, sim.RunLiveTick(context.Background()))
	require.NoError(t, sim.RunLiveTick(context.Background()))

	var current []models.TrafficSample
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/traffic/current", &current))
	assert.Len(t, current, 5)

	var history []models.TrafficSample
	path := "/api/traffic/history/" + url.PathEscape("Main St & 1st Ave")
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+path, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "Main St & 1st Ave", history[0].Location)

	var empty []models.TrafficSample
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/traffic/history/Nowhere", &empty))
	assert.Empty(t, empty)

	var prediction map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/traffic/predict/Central%20Square", &prediction))
	assert.Equal(t, "light traffic at Central Square", prediction["prediction"])

	var trends map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/traffic/trends", &trends))
	assert.Equal(t, "steady", trends["analysis"])
}

func TestDeviceEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/api/iot/devices", "application/json",
		strings.NewReader(`{"device_id":"CAM-7","type":"camera","location":"Bridge Entrance"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res, err = http.Post(srv.URL+"/api/iot/devices", "application/json", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var all []models.Device
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/iot/devices", &all))
	require.Len(t, all, 1)
	assert.Equal(t, "CAM-7", all[0].DeviceID)

	var status map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/iot/devices/CAM-7/status", &status))
	assert.Equal(t, models.DeviceStatusOnline, status["status"])

	var notFound map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/iot/devices/ghost/status", &notFound))
	assert.Contains(t, notFound["error"], "device not found")
}

func TestDashboardOverview(t *testing.T) {
	srv, sim := newTestServer(t)
	require.NoError(t, sim.RunLiveTick(context.Background()))

	var body struct {
		TotalOperations    int             `json:"totalOperations"`
		CriticalOperations int             `json:"criticalOperations"`
		TrafficLocations   int             `json:"trafficLocations"`
		Devices            int             `json:"devices"`
		Scheduler          string          `json:"scheduler"`
		Stats              simulator.Stats `json:"stats"`
	}
	postJSON(t, srv.URL+"/api/emergency/incidents", `{"incident_type":"FIRE","location":"Tunnel Exit","severity":5}`)
	postJSON(t, srv.URL+"/api/emergency/incidents", `{"incident_type":"MEDICAL","location":"Central Square","severity":1}`)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/dashboard/overview", &body))
	assert.Equal(t, 2, body.TotalOperations)
	assert.Equal(t, 1, body.CriticalOperations)
	assert.Equal(t, 5, body.TrafficLocations)
	assert.Equal(t, 0, body.Devices)
	assert.Equal(t, "STOPPED", body.Scheduler)
	assert.Equal(t, int64(5), body.Stats.SamplesAppended)
}

func TestIncidentEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	res := postJSON(t, srv.URL+"/api/emergency/incidents",
		`{"incident_type":"TRAFFIC_ACCIDENT","location":"Highway I-95","severity":4,"description":"two cars"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created models.Incident
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, models.IncidentStatusActive, created.Status)
	assert.False(t, created.ReportedAt.IsZero())

	res = postJSON(t, srv.URL+"/api/emergency/incidents", `{"location":"Highway I-95","severity":4}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var active []models.Incident
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/emergency/incidents", &active))
	require.Len(t, active, 1)

	res = doPut(t, srv.URL+"/api/emergency/incidents/"+created.ID+"/resolve")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var resolved models.Incident
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resolved))
	assert.Equal(t, models.IncidentStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/emergency/incidents", &active))
	assert.Empty(t, active)

	res = doPut(t, srv.URL+"/api/emergency/incidents/ghost/resolve")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestWorkflowActions(t *testing.T) {
	srv, _ := newTestServer(t)

	var actions []models.WorkflowAction
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/workflow/actions/TRAFFIC_ACCIDENT", &actions))
	require.Len(t, actions, 3)
	assert.Equal(t, models.WorkflowAction{Action: "Dispatch ambulance", Priority: "HIGH"}, actions[0])

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/workflow/actions/FLOOD", &actions))
	assert.Empty(t, actions)
}

func TestDashboardStats(t *testing.T) {
	srv, _ := newTestServer(t)
	postJSON(t, srv.URL+"/api/iot/devices", `{"device_id":"TS-1"}`)
	postJSON(t, srv.URL+"/api/iot/devices", `{"device_id":"TS-2","status":"offline"}`)
	postJSON(t, srv.URL+"/api/emergency/incidents", `{"incident_type":"TRAFFIC_ACCIDENT","location":"Bridge Entrance","severity":5}`)

	var stats struct {
		TotalOperations    int            `json:"totalOperations"`
		CriticalOperations int            `json:"criticalOperations"`
		ActiveDevices      int            `json:"activeDevices"`
		OperationsByType   map[string]int `json:"operationsByType"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/dashboard/stats", &stats))
	assert.Equal(t, 1, stats.TotalOperations)
	assert.Equal(t, 1, stats.CriticalOperations)
	assert.Equal(t, 1, stats.ActiveDevices)
	assert.Equal(t, map[string]int{"TRAFFIC_ACCIDENT": 1}, stats.OperationsByType)
}
