// Package api exposes the read side of the traffic store, the device
// registry, emergency incidents and the prediction service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chrisdamba/trafficsim/internal/devices"
	"github.com/chrisdamba/trafficsim/internal/incidents"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type TrafficService interface {
	LatestByLocation(ctx context.Context) ([]*models.TrafficSample, error)
	HistoryByLocation(ctx context.Context, location string) ([]*models.TrafficSample, error)
	Stats() simulator.Stats
	State() simulator.State
}

type Predictor interface {
	PredictTraffic(ctx context.Context, location string) string
	AnalyzeTrends(ctx context.Context) string
}

type DeviceService interface {
	All(ctx context.Context) ([]*models.Device, error)
	Register(ctx context.Context, device *models.Device) (*models.Device, error)
	Status(ctx context.Context, deviceID string) (string, error)
}

type IncidentService interface {
	Active(ctx context.Context) ([]*models.Incident, error)
	Report(ctx context.Context, incident *models.Incident) (*models.Incident, error)
	Resolve(ctx context.Context, id string) (*models.Incident, error)
	Summarize(ctx context.Context) (incidents.Summary, error)
}

type Server struct {
	traffic   TrafficService
	devices   DeviceService
	incidents IncidentService
	predictor Predictor
	logger    *zap.Logger
}

func NewServer(traffic TrafficService, devices DeviceService, incidents IncidentService, predictor Predictor, logger *zap.Logger) *Server {
	return &Server{traffic: traffic, devices: devices, incidents: incidents, predictor: predictor, logger: logger}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/actuator/health", s.health).Methods(http.MethodGet)

	traffic := r.PathPrefix("/api/traffic").Subrouter()
	traffic.HandleFunc("/current", s.currentTraffic).Methods(http.MethodGet)
	traffic.HandleFunc("/history/{location}", s.trafficHistory).Methods(http.MethodGet)
	traffic.HandleFunc("/predict/{location}", s.predictTraffic).Methods(http.MethodGet)
	traffic.HandleFunc("/trends", s.trafficTrends).Methods(http.MethodGet)

	iot := r.PathPrefix("/api/iot").Subrouter()
	iot.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	iot.HandleFunc("/devices", s.registerDevice).Methods(http.MethodPost)
	iot.HandleFunc("/devices/{id}/status", s.deviceStatus).Methods(http.MethodGet)

	emergency := r.PathPrefix("/api/emergency").Subrouter()
	emergency.HandleFunc("/incidents", s.activeIncidents).Methods(http.MethodGet)
	emergency.HandleFunc("/incidents", s.reportIncident).Methods(http.MethodPost)
	emergency.HandleFunc("/incidents/{id}/resolve", s.resolveIncident).Methods(http.MethodPut)

	r.HandleFunc("/api/workflow/actions/{incidentType}", s.workflowActions).Methods(http.MethodGet)

	dashboard := r.PathPrefix("/api/dashboard").Subrouter()
	dashboard.HandleFunc("/overview", s.dashboardOverview).Methods(http.MethodGet)
	dashboard.HandleFunc("/stats", s.dashboardStats).Methods(http.MethodGet)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func (s *Server) currentTraffic(w http.ResponseWriter, r *http.Request) {
	latest, err := s.traffic.LatestByLocation(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, latest)
}

func (s *Server) trafficHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.traffic.HistoryByLocation(r.Context(), mux.Vars(r)["location"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []*models.TrafficSample{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) predictTraffic(w http.ResponseWriter, r *http.Request) {
	location := mux.Vars(r)["location"]
	s.writeJSON(w, http.StatusOK, map[string]string{
		"location":   location,
		"prediction": s.predictor.PredictTraffic(r.Context(), location),
	})
}

func (s *Server) trafficTrends(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"analysis": s.predictor.AnalyzeTrends(r.Context())})
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	all, err := s.devices.All(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if all == nil {
		all = []*models.Device{}
	}
	s.writeJSON(w, http.StatusOK, all)
}

func (s *Server) registerDevice(w http.ResponseWriter, r *http.Request) {
	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.devices.Register(r.Context(), &device)
	if errors.Is(err, devices.ErrInvalidDevice) {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) deviceStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status, err := s.devices.Status(r.Context(), id)
	if errors.Is(err, devices.ErrDeviceNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"device_id": id, "status": status})
}

func (s *Server) activeIncidents(w http.ResponseWriter, r *http.Request) {
	active, err := s.incidents.Active(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if active == nil {
		active = []*models.Incident{}
	}
	s.writeJSON(w, http.StatusOK, active)
}

func (s *Server) reportIncident(w http.ResponseWriter, r *http.Request) {
	var incident models.Incident
	if err := json.NewDecoder(r.Body).Decode(&incident); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.incidents.Report(r.Context(), &incident)
	if errors.Is(err, incidents.ErrInvalidIncident) {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) resolveIncident(w http.ResponseWriter, r *http.Request) {
	resolved, err := s.incidents.Resolve(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, incidents.ErrIncidentNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resolved)
}

func (s *Server) workflowActions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, incidents.ActionsFor(mux.Vars(r)["incidentType"]))
}

type overview struct {
	TotalOperations    int             `json:"totalOperations"`
	CriticalOperations int             `json:"criticalOperations"`
	TrafficLocations   int             `json:"trafficLocations"`
	Devices            int             `json:"devices"`
	Scheduler          string          `json:"scheduler"`
	Stats              simulator.Stats `json:"stats"`
}

type dashboardStats struct {
	incidents.Summary
	ActiveDevices int `json:"activeDevices"`
}

func (s *Server) dashboardOverview(w http.ResponseWriter, r *http.Request) {
	latest, err := s.traffic.LatestByLocation(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	all, err := s.devices.All(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	sum, err := s.incidents.Summarize(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, overview{
		TotalOperations:    sum.Total,
		CriticalOperations: sum.Critical,
		TrafficLocations:   len(latest),
		Devices:            len(all),
		Scheduler:          s.traffic.State().String(),
		Stats:              s.traffic.Stats(),
	})
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.incidents.Summarize(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	all, err := s.devices.All(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	active := 0
	for _, d := range all {
		if d.Status == models.DeviceStatusOnline {
			active++
		}
	}
	s.writeJSON(w, http.StatusOK, dashboardStats{Summary: sum, ActiveDevices: active})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
