package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"heliroute/internal/health"
	"heliroute/internal/performance"
	"heliroute/internal/route"
	"heliroute/pkg/models"
)

// Catalog is the aircraft catalog as seen by the API.
type Catalog interface {
	route.ProfileResolver
	Types() []performance.Data
}

type Registry interface {
	Measured(registration string) (*performance.Measured, bool)
	Record(m performance.Measured) error
}

type Defaults struct {
	PayloadWeightLbs float64
	ReserveFuelLbs   float64
}

type Server struct {
	engine    *route.Engine
	catalog   Catalog
	registry  Registry
	readiness *health.Readiness
	defaults  Defaults
	nodeName  string
	startTime time.Time
	wsHub     *Hub
}

func NewServer(engine *route.Engine, catalog Catalog, defaults Defaults) *Server {
	if defaults.PayloadWeightLbs <= 0 {
		defaults.PayloadWeightLbs = route.DefaultPayloadWeightLbs
	}
	if defaults.ReserveFuelLbs <= 0 {
		defaults.ReserveFuelLbs = route.DefaultReserveFuelLbs
	}
	return &Server{
		engine:    engine,
		catalog:   catalog,
		defaults:  defaults,
		startTime: time.Now(),
		wsHub:     NewHub(engine.Store()),
	}
}

func (s *Server) SetRegistry(r Registry) {
	s.registry = r
}

func (s *Server) SetReadiness(r *health.Readiness) {
	s.readiness = r
}

func (s *Server) SetNodeName(name string) {
	s.nodeName = name
}

func (s *Server) Hub() *Hub {
	return s.wsHub
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/route/stats", s.handleRouteStats)
		r.Post("/route/repair", s.handleRouteRepair)
		r.Get("/route/current", s.handleRouteCurrent)
		r.Get("/route/labels", s.handleRouteLabels)

		r.Get("/aircraft", s.handleAircraftList)
		r.Get("/aircraft/{type}", s.handleAircraftProfile)

		r.Get("/registrations/{registration}", s.handleRegistrationGet)
		r.Put("/registrations/{registration}", s.handleRegistrationPut)

		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)
	})

	r.Get("/ws", s.wsHub.HandleWebSocket)
	return r
}

type routeRequest struct {
	Waypoints []models.Waypoint `json:"waypoints"`
	route.Options
}

type routeResponse struct {
	Version uint64           `json:"version"`
	Stats   route.RouteStats `json:"stats"`
	Labels  []route.LegLabel `json:"labels"`
	Dropped int              `json:"dropped_waypoints,omitempty"`
}

func (s *Server) handleRouteStats(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := req.Options.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wps := models.ValidWaypoints(req.Waypoints)
	opts := s.withDefaults(req.Options)
	stats := s.engine.CalculateRouteStats(wps, opts)

	writeJSON(w, http.StatusOK, routeResponse{
		Version: s.engine.Store().Version(),
		Stats:   stats,
		Labels:  route.FormatLegs(stats.Legs),
		Dropped: len(req.Waypoints) - len(wps),
	})
}

func (s *Server) withDefaults(opts route.Options) route.Options {
	if opts.PayloadWeightLbs == nil {
		v := s.defaults.PayloadWeightLbs
		opts.PayloadWeightLbs = &v
	}
	if opts.ReserveFuelLbs == nil {
		v := s.defaults.ReserveFuelLbs
		opts.ReserveFuelLbs = &v
	}
	return opts
}

// repairRequest carries a candidate to check. With Current set the stats
// field is ignored and the published snapshot is checked instead.
type repairRequest struct {
	Current          bool               `json:"current,omitempty"`
	Stats            route.RouteStats   `json:"stats"`
	Waypoints        []models.Waypoint  `json:"waypoints,omitempty"`
	AircraftType     string             `json:"aircraft_type,omitempty"`
	Registration     string             `json:"registration,omitempty"`
	Wind             *models.WindVector `json:"wind,omitempty"`
	PayloadWeightLbs *float64           `json:"payload_weight_lbs,omitempty"`
	ReserveFuelLbs   *float64           `json:"reserve_fuel_lbs,omitempty"`
}

type repairResponse struct {
	State route.State      `json:"state"`
	Stats route.RouteStats `json:"stats"`
}

func (s *Server) handleRouteRepair(w http.ResponseWriter, r *http.Request) {
	var req repairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	rc := route.RepairContext{
		Waypoints:        models.ValidWaypoints(req.Waypoints),
		Wind:             req.Wind,
		PayloadWeightLbs: req.PayloadWeightLbs,
		ReserveFuelLbs:   req.ReserveFuelLbs,
	}
	if err := rc.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.AircraftType != "" || req.Registration != "" {
		p := s.catalog.Resolve(req.AircraftType, req.Registration)
		rc.Profile = &p
	}

	if req.Current {
		stats, state, ok := s.engine.RepairCurrent(rc)
		if !ok {
			http.Error(w, "No route calculated yet", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, repairResponse{State: state, Stats: stats})
		return
	}

	stats, state := s.engine.RepairRouteStats(req.Stats, rc)
	writeJSON(w, http.StatusOK, repairResponse{State: state, Stats: stats})
}

func (s *Server) handleRouteCurrent(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.engine.Store().Current()
	if !ok {
		http.Error(w, "No route calculated yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRouteLabels(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.engine.Store().Current()
	if !ok {
		writeJSON(w, http.StatusOK, []route.LegLabel{})
		return
	}
	writeJSON(w, http.StatusOK, route.FormatLegs(snap.Stats.Legs))
}

func (s *Server) handleAircraftList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Types())
}

func (s *Server) handleAircraftProfile(w http.ResponseWriter, r *http.Request) {
	acType := chi.URLParam(r, "type")
	registration := r.URL.Query().Get("registration")
	writeJSON(w, http.StatusOK, s.catalog.Resolve(acType, registration))
}

func (s *Server) handleRegistrationGet(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "Registration lookup not available", http.StatusServiceUnavailable)
		return
	}

	reg := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "registration")))
	m, ok := s.registry.Measured(reg)
	if !ok {
		http.Error(w, "Registration not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRegistrationPut(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "Registration lookup not available", http.StatusServiceUnavailable)
		return
	}

	var m performance.Measured
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	m.Registration = chi.URLParam(r, "registration")
	m.UpdatedAt = time.Time{}

	if err := s.registry.Record(m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, _ := s.registry.Measured(m.Registration)
	writeJSON(w, http.StatusOK, saved)
}

type healthResponse struct {
	Status       string `json:"status"`
	Node         string `json:"node,omitempty"`
	Uptime       string `json:"uptime"`
	Version      uint64 `json:"snapshot_version"`
	WSClients    int    `json:"ws_clients"`
	AircraftInDB int    `json:"aircraft_types"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Node:         s.nodeName,
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
		Version:      s.engine.Store().Version(),
		WSClients:    s.wsHub.ClientCount(),
		AircraftInDB: len(s.catalog.Types()),
	})
}

type readyResponse struct {
	Ready      bool                             `json:"ready"`
	Components map[string]health.ComponentState `json:"components"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness == nil {
		writeJSON(w, http.StatusOK, readyResponse{Ready: true})
		return
	}

	resp := readyResponse{
		Ready:      s.readiness.Ready(),
		Components: s.readiness.Snapshot(),
	}
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
