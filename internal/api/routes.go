package api

import (
	"net/http"

	"ladderscope/internal/metrics"
	"ladderscope/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)

	// Prediction
	s.router.HandleFunc("/predict", s.handlePredict)
	s.router.HandleFunc("/rank", s.scans.Wrap(s.handleRank))
	s.router.HandleFunc("/group", s.scans.Wrap(s.handleGroup))
	s.router.HandleFunc("/stats", s.handleStats)
	s.router.HandleFunc("/presets", s.handlePresets)

	// Ingest
	s.router.HandleFunc("/rounds", s.handleRounds)

	if s.mcfg.Enabled {
		s.router.Handle(s.metricsPath(), metrics.Handler())
	}

	// Root endpoint
	s.router.HandleFunc("/", s.handleRoot)
}

// RootResponse is the endpoint index served at /
type RootResponse struct {
	Name      string         `json:"name"`
	Build     version.Build  `json:"build"`
	Endpoints []EndpointInfo `json:"endpoints"`
}

// EndpointInfo describes one route
type EndpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// metricsPath is the configured metrics endpoint, /metrics when unset.
func (s *Server) metricsPath() string {
	if s.mcfg.Endpoint == "" {
		return "/metrics"
	}
	return s.mcfg.Endpoint
}

func (s *Server) endpoints() []EndpointInfo {
	eps := []EndpointInfo{
		{http.MethodGet, "/health", "Liveness check"},
		{http.MethodGet, "/ready", "Readiness check (round store reachable)"},
		{http.MethodGet, "/predict", "Match the newest block; mode, limit, notation"},
		{http.MethodGet, "/rank", "Rank neighbor outcomes; sizes, transforms, direction, topK"},
		{http.MethodGet, "/group", "Predicted group after dropping the weakest outcome; adds flavor, preset"},
		{http.MethodGet, "/stats", "Stored history summary"},
		{http.MethodGet, "/presets", "Exclusion presets"},
	}
	if s.importer != nil && s.guard.Enabled() {
		eps = append(eps, EndpointInfo{http.MethodPost, "/rounds", "Ingest a round batch (bearer token)"})
	}
	if s.mcfg.Enabled {
		eps = append(eps, EndpointInfo{http.MethodGet, s.metricsPath(), "Prometheus metrics"})
	}
	return eps
}

// handleRoot handles requests to the root path
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	WriteJSON(w, RootResponse{
		Name:      "ladderscope",
		Build:     version.Current(),
		Endpoints: s.endpoints(),
	}, http.StatusOK)
}
