package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/fedscout/fedscout/internal/config"
)

// Server is the JSON API server.
type Server struct {
	router  *mux.Router
	server  *http.Server
	metrics *MetricsRegistry
	log     zerolog.Logger
}

// NewServer builds the router and HTTP server around the handlers.
func NewServer(cfg config.ServerConfig, handlers *Handlers, metrics *MetricsRegistry, log zerolog.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		metrics: metrics,
		log:     log,
	}
	s.setupRoutes(cfg, handlers)

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(cfg config.ServerConfig, h *Handlers) {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware(s.log, s.metrics))
	s.router.Use(timeoutMiddleware(cfg.RequestTimeout))
	s.router.Use(corsMiddleware(cfg.CORSOrigins))
	if cfg.RateLimitRPS > 0 {
		s.router.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/health", h.Health).Methods("GET")

	api.HandleFunc("/scoring/calculate", h.CalculateRelevance).Methods("POST")
	api.HandleFunc("/scoring/batch", h.BatchRelevance).Methods("POST")
	api.HandleFunc("/risk/assess", h.AssessRisk).Methods("POST")
	api.HandleFunc("/win-probability/calculate", h.PredictWin).Methods("POST")
	api.HandleFunc("/proposals/generate", h.GenerateProposal).Methods("POST")

	api.HandleFunc("/supply-chain/verify", h.VerifySupplier).Methods("POST")
	api.HandleFunc("/supply-chain/section-889/check", h.CheckSection889).Methods("POST")
	api.HandleFunc("/supply-chain/section-889/prohibited-entities", h.ListProhibitedEntities).Methods("GET")
	api.HandleFunc("/supply-chain/taa/check", h.CheckTAA).Methods("POST")
	api.HandleFunc("/supply-chain/taa/batch-check", h.BatchCheckTAA).Methods("POST")
	api.HandleFunc("/supply-chain/taa/designated-countries", h.ListDesignatedCountries).Methods("GET")

	api.HandleFunc("/pricing/recommendation", h.PricingRecommendation).Methods("POST")
	api.HandleFunc("/pricing/should-cost", h.ShouldCost).Methods("POST")
	api.HandleFunc("/pricing/labor-rates", h.LaborRates).Methods("GET")
	api.HandleFunc("/pricing/benchmarks", h.ContractBenchmarks).Methods("GET")

	api.HandleFunc("/ingestion/trigger", h.TriggerIngestion).Methods("POST")
	api.HandleFunc("/ingestion/status/{id}", h.IngestionStatus).Methods("GET")
	api.HandleFunc("/ingestion/history", h.IngestionHistory).Methods("GET")

	api.HandleFunc("/organizations", h.CreateOrganization).Methods("POST")
	api.HandleFunc("/organizations", h.ListOrganizations).Methods("GET")
	api.HandleFunc("/organizations/{id}", h.GetOrganization).Methods("GET")
	api.HandleFunc("/organizations/{id}", h.UpdateOrganization).Methods("PUT")
	api.HandleFunc("/organizations/{id}", h.DeleteOrganization).Methods("DELETE")

	api.HandleFunc("/opportunities", h.CreateOpportunity).Methods("POST")
	api.HandleFunc("/opportunities", h.ListOpportunities).Methods("GET")
	api.HandleFunc("/opportunities/naics/{code}", h.ListOpportunitiesByNAICS).Methods("GET")
	api.HandleFunc("/opportunities/{id}", h.GetOpportunity).Methods("GET")
	api.HandleFunc("/opportunities/{id}", h.UpdateOpportunity).Methods("PUT")
	api.HandleFunc("/opportunities/{id}", h.DeleteOpportunity).Methods("DELETE")

	s.router.NotFoundHandler = http.HandlerFunc(h.NotFound)
}

// Router exposes the configured router. Used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
