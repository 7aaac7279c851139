// Package api exposes the patient record store, the average age aggregation
// and the disease cache over HTTP.
package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/brightward/patientd/internal/disease"
	"github.com/brightward/patientd/internal/metrics"
	"github.com/brightward/patientd/internal/store"
)

// Server wires the core components to HTTP handlers.
type Server struct {
	store     *store.Store
	cache     *disease.Cache
	log       zerolog.Logger
	batchSize int
}

// NewServer returns a server over the given store and cache. batchSize
// controls aggregation batching; values below 1 fall back to the default.
func NewServer(st *store.Store, cache *disease.Cache, batchSize int, logger zerolog.Logger) *Server {
	return &Server{
		store:     st,
		cache:     cache,
		log:       logger,
		batchSize: batchSize,
	}
}

// Routes configures and returns the HTTP router
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	// Add middleware to all routes
	r.Use(metrics.MetricsMiddleware)

	// Routes
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")

	// Patient endpoints. Fixed paths before the {id} routes so
	// /patients/average-age is not captured as an id.
	r.HandleFunc("/patients/average-age", s.AverageAgeHandler).Methods("GET")
	r.HandleFunc("/patients/scraped", s.ScrapedDiseasesHandler).Methods("GET")
	r.HandleFunc("/patients", s.ListPatientsHandler).Methods("GET")
	r.HandleFunc("/patients", s.CreatePatientHandler).Methods("POST")
	r.HandleFunc("/patients/{id:[0-9]+}", s.GetPatientHandler).Methods("GET")
	r.HandleFunc("/patients/{id:[0-9]+}", s.UpdatePatientHandler).Methods("PUT")
	r.HandleFunc("/patients/{id:[0-9]+}", s.DeletePatientHandler).Methods("DELETE")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
