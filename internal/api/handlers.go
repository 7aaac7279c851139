package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/brightward/patientd/internal/aggregate"
	"github.com/brightward/patientd/internal/disease"
	"github.com/brightward/patientd/internal/store"
)

// patientRequest is the create/update request body. Pointer fields
// distinguish absent/null from empty: presence is required, empty strings are
// permitted.
type patientRequest struct {
	Name    *string `json:"name"`
	Age     *string `json:"age"`
	Disease *string `json:"disease"`
}

func (pr patientRequest) validate() error {
	if pr.Name == nil {
		return fmt.Errorf("field 'name' is required")
	}
	if pr.Age == nil {
		return fmt.Errorf("field 'age' is required")
	}
	if pr.Disease == nil {
		return fmt.Errorf("field 'disease' is required")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// HealthHandler returns service liveness
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "patientd-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ListPatientsHandler handles GET /patients
func (s *Server) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := s.store.ReadAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list patients")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to read patients",
		})
		return
	}

	s.log.Debug().Int("count", len(patients)).Msg("Listed patients")
	writeJSON(w, http.StatusOK, patients)
}

// CreatePatientHandler handles POST /patients
func (s *Server) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn().Err(err).Msg("Failed to decode create patient request")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON format",
		})
		return
	}
	if err := req.validate(); err != nil {
		s.log.Warn().Err(err).Msg("Create patient validation failed")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	id, err := s.store.Create(r.Context(), store.Patient{
		Name:    *req.Name,
		Age:     *req.Age,
		Disease: *req.Disease,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create patient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to create patient",
		})
		return
	}

	created, err := s.store.ReadByID(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to read back created patient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to read created patient",
		})
		return
	}

	s.log.Info().Int64("patient_id", id).Msg("Patient created via API")
	writeJSON(w, http.StatusCreated, created)
}

// GetPatientHandler handles GET /patients/{id}
func (s *Server) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	patient, err := s.store.ReadByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Patient not found",
		})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to read patient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to read patient",
		})
		return
	}

	writeJSON(w, http.StatusOK, patient)
}

// UpdatePatientHandler handles PUT /patients/{id}
func (s *Server) UpdatePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var req patientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn().Err(err).Int64("patient_id", id).Msg("Failed to decode update patient request")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON format",
		})
		return
	}
	if err := req.validate(); err != nil {
		s.log.Warn().Err(err).Int64("patient_id", id).Msg("Update patient validation failed")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	affected, err := s.store.Update(r.Context(), store.Patient{
		ID:      id,
		Name:    *req.Name,
		Age:     *req.Age,
		Disease: *req.Disease,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to update patient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to update patient",
		})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Patient not found",
		})
		return
	}

	updated, err := s.store.ReadByID(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to read back updated patient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to read updated patient",
		})
		return
	}

	s.log.Info().Int64("patient_id", id).Msg("Patient updated via API")
	writeJSON(w, http.StatusOK, updated)
}

// DeletePatientHandler handles DELETE /patients/{id}
func (s *Server) DeletePatientHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	affected, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to delete patient")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete patient",
		})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Patient not found",
		})
		return
	}

	s.log.Info().Int64("patient_id", id).Msg("Patient deleted via API")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Patient with ID %d has been deleted.", id),
	})
}

// AverageAgeHandler handles GET /patients/average-age
func (s *Server) AverageAgeHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := s.store.ReadAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read patients for aggregation")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":         "Failed to read patients",
			"patient_count": 0,
		})
		return
	}

	result, err := aggregate.AverageAge(r.Context(), s.log, patients, s.batchSize)
	if errors.Is(err, aggregate.ErrNoValidData) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":         "No valid ages found",
			"patient_count": 0,
		})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Average age aggregation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":         "Failed to calculate average age",
			"patient_count": 0,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"average_age":    math.Round(result.Average*100) / 100,
		"patient_count":  result.ValidCount,
		"total_patients": result.TotalCount,
	})
}

// ScrapedDiseasesHandler handles GET /patients/scraped
func (s *Server) ScrapedDiseasesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.cache.Lookup()
	if errors.Is(err, disease.ErrSnapshotMissing) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "Scraped disease data not found",
		})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read scraped disease data")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to read scraped disease data",
		})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// pathID extracts the {id} route variable. The route pattern guarantees it
// is numeric.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
