// Package store owns the patient table and its single-row CRUD contract.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/brightward/patientd/internal/metrics"
)

var (
	// ErrWriteFailed wraps any insert/update/delete I/O or constraint failure.
	ErrWriteFailed = errors.New("store: write failed")
	// ErrReadFailed wraps unrecoverable read I/O failures.
	ErrReadFailed = errors.New("store: read failed")
	// ErrNotFound marks a point lookup that matched no row. Absence is a
	// normal outcome, not an I/O failure.
	ErrNotFound = errors.New("store: patient not found")
)

// Patient is one patient row. Age is stored as free text and is not
// guaranteed to parse as an integer.
type Patient struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Age     string `json:"age"`
	Disease string `json:"disease"`
}

// CreateHook observes a successful create. Hooks run synchronously after the
// insert commits; they receive the full record including the assigned id and
// must not fail the create.
type CreateHook func(ctx context.Context, p Patient)

// Store is the sole reader/writer of persisted patient state. Each operation
// runs in its own pooled connection scope; only single-row atomicity is
// offered.
type Store struct {
	db          *sql.DB
	log         zerolog.Logger
	createHooks []CreateHook
}

const schema = `CREATE TABLE IF NOT EXISTS patients(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	age TEXT NOT NULL,
	disease TEXT NOT NULL
)`

// Open opens or creates the SQLite database at path and ensures the patients
// table exists.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create patients table: %w", err)
	}

	logger.Info().Str("path", path).Msg("Patient store opened")

	return &Store{db: db, log: logger}, nil
}

// OnCreate registers a hook fired after every successful Create. Not safe to
// call concurrently with Create; register hooks during startup.
func (s *Store) OnCreate(h CreateHook) {
	s.createHooks = append(s.createHooks, h)
}

// Create inserts a new patient and returns the store-assigned id. Empty
// strings are permitted for every field.
func (s *Store) Create(ctx context.Context, p Patient) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO patients(name, age, disease) VALUES(?, ?, ?)`,
		p.Name, p.Age, p.Disease)
	if err != nil {
		s.log.Error().Err(err).Str("name", p.Name).Msg("Failed to create patient")
		metrics.RecordPatientOperation("create", "error")
		return 0, fmt.Errorf("%w: insert patient: %v", ErrWriteFailed, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read inserted patient id")
		metrics.RecordPatientOperation("create", "error")
		return 0, fmt.Errorf("%w: last insert id: %v", ErrWriteFailed, err)
	}

	s.log.Info().Int64("patient_id", id).Str("name", p.Name).Msg("Patient created")
	metrics.RecordPatientOperation("create", "success")

	p.ID = id
	for _, h := range s.createHooks {
		h(ctx, p)
	}

	return id, nil
}

// ReadAll returns every patient in insertion order. The slice is non-nil even
// when the table is empty. On failure no partial result escapes.
func (s *Store) ReadAll(ctx context.Context) ([]Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, age, disease FROM patients ORDER BY id`)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read patients")
		metrics.RecordPatientOperation("read_all", "error")
		return nil, fmt.Errorf("%w: select patients: %v", ErrReadFailed, err)
	}
	defer rows.Close()

	patients := []Patient{}
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Disease); err != nil {
			s.log.Error().Err(err).Msg("Failed to scan patient row")
			metrics.RecordPatientOperation("read_all", "error")
			return nil, fmt.Errorf("%w: scan patient: %v", ErrReadFailed, err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		s.log.Error().Err(err).Msg("Patient row iteration failed")
		metrics.RecordPatientOperation("read_all", "error")
		return nil, fmt.Errorf("%w: iterate patients: %v", ErrReadFailed, err)
	}

	metrics.RecordPatientOperation("read_all", "success")
	return patients, nil
}

// ReadByID looks up a single patient. Returns ErrNotFound when no row
// matches.
func (s *Store) ReadByID(ctx context.Context, id int64) (Patient, error) {
	var p Patient
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, age, disease FROM patients WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Age, &p.Disease)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Debug().Int64("patient_id", id).Msg("Patient not found")
		metrics.RecordPatientOperation("read_by_id", "not_found")
		return Patient{}, ErrNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to read patient")
		metrics.RecordPatientOperation("read_by_id", "error")
		return Patient{}, fmt.Errorf("%w: select patient %d: %v", ErrReadFailed, id, err)
	}

	metrics.RecordPatientOperation("read_by_id", "success")
	return p, nil
}

// Update fully replaces the row with p.ID and returns the number of rows
// affected. 0 means the id does not exist; Update never creates a row.
func (s *Store) Update(ctx context.Context, p Patient) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE patients SET name = ?, age = ?, disease = ? WHERE id = ?`,
		p.Name, p.Age, p.Disease, p.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", p.ID).Msg("Failed to update patient")
		metrics.RecordPatientOperation("update", "error")
		return 0, fmt.Errorf("%w: update patient %d: %v", ErrWriteFailed, p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", p.ID).Msg("Failed to read update row count")
		metrics.RecordPatientOperation("update", "error")
		return 0, fmt.Errorf("%w: rows affected: %v", ErrWriteFailed, err)
	}

	s.log.Info().Int64("patient_id", p.ID).Int64("rows_affected", affected).Msg("Patient update executed")
	metrics.RecordPatientOperation("update", "success")
	return affected, nil
}

// Delete removes the row with the given id and returns the number of rows
// affected (0 absent, 1 removed). Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to delete patient")
		metrics.RecordPatientOperation("delete", "error")
		return 0, fmt.Errorf("%w: delete patient %d: %v", ErrWriteFailed, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", id).Msg("Failed to read delete row count")
		metrics.RecordPatientOperation("delete", "error")
		return 0, fmt.Errorf("%w: rows affected: %v", ErrWriteFailed, err)
	}

	s.log.Info().Int64("patient_id", id).Int64("rows_affected", affected).Msg("Patient delete executed")
	metrics.RecordPatientOperation("delete", "success")
	return affected, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
