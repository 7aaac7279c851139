// Package aggregate computes statistics over the full patient record set
// using bounded concurrent batches.
package aggregate

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/brightward/patientd/internal/metrics"
	"github.com/brightward/patientd/internal/store"
)

// DefaultBatchSize is the number of records processed by one worker.
const DefaultBatchSize = 5

// ErrNoValidData is returned when no record carries a parseable age. Distinct
// from an arithmetic zero-age average.
var ErrNoValidData = errors.New("aggregate: no valid ages found")

// Result is the outcome of an average age computation.
type Result struct {
	Average    float64 `json:"average_age"`
	ValidCount int     `json:"patient_count"`
	TotalCount int     `json:"total_patients"`
}

// partial is one worker's immutable (sum, count) pair prior to the join.
type partial struct {
	sum   int64
	count int
}

// AverageAge computes the mean age across patients using one worker per
// contiguous batch of batchSize records. Records whose age does not parse as
// an integer are excluded, never fatal. The worker pool is scoped to the call
// and sized to the runtime's parallelism; ctx cancellation aborts outstanding
// batches.
//
// The result is invariant to batchSize because each worker contributes only a
// sum and a count, which the join adds.
func AverageAge(ctx context.Context, logger zerolog.Logger, patients []store.Patient, batchSize int) (Result, error) {
	start := time.Now()

	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	if len(patients) == 0 {
		logger.Info().Msg("No patients found for average age calculation")
		metrics.RecordAggregation("no_valid_data", time.Since(start))
		return Result{}, ErrNoValidData
	}

	batches := partition(patients, batchSize)
	partials := make([]partial, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[i] = sumBatch(logger, batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var totalSum int64
	var totalCount int
	for _, p := range partials {
		totalSum += p.sum
		totalCount += p.count
	}

	if totalCount == 0 {
		logger.Info().Int("total_patients", len(patients)).Msg("No valid ages found for average calculation")
		metrics.RecordAggregation("no_valid_data", time.Since(start))
		return Result{TotalCount: len(patients)}, ErrNoValidData
	}

	result := Result{
		Average:    float64(totalSum) / float64(totalCount),
		ValidCount: totalCount,
		TotalCount: len(patients),
	}

	logger.Info().
		Float64("average_age", result.Average).
		Int("valid_count", totalCount).
		Int("total_patients", len(patients)).
		Msg("Calculated average age")
	metrics.RecordAggregation("success", time.Since(start))

	return result, nil
}

// AverageAgeSequential is the single-pass twin of AverageAge with identical
// sum/count semantics, kept as the reference implementation.
func AverageAgeSequential(logger zerolog.Logger, patients []store.Patient) (Result, error) {
	var totalSum int64
	var totalCount int
	for _, p := range patients {
		age, ok := parseAge(logger, p)
		if !ok {
			continue
		}
		totalSum += int64(age)
		totalCount++
	}

	if totalCount == 0 {
		return Result{TotalCount: len(patients)}, ErrNoValidData
	}

	return Result{
		Average:    float64(totalSum) / float64(totalCount),
		ValidCount: totalCount,
		TotalCount: len(patients),
	}, nil
}

// partition splits patients into contiguous batches of size batchSize, the
// last batch possibly shorter, preserving input order.
func partition(patients []store.Patient, batchSize int) [][]store.Patient {
	batches := make([][]store.Patient, 0, (len(patients)+batchSize-1)/batchSize)
	for i := 0; i < len(patients); i += batchSize {
		end := i + batchSize
		if end > len(patients) {
			end = len(patients)
		}
		batches = append(batches, patients[i:end])
	}
	return batches
}

// sumBatch computes one batch's partial sum and valid count.
func sumBatch(logger zerolog.Logger, batch []store.Patient) partial {
	var p partial
	for _, patient := range batch {
		age, ok := parseAge(logger, patient)
		if !ok {
			continue
		}
		p.sum += int64(age)
		p.count++
	}
	return p
}

func parseAge(logger zerolog.Logger, p store.Patient) (int, bool) {
	age, err := strconv.Atoi(strings.TrimSpace(p.Age))
	if err != nil {
		logger.Warn().
			Int64("patient_id", p.ID).
			Str("age", p.Age).
			Msg("Invalid age value, excluding from aggregation")
		metrics.RecordInvalidAge()
		return 0, false
	}
	return age, true
}
