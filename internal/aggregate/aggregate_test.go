package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brightward/patientd/internal/store"
)

func patientsWithAges(ages ...string) []store.Patient {
	patients := make([]store.Patient, len(ages))
	for i, age := range ages {
		patients[i] = store.Patient{
			ID:      int64(i + 1),
			Name:    fmt.Sprintf("Patient %d", i+1),
			Age:     age,
			Disease: "Flu",
		}
	}
	return patients
}

func TestAverageAgeExcludesUnparsableAges(t *testing.T) {
	patients := patientsWithAges("45", "32", "60", "invalid")

	result, err := AverageAge(context.Background(), zerolog.Nop(), patients, DefaultBatchSize)
	if err != nil {
		t.Fatalf("average age: %v", err)
	}

	want := (45.0 + 32.0 + 60.0) / 3.0
	if math.Abs(result.Average-want) > 1e-9 {
		t.Errorf("average = %v, want %v", result.Average, want)
	}
	if math.Round(result.Average*100)/100 != 45.67 {
		t.Errorf("rounded average = %v, want 45.67", math.Round(result.Average*100)/100)
	}
	if result.ValidCount != 3 {
		t.Errorf("valid count = %d, want 3", result.ValidCount)
	}
	if result.TotalCount != 4 {
		t.Errorf("total count = %d, want 4", result.TotalCount)
	}
}

func TestAverageAgeEmptySet(t *testing.T) {
	_, err := AverageAge(context.Background(), zerolog.Nop(), nil, DefaultBatchSize)
	if !errors.Is(err, ErrNoValidData) {
		t.Fatalf("expected ErrNoValidData, got %v", err)
	}
}

func TestAverageAgeNoParseableAges(t *testing.T) {
	patients := patientsWithAges("abc", "", "12.5", "ten")

	result, err := AverageAge(context.Background(), zerolog.Nop(), patients, DefaultBatchSize)
	if !errors.Is(err, ErrNoValidData) {
		t.Fatalf("expected ErrNoValidData, got %v", err)
	}
	if result.TotalCount != 4 {
		t.Errorf("total count = %d, want 4", result.TotalCount)
	}
}

func TestAverageAgeZeroAgesIsNotNoValidData(t *testing.T) {
	patients := patientsWithAges("0", "0")

	result, err := AverageAge(context.Background(), zerolog.Nop(), patients, DefaultBatchSize)
	if err != nil {
		t.Fatalf("average age: %v", err)
	}
	if result.Average != 0 {
		t.Errorf("average = %v, want 0", result.Average)
	}
	if result.ValidCount != 2 {
		t.Errorf("valid count = %d, want 2", result.ValidCount)
	}
}

func TestAverageAgeToleratesWhitespace(t *testing.T) {
	patients := patientsWithAges(" 45 ", "\t32", "-1")

	result, err := AverageAge(context.Background(), zerolog.Nop(), patients, DefaultBatchSize)
	if err != nil {
		t.Fatalf("average age: %v", err)
	}
	if result.ValidCount != 3 {
		t.Errorf("valid count = %d, want 3", result.ValidCount)
	}
	want := (45.0 + 32.0 - 1.0) / 3.0
	if math.Abs(result.Average-want) > 1e-9 {
		t.Errorf("average = %v, want %v", result.Average, want)
	}
}

func TestAverageAgeBatchSizeInvariance(t *testing.T) {
	patients := patientsWithAges("45", "32", "60", "invalid", "28", "50", "19", "oops", "72", "35", "41")

	baseline, err := AverageAge(context.Background(), zerolog.Nop(), patients, 1)
	if err != nil {
		t.Fatalf("batch size 1: %v", err)
	}

	for _, batchSize := range []int{2, 3, 5, 7, len(patients), len(patients) + 10} {
		t.Run(fmt.Sprintf("batch_size_%d", batchSize), func(t *testing.T) {
			result, err := AverageAge(context.Background(), zerolog.Nop(), patients, batchSize)
			if err != nil {
				t.Fatalf("average age: %v", err)
			}
			if result != baseline {
				t.Errorf("batch size %d: got %+v, want %+v", batchSize, result, baseline)
			}
		})
	}
}

func TestAverageAgeInvalidBatchSizeFallsBack(t *testing.T) {
	patients := patientsWithAges("45", "32", "60")

	for _, batchSize := range []int{0, -3} {
		result, err := AverageAge(context.Background(), zerolog.Nop(), patients, batchSize)
		if err != nil {
			t.Fatalf("batch size %d: %v", batchSize, err)
		}
		if result.ValidCount != 3 {
			t.Errorf("batch size %d: valid count = %d, want 3", batchSize, result.ValidCount)
		}
	}
}

func TestConcurrentMatchesSequentialOnRandomData(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		n := rng.Intn(60) + 1
		patients := make([]store.Patient, n)
		for i := range patients {
			age := fmt.Sprintf("%d", rng.Intn(100))
			if rng.Intn(4) == 0 {
				age = "not-a-number"
			}
			patients[i] = store.Patient{ID: int64(i + 1), Name: "P", Age: age, Disease: "Flu"}
		}
		batchSize := rng.Intn(10) + 1

		seq, seqErr := AverageAgeSequential(zerolog.Nop(), patients)
		conc, concErr := AverageAge(context.Background(), zerolog.Nop(), patients, batchSize)

		if errors.Is(seqErr, ErrNoValidData) != errors.Is(concErr, ErrNoValidData) {
			t.Fatalf("trial %d: error mismatch seq=%v conc=%v", trial, seqErr, concErr)
		}
		if seqErr == nil && seq != conc {
			t.Fatalf("trial %d (batch %d): sequential %+v != concurrent %+v",
				trial, batchSize, seq, conc)
		}
	}
}

func TestAverageAgeCancelledContext(t *testing.T) {
	patients := patientsWithAges("45", "32", "60")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AverageAge(ctx, zerolog.Nop(), patients, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPartitionCoversAllRecordsOnce(t *testing.T) {
	patients := patientsWithAges("1", "2", "3", "4", "5", "6", "7")

	tests := []struct {
		batchSize   int
		wantBatches int
		wantLast    int
	}{
		{batchSize: 1, wantBatches: 7, wantLast: 1},
		{batchSize: 3, wantBatches: 3, wantLast: 1},
		{batchSize: 5, wantBatches: 2, wantLast: 2},
		{batchSize: 7, wantBatches: 1, wantLast: 7},
		{batchSize: 10, wantBatches: 1, wantLast: 7},
	}

	for _, tt := range tests {
		batches := partition(patients, tt.batchSize)
		if len(batches) != tt.wantBatches {
			t.Errorf("batch size %d: got %d batches, want %d", tt.batchSize, len(batches), tt.wantBatches)
			continue
		}
		if got := len(batches[len(batches)-1]); got != tt.wantLast {
			t.Errorf("batch size %d: last batch len %d, want %d", tt.batchSize, got, tt.wantLast)
		}

		var total int
		var nextID int64 = 1
		for _, batch := range batches {
			for _, p := range batch {
				if p.ID != nextID {
					t.Fatalf("batch size %d: order broken, got id %d want %d", tt.batchSize, p.ID, nextID)
				}
				nextID++
				total++
			}
		}
		if total != len(patients) {
			t.Errorf("batch size %d: covered %d records, want %d", tt.batchSize, total, len(patients))
		}
	}
}
