package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		id, err := s.Create(ctx, Patient{Name: "P", Age: "30", Disease: "Flu"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestReadAllReturnsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := []Patient{
		{Name: "John Doe", Age: "45", Disease: "Hypertension"},
		{Name: "Jane Smith", Age: "32", Disease: "Diabetes"},
		{Name: "Alice Johnson", Age: "60", Disease: "Arthritis"},
	}
	for _, p := range want {
		if _, err := s.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d patients, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.Name != want[i].Name || p.Age != want[i].Age || p.Disease != want[i].Disease {
			t.Errorf("patient %d: got %+v, want %+v", i, p, want[i])
		}
		if p.ID == 0 {
			t.Errorf("patient %d: missing assigned id", i)
		}
	}
}

func TestReadAllEmptyIsNonNil(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %d patients", len(got))
	}
}

func TestReadByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ReadByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReplacesRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, Patient{Name: "Bob Brown", Age: "28", Disease: "Asthma"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	affected, err := s.Update(ctx, Patient{ID: id, Name: "Bob Brown", Age: "29", Disease: "Allergies"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	got, err := s.ReadByID(ctx, id)
	if err != nil {
		t.Fatalf("read by id: %v", err)
	}
	if got.Age != "29" || got.Disease != "Allergies" {
		t.Errorf("row not replaced: %+v", got)
	}
}

func TestUpdateMissingIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.Create(ctx, Patient{Name: "Eve Foster", Age: "72", Disease: "Osteoporosis"})

	affected, err := s.Update(ctx, Patient{ID: id + 100, Name: "X", Age: "1", Disease: "Y"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}

	patients, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(patients) != 1 || patients[0].Name != "Eve Foster" {
		t.Errorf("store changed by missing-id update: %+v", patients)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, Patient{Name: "Frank Green", Age: "35", Disease: "Migraine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	affected, err := s.Delete(ctx, id)
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	if _, err := s.ReadByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	affected, err = s.Delete(ctx, id)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected on second delete, got %d", affected)
	}
}

func TestEmptyFieldsPermitted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, Patient{})
	if err != nil {
		t.Fatalf("create with empty fields: %v", err)
	}

	got, err := s.ReadByID(ctx, id)
	if err != nil {
		t.Fatalf("read by id: %v", err)
	}
	if got.Name != "" || got.Age != "" || got.Disease != "" {
		t.Errorf("expected empty fields, got %+v", got)
	}
}

func TestCreateHookFiresOncePerCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var events []Patient
	s.OnCreate(func(_ context.Context, p Patient) {
		events = append(events, p)
	})

	id, err := s.Create(ctx, Patient{Name: "Grace Harris", Age: "41", Disease: "Thyroid Disorder"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 hook event, got %d", len(events))
	}
	if events[0].ID != id {
		t.Errorf("hook event id %d, want %d", events[0].ID, id)
	}
	if events[0].Name != "Grace Harris" || events[0].Age != "41" {
		t.Errorf("hook event missing fields: %+v", events[0])
	}

	// Update and delete must not fire the create hook.
	s.Update(ctx, Patient{ID: id, Name: "Grace Harris", Age: "42", Disease: "Thyroid Disorder"})
	s.Delete(ctx, id)
	if len(events) != 1 {
		t.Fatalf("hook fired on non-create operation, %d events", len(events))
	}
}

func TestSeedInsertsSampleData(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != len(SamplePatients) {
		t.Fatalf("expected %d created, got %d", len(SamplePatients), created)
	}

	patients, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(patients) != len(SamplePatients) {
		t.Fatalf("expected %d patients, got %d", len(SamplePatients), len(patients))
	}
	if patients[0].Name != "John Doe" || patients[len(patients)-1].Name != "Jack King" {
		t.Errorf("seed order not preserved: first %q last %q",
			patients[0].Name, patients[len(patients)-1].Name)
	}
}
