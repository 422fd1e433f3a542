package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"medstock/internal/domain/prescription"
)

func seedPrescription(t *testing.T, repo *PrescriptionRepository, patient, medicineName string, qty int, issuedAt time.Time) *prescription.Prescription {
	t.Helper()
	p := &prescription.Prescription{
		PatientName:  patient,
		IssuedAt:     issuedAt,
		MedicineID:   1,
		MedicineName: medicineName,
		Quantity:     qty,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed prescription: %v", err)
	}
	return p
}

func TestPrescriptionListNewestFirst(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	seedPrescription(t, repo, "Ana", "Paracetamol", 5, base)
	seedPrescription(t, repo, "Budi", "Ibuprofen", 2, base.Add(48*time.Hour))
	seedPrescription(t, repo, "Citra", "Amoxicillin", 3, base.Add(24*time.Hour))

	ps, err := repo.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"Budi", "Citra", "Ana"}
	if len(ps) != len(want) {
		t.Fatalf("got %d prescriptions, want %d", len(ps), len(want))
	}
	for i, name := range want {
		if ps[i].PatientName != name {
			t.Errorf("position %d: got %q, want %q", i, ps[i].PatientName, name)
		}
	}
}

func TestPrescriptionListDateRange(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))

	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	seedPrescription(t, repo, "Ana", "Paracetamol", 5, day.Add(-time.Hour))   // before range
	seedPrescription(t, repo, "Budi", "Ibuprofen", 2, day.Add(9*time.Hour))   // in range
	seedPrescription(t, repo, "Citra", "Amoxicillin", 3, day.Add(24*time.Hour)) // at exclusive bound

	ps, err := repo.List(context.Background(), &prescription.ListQuery{
		From: day,
		To:   day.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(ps) != 1 || ps[0].PatientName != "Budi" {
		t.Fatalf("got %d results, want exactly Budi's prescription", len(ps))
	}
}

func TestPrescriptionListSearch(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))

	now := time.Now()
	seedPrescription(t, repo, "Ana Wijaya", "Paracetamol", 5, now)
	seedPrescription(t, repo, "Budi", "Amoxicillin", 2, now)

	cases := []struct {
		search string
		want   int
	}{
		{"ana", 1},
		{"paraceta", 1},
		{"amox", 1},
		{"nobody", 0},
		{"", 2},
	}

	for _, tc := range cases {
		ps, err := repo.List(context.Background(), &prescription.ListQuery{Search: tc.search})
		if err != nil {
			t.Fatalf("list %q: %v", tc.search, err)
		}
		if len(ps) != tc.want {
			t.Errorf("search %q: got %d results, want %d", tc.search, len(ps), tc.want)
		}
	}
}

func TestPrescriptionUpdateFields(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))

	p := seedPrescription(t, repo, "Ana", "Paracetamol", 5, time.Now())
	p.PatientName = "Ana Wijaya"
	p.Quantity = 7
	p.DoctorNote = "after meals"

	if err := repo.Update(context.Background(), p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PatientName != "Ana Wijaya" || got.Quantity != 7 || got.DoctorNote != "after meals" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.MedicineName != "Paracetamol" || got.MedicineID != 1 {
		t.Fatalf("update touched the medicine reference: %+v", got)
	}
}

func TestPrescriptionUpdateNotFound(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))

	err := repo.Update(context.Background(), &prescription.Prescription{
		ID:          99,
		PatientName: "Ana",
		Quantity:    1,
	})
	if !errors.Is(err, prescription.ErrPrescriptionNotFound) {
		t.Fatalf("got %v, want ErrPrescriptionNotFound", err)
	}
}

func TestPrescriptionWatchReemitsOnMutation(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))
	p := seedPrescription(t, repo, "Ana", "Paracetamol", 5, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := repo.WatchAll(ctx)

	initial := recvPrescriptions(t, updates)
	if len(initial) != 1 {
		t.Fatalf("initial snapshot has %d prescriptions, want 1", len(initial))
	}

	if err := repo.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	next := recvPrescriptions(t, updates)
	if len(next) != 0 {
		t.Fatalf("after delete snapshot has %d prescriptions, want 0", len(next))
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-updates:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("watch channel did not close after cancel")
		}
	}
}

func recvPrescriptions(t *testing.T, ch <-chan []*prescription.Prescription) []*prescription.Prescription {
	t.Helper()
	select {
	case ps, open := <-ch:
		if !open {
			t.Fatal("watch channel closed unexpectedly")
		}
		return ps
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for prescription list update")
		return nil
	}
}

func TestPrescriptionDeleteTwice(t *testing.T) {
	t.Parallel()
	repo := NewPrescriptionRepository(openTestDB(t))

	p := seedPrescription(t, repo, "Ana", "Paracetamol", 5, time.Now())

	if err := repo.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.Delete(context.Background(), p.ID); !errors.Is(err, prescription.ErrPrescriptionNotFound) {
		t.Fatalf("second delete: got %v, want ErrPrescriptionNotFound", err)
	}
}
