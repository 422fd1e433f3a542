package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"medstock/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db  *gorm.DB
	hub *prescriptionHub
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db, hub: newPrescriptionHub()}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("creating prescription: %w", err)
	}
	r.notify(ctx)
	return nil
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uint) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, prescription.ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching prescription %d: %w", id, err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListQuery) ([]*prescription.Prescription, error) {
	tx := r.db.WithContext(ctx).Model(&prescription.Prescription{})

	if q != nil {
		if q.Search != "" {
			pattern := "%" + q.Search + "%"
			tx = tx.Where("LOWER(patient_name) LIKE LOWER(?) OR LOWER(medicine_name) LIKE LOWER(?)", pattern, pattern)
		}
		if !q.From.IsZero() {
			tx = tx.Where("issued_at >= ?", q.From)
		}
		if !q.To.IsZero() {
			tx = tx.Where("issued_at < ?", q.To)
		}
	}

	var ps []*prescription.Prescription
	if err := tx.Order("issued_at DESC").Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return ps, nil
}

func (r *PrescriptionRepository) Update(ctx context.Context, p *prescription.Prescription) error {
	res := r.db.WithContext(ctx).
		Model(&prescription.Prescription{ID: p.ID}).
		Select("patient_name", "issued_at", "quantity", "doctor_note").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("updating prescription %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *PrescriptionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&prescription.Prescription{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting prescription %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	r.notify(ctx)
	return nil
}

func (r *PrescriptionRepository) WatchAll(ctx context.Context) <-chan []*prescription.Prescription {
	return r.hub.subscribe(ctx, func() ([]*prescription.Prescription, bool) {
		ps, err := r.List(ctx, nil)
		return ps, err == nil
	})
}

// notify re-reads the list and fans it out to watchers. Failures only delay
// a UI refresh; they never fail the triggering mutation.
func (r *PrescriptionRepository) notify(ctx context.Context) {
	if !r.hub.hasSubs() {
		return
	}
	if ps, err := r.List(ctx, nil); err == nil {
		r.hub.broadcast(ps)
	}
}
