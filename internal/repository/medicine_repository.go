package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"medstock/internal/domain/medicine"
)

// MedicineRepository is the gorm-backed stock ledger store. Quantity moves
// through single UPDATE statements so no caller ever read-modify-writes a
// stale value, and every committed mutation is pushed to live watchers.
type MedicineRepository struct {
	db  *gorm.DB
	hub *medicineHub
}

func NewMedicineRepository(db *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: db, hub: newMedicineHub()}
}

func (r *MedicineRepository) Create(ctx context.Context, m *medicine.Medicine) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("creating medicine: %w", err)
	}
	r.notify(ctx, m.ID)
	return nil
}

func (r *MedicineRepository) GetByID(ctx context.Context, id uint) (*medicine.Medicine, error) {
	var m medicine.Medicine
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, medicine.ErrMedicineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching medicine %d: %w", id, err)
	}
	return &m, nil
}

func (r *MedicineRepository) List(ctx context.Context) ([]*medicine.Medicine, error) {
	var ms []*medicine.Medicine
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("listing medicines: %w", err)
	}
	return ms, nil
}

func (r *MedicineRepository) Update(ctx context.Context, m *medicine.Medicine) error {
	res := r.db.WithContext(ctx).
		Model(&medicine.Medicine{ID: m.ID}).
		Select("name", "quantity", "expires_at", "unit_price").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("updating medicine %d: %w", m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return medicine.ErrMedicineNotFound
	}
	r.notify(ctx, m.ID)
	return nil
}

func (r *MedicineRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&medicine.Medicine{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting medicine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return medicine.ErrMedicineNotFound
	}
	r.notify(ctx, id)
	return nil
}

// AdjustQuantity applies quantity = quantity + delta in one statement. It
// enforces no floor; the conditional variant Consume does.
func (r *MedicineRepository) AdjustQuantity(ctx context.Context, id uint, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&medicine.Medicine{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjusting quantity of medicine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return medicine.ErrMedicineNotFound
	}
	r.notify(ctx, id)
	return nil
}

// Consume is the guarded decrement: the availability check and the decrement
// are one UPDATE, so two concurrent consumers of the same low-stock medicine
// cannot both pass the check.
func (r *MedicineRepository) Consume(ctx context.Context, id uint, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&medicine.Medicine{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("consuming stock of medicine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Guard failed: distinguish a missing row from insufficient stock.
		var count int64
		if err := r.db.WithContext(ctx).Model(&medicine.Medicine{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("consuming stock of medicine %d: %w", id, err)
		}
		if count == 0 {
			return medicine.ErrMedicineNotFound
		}
		return medicine.ErrInsufficientStock
	}
	r.notify(ctx, id)
	return nil
}

func (r *MedicineRepository) WatchAll(ctx context.Context) <-chan []*medicine.Medicine {
	return r.hub.subscribeList(ctx, func() ([]*medicine.Medicine, bool) {
		ms, err := r.List(ctx)
		return ms, err == nil
	})
}

func (r *MedicineRepository) WatchByID(ctx context.Context, id uint) <-chan medicine.Update {
	return r.hub.subscribeItem(ctx, id, func() medicine.Update {
		return r.lookup(ctx, id)
	})
}

// notify re-reads the affected state and fans it out to watchers. Failures
// here only delay a UI refresh; they never fail the triggering mutation.
func (r *MedicineRepository) notify(ctx context.Context, changedID uint) {
	if r.hub.hasListSubs() {
		if ms, err := r.List(ctx); err == nil {
			r.hub.broadcastList(ms)
		}
	}
	if r.hub.hasItemSubs(changedID) {
		r.hub.broadcastItem(changedID, r.lookup(ctx, changedID))
	}
}

func (r *MedicineRepository) lookup(ctx context.Context, id uint) medicine.Update {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return medicine.Update{Absent: true}
	}
	return medicine.Update{Medicine: m}
}
