package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medstock/internal/domain"
	"medstock/internal/domain/medicine"
	"medstock/pkg/metrics"
)

// StockService is the stock ledger: it owns medicine records and is the only
// legitimate mutator of quantity on hand. Quantity changes go through the
// repository's single-statement adjustment primitives, never through a
// read-modify-write here.
type StockService struct {
	repo     medicine.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger

	lowStockThreshold int
	expiryWindow      time.Duration
}

func NewStockService(repo medicine.Repository, auditSvc *AuditService, collector *metrics.Collector, log *zap.Logger, lowStockThreshold int, expiryWindow time.Duration) *StockService {
	return &StockService{
		repo:              repo,
		auditSvc:          auditSvc,
		metrics:           collector,
		log:               log,
		lowStockThreshold: lowStockThreshold,
		expiryWindow:      expiryWindow,
	}
}

func (s *StockService) CreateMedicine(ctx context.Context, m *medicine.Medicine, callerID uuid.UUID, callerRole domain.Role, ip string) (*medicine.Medicine, error) {
	if !callerRole.CanManageInventory() {
		return nil, ErrForbidden
	}
	if err := validateMedicine(m); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating medicine: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionCreate, ResourceType: "medicine", ResourceID: formatID(m.ID), IPAddress: ip,
	})

	return m, nil
}

func (s *StockService) GetMedicine(ctx context.Context, id uint) (*medicine.Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *StockService) ListMedicines(ctx context.Context) ([]*medicine.Medicine, error) {
	return s.repo.List(ctx)
}

func (s *StockService) UpdateMedicine(ctx context.Context, m *medicine.Medicine, callerID uuid.UUID, callerRole domain.Role, ip string) (*medicine.Medicine, error) {
	if !callerRole.CanManageInventory() {
		return nil, ErrForbidden
	}
	if err := validateMedicine(m); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionUpdate, ResourceType: "medicine", ResourceID: formatID(m.ID), IPAddress: ip,
	})

	return m, nil
}

// DeleteMedicine removes a medicine without cascading to prescriptions:
// records referencing it keep their denormalized name and a dangling id.
func (s *StockService) DeleteMedicine(ctx context.Context, id uint, callerID uuid.UUID, callerRole domain.Role, ip string) error {
	if !callerRole.CanManageInventory() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionDelete, ResourceType: "medicine", ResourceID: formatID(id), IPAddress: ip,
	})

	return nil
}

// AdjustQuantity applies a signed delta to quantity on hand as one storage
// statement. Negative consumes, positive restores. No floor is enforced
// here; the prescription workflow uses the guarded Consume path instead.
func (s *StockService) AdjustQuantity(ctx context.Context, id uint, delta int, callerID uuid.UUID, callerRole domain.Role, ip string) error {
	if !callerRole.CanManageInventory() {
		return ErrForbidden
	}

	if err := s.repo.AdjustQuantity(ctx, id, delta); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.StockAdjustments.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionUpdate, ResourceType: "medicine", ResourceID: formatID(id), IPAddress: ip,
		Detail: fmt.Sprintf(`{"adjustment":%d}`, delta),
	})

	return nil
}

// WatchMedicines streams the full collection for list views.
func (s *StockService) WatchMedicines(ctx context.Context) <-chan []*medicine.Medicine {
	return s.repo.WatchAll(ctx)
}

// WatchMedicine streams one medicine for detail views. Deleting the watched
// id emits an Absent update; the stream stays open until ctx is done.
func (s *StockService) WatchMedicine(ctx context.Context, id uint) <-chan medicine.Update {
	return s.repo.WatchByID(ctx, id)
}

// DashboardSummary carries the operator alerts shown on the home screen.
type DashboardSummary struct {
	Medicines []*medicine.Medicine `json:"medicines"`
	LowStock  []*medicine.Medicine `json:"low_stock"`
	Expiring  []*medicine.Medicine `json:"expiring"`
}

func (s *StockService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	ms, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{Medicines: ms}
	for _, m := range ms {
		if m.Quantity <= s.lowStockThreshold {
			summary.LowStock = append(summary.LowStock, m)
		}
		if m.IsExpiringWithin(s.expiryWindow) {
			summary.Expiring = append(summary.Expiring, m)
		}
	}
	return summary, nil
}

func validateMedicine(m *medicine.Medicine) error {
	var fields []string
	if m.Name == "" {
		fields = append(fields, medicine.ErrNameRequired.Error())
	}
	if m.Quantity < 0 {
		fields = append(fields, medicine.ErrNegativeQuantity.Error())
	}
	if m.UnitPrice < 0 {
		fields = append(fields, medicine.ErrNegativePrice.Error())
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
