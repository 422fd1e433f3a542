package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medstock/internal/domain"
	"medstock/internal/domain/medicine"
	"medstock/internal/domain/prescription"
	"medstock/pkg/metrics"
)

// PrescriptionService coordinates the prescription lifecycle with the stock
// ledger: creating a prescription consumes stock, deleting one restores it.
// The ledger's guarded decrement makes the availability check and the
// decrement a single storage operation, so stock never goes negative and two
// concurrent creates against the same low-stock medicine cannot both pass.
type PrescriptionService struct {
	repo     prescription.Repository
	ledger   medicine.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPrescriptionService(repo prescription.Repository, ledger medicine.Repository, auditSvc *AuditService, collector *metrics.Collector, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{
		repo:     repo,
		ledger:   ledger,
		auditSvc: auditSvc,
		metrics:  collector,
		log:      log,
	}
}

// Create validates the draft, consumes stock, then records the prescription
// with the medicine's name denormalized into it. The stock decrement happens
// first: if the insert then fails, the decrement is compensated, so a
// committed prescription and its stock movement always exist together.
func (s *PrescriptionService) Create(ctx context.Context, draft *prescription.Draft, callerID uuid.UUID, callerRole domain.Role, ip string) (*prescription.Prescription, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	// A canceled request must not abort the sequence between the decrement
	// and the insert; a half-applied stock movement is worse than finishing
	// work nobody is waiting on.
	ctx = context.WithoutCancel(ctx)

	med, err := s.ledger.GetByID(ctx, draft.MedicineID)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Consume(ctx, draft.MedicineID, draft.Quantity); err != nil {
		return nil, err
	}

	issuedAt := draft.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	p := &prescription.Prescription{
		PatientName:  draft.PatientName,
		IssuedAt:     issuedAt,
		MedicineID:   draft.MedicineID,
		MedicineName: med.Name,
		Quantity:     draft.Quantity,
		DoctorNote:   draft.DoctorNote,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// Compensate the decrement so stock never reflects a prescription
		// that was not recorded.
		if rbErr := s.ledger.AdjustQuantity(ctx, draft.MedicineID, draft.Quantity); rbErr != nil {
			s.log.Error("stock compensation failed after prescription insert failure",
				zap.Uint("medicine_id", draft.MedicineID),
				zap.Int("quantity", draft.Quantity),
				zap.Error(rbErr),
			)
			if s.metrics != nil {
				s.metrics.StockRollbackFailures.Inc()
			}
		}
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PrescriptionsCreated.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionCreate, ResourceType: "prescription", ResourceID: formatID(p.ID), IPAddress: ip,
	})

	return p, nil
}

func (s *PrescriptionService) Get(ctx context.Context, id uint) (*prescription.Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PrescriptionService) List(ctx context.Context, q *prescription.ListQuery) ([]*prescription.Prescription, error) {
	return s.repo.List(ctx, q)
}

// Watch streams the full prescription list for the history screen.
func (s *PrescriptionService) Watch(ctx context.Context) <-chan []*prescription.Prescription {
	return s.repo.WatchAll(ctx)
}

// Update persists field edits only. It deliberately does not re-run the
// stock delta between the old and new quantity: quantity on hand moves on
// create and delete, and edits are treated as clerical corrections.
func (s *PrescriptionService) Update(ctx context.Context, cmd *prescription.UpdateCommand, callerID uuid.UUID, callerRole domain.Role, ip string) (*prescription.Prescription, error) {
	if !callerRole.CanManageInventory() {
		return nil, ErrForbidden
	}
	if err := validateUpdate(cmd); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	existing.PatientName = cmd.PatientName
	existing.Quantity = cmd.Quantity
	existing.DoctorNote = cmd.DoctorNote
	if !cmd.IssuedAt.IsZero() {
		existing.IssuedAt = cmd.IssuedAt
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionUpdate, ResourceType: "prescription", ResourceID: formatID(cmd.ID), IPAddress: ip,
	})

	return existing, nil
}

// Delete restores the consumed stock, then removes the record. The rollback
// is best-effort: a prescription must stay deletable even when its medicine
// has since been removed, so a failed adjustment is logged and counted but
// never propagated. A second delete of the same id fails with
// ErrPrescriptionNotFound and applies no second rollback.
func (s *PrescriptionService) Delete(ctx context.Context, id uint, callerID uuid.UUID, callerRole domain.Role, ip string) error {
	if !callerRole.CanManageInventory() {
		return ErrForbidden
	}

	ctx = context.WithoutCancel(ctx)

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if p.MedicineID > 0 && p.Quantity > 0 {
		if err := s.ledger.AdjustQuantity(ctx, p.MedicineID, p.Quantity); err != nil {
			s.log.Error("stock rollback failed during prescription delete",
				zap.Uint("prescription_id", id),
				zap.Uint("medicine_id", p.MedicineID),
				zap.Int("quantity", p.Quantity),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.StockRollbackFailures.Inc()
			}
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.PrescriptionsDeleted.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: callerID, UserRole: callerRole,
		Action: domain.ActionDelete, ResourceType: "prescription", ResourceID: formatID(id), IPAddress: ip,
	})

	return nil
}

func validateDraft(draft *prescription.Draft) error {
	var fields []string
	if strings.TrimSpace(draft.PatientName) == "" {
		fields = append(fields, prescription.ErrPatientNameRequired.Error())
	}
	if draft.MedicineID == 0 {
		fields = append(fields, prescription.ErrMedicineRequired.Error())
	}
	if draft.Quantity <= 0 {
		fields = append(fields, prescription.ErrInvalidQuantity.Error())
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateUpdate(cmd *prescription.UpdateCommand) error {
	var fields []string
	if strings.TrimSpace(cmd.PatientName) == "" {
		fields = append(fields, prescription.ErrPatientNameRequired.Error())
	}
	if cmd.Quantity <= 0 {
		fields = append(fields, prescription.ErrInvalidQuantity.Error())
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
