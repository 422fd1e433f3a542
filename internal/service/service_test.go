package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"medstock/internal/domain"
	"medstock/internal/domain/medicine"
	"medstock/internal/domain/prescription"
	"medstock/internal/repository"
)

// auditRecorder captures audit entries in memory so tests can assert on them
// without a database round trip.
type auditRecorder struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *auditRecorder) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

type testEnv struct {
	medicineRepo     *repository.MedicineRepository
	prescriptionRepo *repository.PrescriptionRepository
	stockSvc         *StockService
	prescriptionSvc  *PrescriptionService
	auditSvc         *AuditService
	adminID          uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&medicine.Medicine{}, &prescription.Prescription{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := zap.NewNop()
	auditSvc := NewAuditService(&auditRecorder{}, nil, log)
	t.Cleanup(auditSvc.Shutdown)

	medicineRepo := repository.NewMedicineRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)

	return &testEnv{
		medicineRepo:     medicineRepo,
		prescriptionRepo: prescriptionRepo,
		stockSvc:         NewStockService(medicineRepo, auditSvc, nil, log, 10, 30*24*time.Hour),
		prescriptionSvc:  NewPrescriptionService(prescriptionRepo, medicineRepo, auditSvc, nil, log),
		auditSvc:         auditSvc,
		adminID:          uuid.New(),
	}
}

func (e *testEnv) seedMedicine(t *testing.T, name string, quantity int) *medicine.Medicine {
	t.Helper()
	m, err := e.stockSvc.CreateMedicine(context.Background(), &medicine.Medicine{
		Name:      name,
		Quantity:  quantity,
		ExpiresAt: time.Now().Add(365 * 24 * time.Hour),
		UnitPrice: 5000,
	}, e.adminID, domain.RoleAdmin, "127.0.0.1")
	if err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return m
}

func (e *testEnv) medicineQuantity(t *testing.T, id uint) int {
	t.Helper()
	m, err := e.medicineRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get medicine %d: %v", id, err)
	}
	return m.Quantity
}
