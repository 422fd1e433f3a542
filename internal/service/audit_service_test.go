package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"medstock/internal/domain"
)

func TestLogAsyncCarriesRequestID(t *testing.T) {
	t.Parallel()
	rec := &auditRecorder{}
	svc := NewAuditService(rec, nil, zap.NewNop())

	ctx := WithRequestID(context.Background(), "req-123")
	svc.LogAsync(ctx, AuditEntry{
		Action:       domain.ActionCreate,
		ResourceType: "medicine",
		ResourceID:   "1",
	})
	svc.Shutdown()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(rec.entries))
	}
	if rec.entries[0].RequestID != "req-123" {
		t.Fatalf("request id = %q, want req-123", rec.entries[0].RequestID)
	}
}

func TestLogAsyncKeepsExplicitRequestID(t *testing.T) {
	t.Parallel()
	rec := &auditRecorder{}
	svc := NewAuditService(rec, nil, zap.NewNop())

	ctx := WithRequestID(context.Background(), "from-context")
	svc.LogAsync(ctx, AuditEntry{
		Action:       domain.ActionDelete,
		ResourceType: "prescription",
		RequestID:    "explicit",
	})
	svc.Shutdown()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(rec.entries))
	}
	if rec.entries[0].RequestID != "explicit" {
		t.Fatalf("request id = %q, want the explicitly set value", rec.entries[0].RequestID)
	}
}
