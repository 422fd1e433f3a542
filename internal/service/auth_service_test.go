package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"medstock/internal/config"
	"medstock/internal/domain"
	"medstock/internal/repository"
	"medstock/pkg/auth"
)

func newAuthService(t *testing.T) *AuthService {
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

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-test-secret-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "medstock-test",
	})

	log := zap.NewNop()
	auditSvc := NewAuditService(&auditRecorder{}, nil, log)
	t.Cleanup(auditSvc.Shutdown)

	return NewAuthService(repository.NewUserRepository(db), jwtManager, auditSvc, log)
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana Wijaya", "ana@example.com", "s3cret-pass", "127.0.0.1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleStaff {
		t.Fatalf("public registration produced role %q, want staff", user.Role)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}

	result, err := svc.Login(ctx, "ana@example.com", "s3cret-pass", "127.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.DisplayName != "Ana Wijaya" || result.Role != domain.RoleStaff {
		t.Fatalf("login result = %+v", result)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.TokenType != "Bearer" {
		t.Fatalf("token pair = %+v", result.Tokens)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret-pass", "127.0.0.1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "ana@example.com", "wrong", "127.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)

	if _, err := svc.Login(context.Background(), "nobody@example.com", "whatever", "127.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret-pass", "127.0.0.1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Ana Again", "ana@example.com", "other-pass", "127.0.0.1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), " ", "not-an-email", "short", "127.0.0.1")
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(validErr.Fields) != 3 {
		t.Fatalf("got %d failed fields, want 3: %v", len(validErr.Fields), validErr.Fields)
	}
}
