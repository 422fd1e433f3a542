package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"medstock/internal/config"
	"medstock/internal/domain"
)

func newManager(accessTTL time.Duration) *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-test-secret-test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: time.Hour,
		Issuer:          "medstock-test",
	})
}

func testClaims() *domain.Claims {
	return &domain.Claims{
		UserID:      uuid.New(),
		Email:       "ana@example.com",
		Role:        domain.RoleAdmin,
		DisplayName: "Ana",
	}
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()
	mgr := newManager(15 * time.Minute)
	claims := testClaims()

	pair, err := mgr.GenerateTokenPair(claims)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := mgr.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if got.UserID != claims.UserID || got.Email != claims.Email || got.Role != claims.Role {
		t.Fatalf("claims round trip: got %+v, want %+v", got, claims)
	}

	if _, err := mgr.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	t.Parallel()
	mgr := newManager(15 * time.Minute)

	pair, err := mgr.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := mgr.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := mgr.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()
	mgr := newManager(-time.Minute)

	pair, err := mgr.GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := mgr.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	t.Parallel()

	pair, err := newManager(15 * time.Minute).GenerateTokenPair(testClaims())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager(config.JWTConfig{
		Secret:          "a-completely-different-signing-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "medstock-test",
	})
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}

	if _, err := newManager(15*time.Minute).ValidateAccessToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage token: got %v, want ErrTokenInvalid", err)
	}
}
