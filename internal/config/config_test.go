package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("server address = %q", cfg.Server.Address())
	}
	if cfg.Inventory.LowStockThreshold != 10 {
		t.Errorf("low stock threshold = %d, want 10", cfg.Inventory.LowStockThreshold)
	}
	if cfg.Inventory.ExpiryWindow != 30*24*time.Hour {
		t.Errorf("expiry window = %v, want 720h", cfg.Inventory.ExpiryWindow)
	}
	if cfg.JWT.AccessTokenTTL != 15*time.Minute {
		t.Errorf("access TTL = %v, want 15m", cfg.JWT.AccessTokenTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "25")
	t.Setenv("INVENTORY_EXPIRY_WINDOW", "168h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Inventory.LowStockThreshold != 25 {
		t.Errorf("low stock threshold = %d, want 25", cfg.Inventory.LowStockThreshold)
	}
	if cfg.Inventory.ExpiryWindow != 7*24*time.Hour {
		t.Errorf("expiry window = %v, want 168h", cfg.Inventory.ExpiryWindow)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "development")

	_, err := Load()
	if err == nil {
		t.Fatal("load succeeded without JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("error does not mention the missing variable: %v", err)
	}
}

func TestLoadProductionRules(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_SSLMODE", "disable")

	_, err := Load()
	if err == nil {
		t.Fatal("load accepted insecure production settings")
	}
	for _, want := range []string{"JWT_SECRET must be at least 32", "DB_SSLMODE=disable"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
