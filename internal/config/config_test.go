package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "ROUTING_NUMBER")
	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "BCRYPT_COST")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default ServerPort 8080, got %q", cfg.ServerPort)
	}
	if cfg.RoutingNumber != DefaultRoutingNumber {
		t.Fatalf("expected default routing number %q, got %q", DefaultRoutingNumber, cfg.RoutingNumber)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected default BcryptCost 12, got %d", cfg.BcryptCost)
	}
	if cfg.TokenTTLMinutes != 60 {
		t.Fatalf("expected default TokenTTLMinutes 60, got %d", cfg.TokenTTLMinutes)
	}
}

func TestLoadConfig_EnvOverridesRoutingNumber(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "ROUTING_NUMBER", "110000000")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RoutingNumber != "110000000" {
		t.Fatalf("expected routing number from env, got %q", cfg.RoutingNumber)
	}
}

func TestLoadConfig_RejectsOutOfRangeBcryptCost(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "BCRYPT_COST", "99")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected out-of-range bcrypt cost to fall back to 12, got %d", cfg.BcryptCost)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
		}
	})
}
