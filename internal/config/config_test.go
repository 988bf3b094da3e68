package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/fitness-manager/internal/persistence/sqlstore"
)

var allKeys = []string{
	"HTTP_PORT", "DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
	"DB_NAME", "DB_TLS", "DB_TLS_SKIP_VERIFY", "DB_MAX_OPEN_CONNS", "SESSION_TTL",
	"ADMIN_EMAIL", "ADMIN_PASSWORD", "STATIC_DIR", "LOG_LEVEL", "LOG_FILE",
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(Prefix+key, "")
		if err := os.Unsetenv(Prefix + key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults for optional values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FITNESS_HTTP_PORT", "8080")
		t.Setenv("FITNESS_DB_DRIVER", "sqlite")
		t.Setenv("FITNESS_DB_PATH", "/tmp/fitness.db")

		cfg, err := Load(noEnvFile(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL, got %s", cfg.SessionTTL)
		}
		if cfg.Database.MaxOpenConns != 10 {
			t.Fatalf("expected default pool size 10, got %d", cfg.Database.MaxOpenConns)
		}
		if cfg.LogLevel != "info" {
			t.Fatalf("expected default log level, got %q", cfg.LogLevel)
		}

		store := cfg.Store()
		if store.Dialect != sqlstore.DialectSQLite || store.Path != "/tmp/fitness.db" {
			t.Fatalf("unexpected store config %+v", store)
		}
	})

	t.Run("reports every missing variable together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FITNESS_DB_DRIVER", "postgres")
		t.Setenv("FITNESS_DB_HOST", "db.internal")
		t.Setenv("FITNESS_ADMIN_EMAIL", "admin@example.com")

		_, err := Load(noEnvFile(t))
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		for _, key := range []string{"FITNESS_HTTP_PORT", "FITNESS_DB_PORT", "FITNESS_DB_USER", "FITNESS_DB_NAME", "FITNESS_ADMIN_PASSWORD"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected %s in %q", key, err.Error())
			}
		}
		if strings.Contains(err.Error(), "FITNESS_DB_HOST") {
			t.Errorf("did not expect FITNESS_DB_HOST in %q", err.Error())
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FITNESS_HTTP_PORT", "eighty")
		t.Setenv("FITNESS_DB_DRIVER", "oracle")
		t.Setenv("FITNESS_LOG_LEVEL", "loud")

		_, err := Load(noEnvFile(t))
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, fragment := range []string{"invalid environment variables", "FITNESS_DB_DRIVER", "FITNESS_LOG_LEVEL"} {
			if !strings.Contains(err.Error(), fragment) {
				t.Errorf("expected %q in %q", fragment, err.Error())
			}
		}
	})

	t.Run("parses network store settings", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FITNESS_HTTP_PORT", "9090")
		t.Setenv("FITNESS_DB_DRIVER", "mysql")
		t.Setenv("FITNESS_DB_HOST", "db.internal")
		t.Setenv("FITNESS_DB_PORT", "3306")
		t.Setenv("FITNESS_DB_USER", "gym")
		t.Setenv("FITNESS_DB_PASSWORD", "secret")
		t.Setenv("FITNESS_DB_NAME", "fitness")
		t.Setenv("FITNESS_DB_TLS", "true")
		t.Setenv("FITNESS_SESSION_TTL", "2h")

		cfg, err := Load(noEnvFile(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.SessionTTL != 2*time.Hour {
			t.Fatalf("unexpected config %+v", cfg)
		}
		store := cfg.Store()
		if store.Port != 3306 || !store.TLS || store.Password != "secret" {
			t.Fatalf("unexpected store config %+v", store)
		}
	})

	t.Run("reads values from an env file", func(t *testing.T) {
		clearEnv(t)
		file := filepath.Join(t.TempDir(), "test.env")
		contents := "FITNESS_HTTP_PORT=7070\nFITNESS_DB_DRIVER=sqlite\nFITNESS_DB_PATH=from-file.db\n"
		if err := os.WriteFile(file, []byte(contents), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("FITNESS_DB_PATH", "from-env.db")

		cfg, err := Load(file)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 7070 {
			t.Fatalf("expected port from file, got %d", cfg.HTTPPort)
		}
		if cfg.Database.Path != "from-env.db" {
			t.Fatalf("expected environment to win over file, got %q", cfg.Database.Path)
		}
	})
}
