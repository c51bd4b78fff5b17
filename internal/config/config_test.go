package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9000"
  cors_origins: ["http://localhost:3000"]
database:
  driver: sqlite3
jobs:
  cache_ttl: 90m
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Database.DSN == "" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Jobs.CacheTTL != 90*time.Minute {
		t.Fatalf("cache_ttl = %v", cfg.Jobs.CacheTTL)
	}
	if cfg.Model.MaxFeatures != 1500 || cfg.NER.Provider != "gazetteer" {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Model, cfg.NER)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Database.Driver != "mysql" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Server, cfg.Database)
	}
	if cfg.Server.WSWordDelay != 50*time.Millisecond || len(cfg.Server.CORSOrigins) != 0 {
		t.Fatalf("unexpected stream defaults: %+v", cfg.Server)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":7000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AMADEUS_CLIENT_ID", "id")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" || cfg.Auth.JWTSecret != "s3cret" || cfg.Amadeus.ClientID != "id" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestConnectDBSqlite(t *testing.T) {
	CloseDB()
	t.Cleanup(CloseDB)
	db, err := ConnectDB(DatabaseConfig{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "t.db")})
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if db != DB || Driver() != "sqlite3" {
		t.Fatalf("shared handle not installed")
	}
	again, _ := ConnectDB(DatabaseConfig{Driver: "mysql", DSN: "ignored"})
	if again != db {
		t.Fatalf("ConnectDB should be idempotent")
	}
	if err := EnsureDB(); err != nil {
		t.Fatalf("EnsureDB: %v", err)
	}
}
