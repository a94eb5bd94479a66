package config

import (
	"log/slog"
	"testing"
	"time"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("schemapilot", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.Backend != BackendPostgres {
		t.Fatalf("Backend = %q", cfg.Backend)
	}
	if cfg.Postgres.Schema != "public" {
		t.Fatalf("Postgres.Schema = %q", cfg.Postgres.Schema)
	}
	if cfg.Artifact.Dir != "output" {
		t.Fatalf("Artifact.Dir = %q", cfg.Artifact.Dir)
	}
	if cfg.ObjectStore.PublishEnabled {
		t.Fatal("ObjectStore.PublishEnabled should default to false")
	}
	if cfg.AI.APIKey != "" {
		t.Fatal("AI.APIKey should default to empty")
	}
	if cfg.AI.Model != "deepseek-coder" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	cfg, err := Load("schemapilot", mapLookup(map[string]string{"SCHEMAPILOT_PROFILE": "prod"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.LogJSON {
		t.Fatal("LogJSON should default to true in prod")
	}
	if !cfg.ObjectStore.UseSSL {
		t.Fatal("ObjectStore.UseSSL should default to true in prod")
	}
	if cfg.ObjectStore.AutoCreateBucket {
		t.Fatal("ObjectStore.AutoCreateBucket should default to false in prod")
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	cfg, err := Load("schemapilot", mapLookup(map[string]string{
		"SCHEMAPILOT_BACKEND":          "hive",
		"SCHEMAPILOT_DATABASE":         "warehouse",
		"SCHEMAPILOT_HIVE_DSN":         "hive.internal:10000/warehouse?auth=PLAIN",
		"SCHEMAPILOT_AI_API_KEY":       "sk-test",
		"SCHEMAPILOT_AI_TIMEOUT":       "30s",
		"SCHEMAPILOT_LOG_LEVEL":        "warn",
		"SCHEMAPILOT_METRICS_PUSH_URL": "http://pushgateway:9091",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendHive {
		t.Fatalf("Backend = %q", cfg.Backend)
	}
	if cfg.Database != "warehouse" {
		t.Fatalf("Database = %q", cfg.Database)
	}
	if cfg.Hive.DSN != "hive.internal:10000/warehouse?auth=PLAIN" {
		t.Fatalf("Hive.DSN = %q", cfg.Hive.DSN)
	}
	if cfg.AI.APIKey != "sk-test" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Observability.LogLevel != slog.LevelWarn {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsPushURL != "http://pushgateway:9091" {
		t.Fatalf("MetricsPushURL = %q", cfg.Observability.MetricsPushURL)
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	if _, err := Load("schemapilot", mapLookup(map[string]string{"SCHEMAPILOT_PROFILE": "staging"})); err == nil {
		t.Fatal("expected error for invalid profile")
	}
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	if _, err := Load("schemapilot", mapLookup(map[string]string{"SCHEMAPILOT_BACKEND": "mysql"})); err == nil {
		t.Fatal("expected error for invalid backend")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	if _, err := Load("schemapilot", mapLookup(map[string]string{"SCHEMAPILOT_AI_TIMEOUT": "soon"})); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadRequiresDatabaseName(t *testing.T) {
	if _, err := Load("schemapilot", mapLookup(map[string]string{"SCHEMAPILOT_DATABASE": " "})); err == nil {
		t.Fatal("expected error for empty database name")
	}
}

func TestLoadRequiresLookup(t *testing.T) {
	if _, err := Load("schemapilot", nil); err == nil {
		t.Fatal("expected error for nil lookup")
	}
}
