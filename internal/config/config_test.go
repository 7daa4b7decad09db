package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("INGEST_FRESHNESS", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Ingestion.Freshness != 6*time.Hour {
		t.Errorf("Freshness = %v, want 6h", cfg.Ingestion.Freshness)
	}
	if cfg.Scoring.FavoriteBonus != 30 || cfg.Scoring.LocationMatch != 25 ||
		cfg.Scoring.LocationTableMatch != 20 || cfg.Scoring.LocationDefault != 5 ||
		cfg.Scoring.CuisineMatch != 10 {
		t.Errorf("unexpected scoring defaults: %+v", cfg.Scoring)
	}
	if cfg.Scoring.TopItems != 5 {
		t.Errorf("TopItems = %d, want 5", cfg.Scoring.TopItems)
	}
	if cfg.OpenAI.Enabled {
		t.Error("OpenAI should be disabled without an API key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("INGEST_FRESHNESS", "90m")
	t.Setenv("INGEST_INTERVAL", "not-a-duration")
	t.Setenv("SCORE_FAVORITE_BONUS", "12.5")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Ingestion.Freshness != 90*time.Minute {
		t.Errorf("Freshness = %v, want 90m", cfg.Ingestion.Freshness)
	}
	if cfg.Ingestion.Interval != 0 {
		t.Errorf("invalid duration should fall back to default, got %v", cfg.Ingestion.Interval)
	}
	if cfg.Scoring.FavoriteBonus != 12.5 {
		t.Errorf("FavoriteBonus = %v, want 12.5", cfg.Scoring.FavoriteBonus)
	}
	if !cfg.OpenAI.Enabled {
		t.Error("OpenAI should be enabled with an API key")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "mysql"},
			wantErr: "DB_DRIVER",
		},
		{
			name:    "negative retention",
			env:     map[string]string{"JWT_SECRET": "s", "INGEST_RETENTION_DAYS": "-1"},
			wantErr: "INGEST_RETENTION_DAYS",
		},
		{
			name:    "too many top items",
			env:     map[string]string{"JWT_SECRET": "s", "SCORE_TOP_ITEMS": "10"},
			wantErr: "SCORE_TOP_ITEMS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := cfg.GetPostgreSQLDSN(); got != want {
		t.Errorf("GetPostgreSQLDSN() = %q, want %q", got, want)
	}

	cfg.Database.DSN = "postgres://x"
	if got := cfg.GetPostgreSQLDSN(); got != "postgres://x" {
		t.Errorf("DSN should take precedence, got %q", got)
	}
}
