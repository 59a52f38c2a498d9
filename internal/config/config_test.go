package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("port %d, want 8080", cfg.Server.Port)
	}
	if cfg.VectorStore.Backend != "chromem" {
		t.Errorf("backend %q, want chromem", cfg.VectorStore.Backend)
	}
	if cfg.Pipeline.ChunkSize != 1000 || cfg.Pipeline.ChunkOverlap != 200 {
		t.Errorf("chunking %d/%d, want 1000/200", cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  auth_secret: file-secret
vector_store:
  backend: qdrant
  qdrant_url: http://localhost:6333
pipeline:
  chunk_size: 500
  chunk_overlap: 100
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.AuthSecret != "file-secret" {
		t.Errorf("auth_secret %q", cfg.Server.AuthSecret)
	}
	if cfg.VectorStore.Backend != "qdrant" {
		t.Errorf("backend %q", cfg.VectorStore.Backend)
	}
	// File sections replace only what they set; defaults survive elsewhere
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("max_open_conns %d, want default 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Pipeline.ChunkSize != 500 {
		t.Errorf("chunk_size %d, want 500", cfg.Pipeline.ChunkSize)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port %d, env should win over file", cfg.Server.Port)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("redis url %q", cfg.Redis.URL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("allowed origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"empty database url", func(c *Config) { c.Database.URL = "" }},
		{"overlap ge size", func(c *Config) { c.Pipeline.ChunkOverlap = c.Pipeline.ChunkSize }},
		{"min score above one", func(c *Config) { c.Pipeline.MinScore = 1.5 }},
		{"unknown backend", func(c *Config) { c.VectorStore.Backend = "pinecone" }},
		{"qdrant without url", func(c *Config) { c.VectorStore.Backend = "qdrant" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPipelineSettings(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.BatchDelayMS = 1500

	settings := cfg.PipelineSettings()
	if settings.BatchDelay != 1500*time.Millisecond {
		t.Errorf("batch delay %v", settings.BatchDelay)
	}
	if settings.ChunkSize != cfg.Pipeline.ChunkSize {
		t.Errorf("chunk size %d", settings.ChunkSize)
	}
}
