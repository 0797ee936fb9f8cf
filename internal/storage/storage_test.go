package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/autotag/internal/model"
	"github.com/nikbrunner/autotag/internal/storage"
)

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	storePath := filepath.Join(tmpDir, "notes.json")

	store := &model.Store{
		Notes: []model.Note{
			{ID: "n1", Title: "Test", Path: "/notes/test.md", Tags: []string{"test"}},
		},
	}

	s := storage.NewJSONStorage(storePath)
	if err := s.Save(store); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if _, err := os.Stat(storePath); os.IsNotExist(err) {
		t.Fatal("store file was not created")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if len(loaded.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(loaded.Notes))
	}
	if loaded.Notes[0].Path != "/notes/test.md" {
		t.Errorf("expected path '/notes/test.md', got %q", loaded.Notes[0].Path)
	}
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "nonexistent.json"))
	store, err := s.Load()
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got: %v", err)
	}

	if store.Notes == nil {
		t.Error("expected initialized notes slice")
	}
}

func TestJSONStorage_NilTagsBecomeEmpty(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "notes.json")
	if err := os.WriteFile(storePath, []byte(`{"notes":[{"id":"n1","title":"x","tags":null}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewJSONStorage(storePath).Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if store.Notes[0].Tags == nil {
		t.Error("expected nil tags to be replaced with empty slice")
	}
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "nested", "dir", "notes.json")

	if err := storage.NewJSONStorage(storePath).Save(model.NewStore()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if _, err := os.Stat(storePath); err != nil {
		t.Errorf("expected file in nested dir: %v", err)
	}
}

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	defaults := storage.DefaultConfig()
	if cfg.BatchConcurrency != defaults.BatchConcurrency {
		t.Errorf("expected concurrency %d, got %d", defaults.BatchConcurrency, cfg.BatchConcurrency)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("expected config file to be written: %v", err)
	}
}

func TestLoadConfig_FillsMissingFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(`{"openaiApiKey":"sk-file"}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.OpenAIAPIKey != "sk-file" {
		t.Errorf("expected key from file, got %q", cfg.OpenAIAPIKey)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("expected default timeout, got %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.NotesDir != "." {
		t.Errorf("expected default notes dir, got %q", cfg.NotesDir)
	}
}

func TestConfig_APIKeyPrefersEnvironment(t *testing.T) {
	cfg := storage.Config{OpenAIAPIKey: "sk-file"}

	t.Setenv(storage.APIKeyEnv, "")
	if got := cfg.APIKey(); got != "sk-file" {
		t.Errorf("expected file key, got %q", got)
	}

	t.Setenv(storage.APIKeyEnv, "sk-env")
	if got := cfg.APIKey(); got != "sk-env" {
		t.Errorf("expected env key, got %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("AUTOTAG_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	// Registers cleanup, then clears so godotenv may set it.
	t.Setenv("AUTOTAG_TEST_DOTENV", "")
	os.Unsetenv("AUTOTAG_TEST_DOTENV")

	if err := storage.LoadDotEnv(filepath.Join(tmpDir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	if got := os.Getenv("AUTOTAG_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}
}
