package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %s", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected default worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.Split.MaxLength != 1200 {
		t.Errorf("expected default max length 1200, got %d", cfg.Split.MaxLength)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPLIT_MAX_LENGTH", "2000")
	t.Setenv("SPLIT_LENGTH_FACTOR", "50")
	t.Setenv("SPLIT_ENABLED", "false")
	t.Setenv("WORKER_COUNT", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Split.MaxLength != 2000 {
		t.Errorf("expected max length 2000, got %d", cfg.Split.MaxLength)
	}
	if cfg.Split.LengthScoreFactor != 50 {
		t.Errorf("expected length factor 50, got %d", cfg.Split.LengthScoreFactor)
	}
	if cfg.Split.Enabled {
		t.Error("expected splitting disabled")
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
}

func TestLoad_SplitProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	content := "max_length: 800\nmin_length: 200\nmin_split_score: 5.5\n"
	if err := os.WriteFile(profile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLIT_PROFILE", profile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Split.MaxLength != 800 || cfg.Split.MinLength != 200 {
		t.Errorf("profile not applied: max=%d min=%d", cfg.Split.MaxLength, cfg.Split.MinLength)
	}
	if cfg.Split.MinSplitScore != 5.5 {
		t.Errorf("expected min score 5.5, got %v", cfg.Split.MinSplitScore)
	}
	// Values the profile does not set keep their defaults.
	if cfg.Split.SplitMarker == "" {
		t.Error("expected default marker to survive profile load")
	}
}

func TestLoad_EnvWinsOverProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(profile, []byte("max_length: 800\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLIT_PROFILE", profile)
	t.Setenv("SPLIT_MAX_LENGTH", "1500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Split.MaxLength != 1500 {
		t.Errorf("expected env override 1500, got %d", cfg.Split.MaxLength)
	}
}

func TestLoad_InvalidSplitConfig(t *testing.T) {
	t.Setenv("SPLIT_MAX_LENGTH", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid split config")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error with missing keys")
	}

	cfg.KBAPIKey = "k"
	cfg.KBDatasetName = "ds"
	cfg.ServiceAPIKey = "s"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	cfg.OCREnabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for OCR without key")
	}
}
