package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"segmark/internal/splitter"
)

type Config struct {
	Port string

	// Knowledge base connection
	KBBaseURL     string
	KBAPIKey      string
	KBDatasetName string
	KBMaxTokens   int
	KBPollEvery   time.Duration

	// OCR parse service (for scanned PDFs and other non-local formats)
	OCREnabled      bool
	OCRBaseURL      string
	OCRAPIKey       string
	OCRModelVersion string
	OCRPollEvery    time.Duration

	// Auth
	ServiceAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Splitting
	Split             splitter.Config
	SplitProfilePath  string
	SentenceCacheSize int

	// PDF
	PDFFallbackPdftotext bool
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		KBBaseURL:     envOr("KB_BASE_URL", "http://localhost:5001/v1"),
		KBAPIKey:      os.Getenv("KB_API_KEY"),
		KBDatasetName: os.Getenv("KB_DATASET_NAME"),
		KBMaxTokens:   envInt("KB_MAX_TOKENS", 4000),
		KBPollEvery:   envDuration("KB_POLL_INTERVAL", 5*time.Second),

		OCREnabled:      envBool("OCR_ENABLED", false),
		OCRBaseURL:      envOr("OCR_BASE_URL", "https://mineru.net/api/v4"),
		OCRAPIKey:       os.Getenv("OCR_API_KEY"),
		OCRModelVersion: envOr("OCR_MODEL_VERSION", "vlm"),
		OCRPollEvery:    envDuration("OCR_POLL_INTERVAL", 30*time.Second),

		ServiceAPIKey: os.Getenv("SEGMARK_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		SplitProfilePath:  os.Getenv("SPLIT_PROFILE"),
		SentenceCacheSize: envInt("SENTENCE_CACHE_SIZE", splitter.DefaultCacheSize),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SentenceCacheSize <= 0 {
		cfg.SentenceCacheSize = splitter.DefaultCacheSize
	}

	split, err := loadSplitConfig(cfg.SplitProfilePath)
	if err != nil {
		return Config{}, err
	}
	cfg.Split = split

	return cfg, nil
}

func (c Config) Validate() error {
	if c.KBAPIKey == "" {
		return fmt.Errorf("KB_API_KEY is required")
	}
	if c.KBDatasetName == "" {
		return fmt.Errorf("KB_DATASET_NAME is required")
	}
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("SEGMARK_API_KEY is required")
	}
	if c.OCREnabled && c.OCRAPIKey == "" {
		return fmt.Errorf("OCR_API_KEY is required when OCR_ENABLED=true")
	}
	return c.Split.Validate()
}

// loadSplitConfig starts from defaults, applies the YAML profile if one is
// configured, then applies env overrides on top.
func loadSplitConfig(profilePath string) (splitter.Config, error) {
	cfg := splitter.DefaultConfig()

	if profilePath != "" {
		data, err := os.ReadFile(profilePath)
		if err != nil {
			return splitter.Config{}, fmt.Errorf("read split profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return splitter.Config{}, fmt.Errorf("parse split profile %s: %w", profilePath, err)
		}
	}

	cfg.Enabled = envBool("SPLIT_ENABLED", cfg.Enabled)
	cfg.SplitMarker = envOr("SPLIT_MARKER", cfg.SplitMarker)
	cfg.MaxLength = envInt("SPLIT_MAX_LENGTH", cfg.MaxLength)
	cfg.MinLength = envInt("SPLIT_MIN_LENGTH", cfg.MinLength)
	cfg.MinSplitScore = envFloat("SPLIT_MIN_SCORE", cfg.MinSplitScore)
	cfg.HeadingScoreBonus = envFloat("SPLIT_HEADING_BONUS", cfg.HeadingScoreBonus)
	cfg.SentenceEndScoreBonus = envFloat("SPLIT_SENTENCE_END_BONUS", cfg.SentenceEndScoreBonus)
	cfg.SentenceIntegrityWeight = envFloat("SPLIT_SENTENCE_WEIGHT", cfg.SentenceIntegrityWeight)
	cfg.LengthScoreFactor = envInt("SPLIT_LENGTH_FACTOR", cfg.LengthScoreFactor)
	cfg.HeadingAfterPenalty = envFloat("SPLIT_HEADING_AFTER_PENALTY", cfg.HeadingAfterPenalty)
	cfg.SearchWindow = envInt("SPLIT_SEARCH_WINDOW", cfg.SearchWindow)
	cfg.ForceSplitBeforeHeading = envBool("SPLIT_FORCE_BEFORE_HEADING", cfg.ForceSplitBeforeHeading)
	cfg.HeadingCooldownElements = envInt("SPLIT_HEADING_COOLDOWN", cfg.HeadingCooldownElements)
	cfg.CustomHeadingRegex = envOr("SPLIT_CUSTOM_HEADING_REGEX", cfg.CustomHeadingRegex)

	if err := cfg.Validate(); err != nil {
		return splitter.Config{}, fmt.Errorf("split config: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
