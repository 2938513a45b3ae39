package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:8501",
				"http://frontend:8501",
				"http://localhost:3000",
				"http://localhost:5173",
			},
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			MaxUploadBytes:    50 << 20,
		},
		Log: LogConfig{
			Mode:  "development",
			Level: "debug",
		},
		LLM: LLMConfig{
			OpenAIModel:      "gpt-4o-mini",
			AnthropicModel:   "claude-3-haiku-20240307",
			AnthropicBaseURL: "https://api.anthropic.com",
			GeminiModel:      "gemini-1.5-flash",
			GeminiBaseURL:    "https://generativelanguage.googleapis.com",
			HTTPTimeout:      120 * time.Second,
			RetryBackoff:     2 * time.Second,
		},
		Worker: WorkerConfig{Concurrency: 4},
		Tasks: TaskConfig{
			Store:      TaskStoreMemory,
			TTL:        24 * time.Hour,
			KeyPrefix:  "deckforge",
			RedisAddr:  "localhost:6379",
			SQLitePath: "deckforge.db",
		},
		Storage: StorageConfig{
			ScratchDir:     filepath.Join(os.TempDir(), "deckforge"),
			Artifacts:      ArtifactsNone,
			ArtifactPrefix: "decks",
		},
		Tracing: TracingConfig{
			ServiceName: "deckforge",
			Environment: "dev",
			SampleRatio: 0.1,
		},
	}
}

// Load resolves configuration from defaults, an optional YAML file named by
// DECKFORGE_CONFIG, an optional .env file, then the process environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("DECKFORGE_CONFIG")); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	dotenv := strings.TrimSpace(os.Getenv("DOTENV_PATH"))
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotenv, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() error {
	c.HTTP.Addr = strings.TrimSpace(c.HTTP.Addr)
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8000"
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		c.HTTP.MaxUploadBytes = 50 << 20
	}
	origins := c.HTTP.AllowedOrigins[:0]
	for _, o := range c.HTTP.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.AllowedOrigins = origins

	c.LLM.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.OpenAIBaseURL), "/")
	c.LLM.AnthropicBaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.AnthropicBaseURL), "/")
	c.LLM.GeminiBaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.GeminiBaseURL), "/")
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must be >= 0, got %d", c.LLM.MaxRetries)
	}
	if c.LLM.RequestTimeout < 0 || c.LLM.HTTPTimeout < 0 || c.LLM.RetryBackoff < 0 {
		return errors.New("llm timeouts must not be negative")
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be > 0, got %d", c.Worker.Concurrency)
	}

	c.Tasks.Store = strings.ToLower(strings.TrimSpace(c.Tasks.Store))
	switch c.Tasks.Store {
	case "":
		c.Tasks.Store = TaskStoreMemory
	case TaskStoreMemory, TaskStoreSQL:
	case TaskStoreRedis:
		if strings.TrimSpace(c.Tasks.RedisAddr) == "" {
			return errors.New("TASK_STORE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown TASK_STORE %q (want memory, redis or sql)", c.Tasks.Store)
	}
	if c.Tasks.TTL < 0 {
		return errors.New("TASK_TTL must not be negative")
	}

	if strings.TrimSpace(c.Storage.ScratchDir) == "" {
		return errors.New("SCRATCH_DIR is required")
	}
	c.Storage.Artifacts = strings.ToLower(strings.TrimSpace(c.Storage.Artifacts))
	switch c.Storage.Artifacts {
	case "", ArtifactsNone:
		c.Storage.Artifacts = ArtifactsNone
	case ArtifactsGCS:
		if strings.TrimSpace(c.Storage.GCSBucket) == "" {
			return errors.New("ARTIFACT_STORE=gcs requires DECK_GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_STORE %q (want none or gcs)", c.Storage.Artifacts)
	}

	if c.Tracing.SampleRatio < 0 {
		c.Tracing.SampleRatio = 0
	}
	if c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}
	if strings.TrimSpace(c.Tracing.ServiceName) == "" {
		c.Tracing.ServiceName = "deckforge"
	}
	return nil
}
