package config

import "time"

type HTTPConfig struct {
	Addr              string        `yaml:"addr" env:"HTTP_ADDR"`
	AllowedOrigins    []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes" env:"HTTP_MAX_UPLOAD_BYTES"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" env:"LOG_MODE"`
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
}

// LLMConfig holds backend model identifiers and endpoints. Credentials are
// never part of configuration; they arrive per request.
type LLMConfig struct {
	OpenAIModel      string `yaml:"openai_model" env:"OPENAI_MODEL"`
	OpenAIBaseURL    string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	AnthropicModel   string `yaml:"anthropic_model" env:"ANTHROPIC_MODEL"`
	AnthropicBaseURL string `yaml:"anthropic_base_url" env:"ANTHROPIC_BASE_URL"`
	GeminiModel      string `yaml:"gemini_model" env:"GEMINI_MODEL"`
	GeminiBaseURL    string `yaml:"gemini_base_url" env:"GEMINI_BASE_URL"`

	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"LLM_HTTP_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"LLM_REQUEST_TIMEOUT"`
	MaxRetries     int           `yaml:"max_retries" env:"LLM_MAX_RETRIES"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" env:"LLM_RETRY_BACKOFF"`
}

type OutlineConfig struct {
	LenientJSON bool `yaml:"lenient_json" env:"OUTLINE_LENIENT_JSON"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY"`
}

type TaskConfig struct {
	Store         string        `yaml:"store" env:"TASK_STORE"`
	TTL           time.Duration `yaml:"ttl" env:"TASK_TTL"`
	KeyPrefix     string        `yaml:"key_prefix" env:"TASK_KEY_PREFIX"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"-" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	SQLitePath    string        `yaml:"sqlite_path" env:"SQLITE_PATH"`
	PostgresDSN   string        `yaml:"-" env:"POSTGRES_DSN"`
}

type StorageConfig struct {
	ScratchDir string `yaml:"scratch_dir" env:"SCRATCH_DIR"`
	// Artifacts selects where finished decks are copied: "none" or "gcs".
	Artifacts      string `yaml:"artifacts" env:"ARTIFACT_STORE"`
	GCSBucket      string `yaml:"gcs_bucket" env:"DECK_GCS_BUCKET"`
	ArtifactPrefix string `yaml:"artifact_prefix" env:"ARTIFACT_PREFIX"`

	// ObjectStorageMode is "gcs" or "gcs_emulator"; empty infers from EmulatorHost.
	ObjectStorageMode string `yaml:"object_storage_mode" env:"OBJECT_STORAGE_MODE"`
	EmulatorHost      string `yaml:"emulator_host" env:"STORAGE_EMULATOR_HOST"`
	// GCPCredentialsJSON wins over GCPCredentialsFile.
	GCPCredentialsJSON string `yaml:"-" env:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	GCPCredentialsFile string `yaml:"gcp_credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" env:"OTEL_ENABLED"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	Environment string  `yaml:"environment" env:"DEPLOY_ENV"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Headers is a comma separated k=v list.
	Headers string `yaml:"-" env:"OTEL_EXPORTER_OTLP_HEADERS"`
}

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	LLM     LLMConfig     `yaml:"llm"`
	Outline OutlineConfig `yaml:"outline"`
	Worker  WorkerConfig  `yaml:"worker"`
	Tasks   TaskConfig    `yaml:"tasks"`
	Storage StorageConfig `yaml:"storage"`
	Tracing TracingConfig `yaml:"tracing"`
}

const (
	TaskStoreMemory = "memory"
	TaskStoreRedis  = "redis"
	TaskStoreSQL    = "sql"

	ArtifactsNone = "none"
	ArtifactsGCS  = "gcs"
)
