package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Log           LogConfig           `yaml:"log"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Retry         RetryConfig         `yaml:"retry"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	LLM           LLMConfig           `yaml:"llm"`
	Storage       StorageConfig       `yaml:"storage"`
	Audit         AuditConfig         `yaml:"audit"`
	Notify        NotifyConfig        `yaml:"notify"`
	Sentry        SentryConfig        `yaml:"sentry"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	CORS          CORSConfig          `yaml:"cors"`
}

// CORSConfig holds Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"20s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES" env-default:"104857600"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds bearer token validation settings. Tokens are issued
// elsewhere; this service only verifies them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"voicedoc"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// PipelineConfig holds worker pool and review queue policy.
type PipelineConfig struct {
	Workers               int           `yaml:"workers"                env:"PIPELINE_WORKERS"                env-default:"4"`
	ExtractionConcurrency int           `yaml:"extraction_concurrency" env:"PIPELINE_EXTRACTION_CONCURRENCY" env-default:"3"`
	AcceptanceThreshold   float64       `yaml:"acceptance_threshold"   env:"PIPELINE_ACCEPTANCE_THRESHOLD"   env-default:"0.6"`
	Aggregation           string        `yaml:"aggregation"            env:"PIPELINE_AGGREGATION"            env-default:"mean"`
	TranscribeTimeout     time.Duration `yaml:"transcribe_timeout"     env:"PIPELINE_TRANSCRIBE_TIMEOUT"     env-default:"5m"`
	LLMTimeout            time.Duration `yaml:"llm_timeout"            env:"PIPELINE_LLM_TIMEOUT"            env-default:"60s"`
	AgingInterval         time.Duration `yaml:"aging_interval"         env:"PIPELINE_AGING_INTERVAL"         env-default:"5m"`
	MaxPriority           int           `yaml:"max_priority"           env:"PIPELINE_MAX_PRIORITY"           env-default:"10"`
	StaleAfter            time.Duration `yaml:"stale_after"            env:"PIPELINE_STALE_AFTER"            env-default:"24h"`
	SweepInterval         time.Duration `yaml:"sweep_interval"         env:"PIPELINE_SWEEP_INTERVAL"         env-default:"15m"`
	ResyncInterval        time.Duration `yaml:"resync_interval"        env:"PIPELINE_RESYNC_INTERVAL"        env-default:"1m"`
	UrgentAfter           time.Duration `yaml:"urgent_after"           env:"PIPELINE_URGENT_AFTER"           env-default:"24h"`
}

// RetryConfig is the backoff policy applied to every external call.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"RETRY_MAX_ATTEMPTS" env-default:"3"`
	BaseDelay   time.Duration `yaml:"base_delay"   env:"RETRY_BASE_DELAY"   env-default:"500ms"`
	MaxDelay    time.Duration `yaml:"max_delay"    env:"RETRY_MAX_DELAY"    env-default:"10s"`
	Jitter      float64       `yaml:"jitter"       env:"RETRY_JITTER"       env-default:"0.2"`
}

// TranscriptionConfig points at the whisper transcription service.
type TranscriptionConfig struct {
	BaseURL       string `yaml:"base_url"       env:"TRANSCRIPTION_BASE_URL"       env-default:"http://localhost:8000"`
	Language      string `yaml:"language"       env:"TRANSCRIPTION_LANGUAGE"       env-default:"ja"`
	InitialPrompt string `yaml:"initial_prompt" env:"TRANSCRIPTION_INITIAL_PROMPT"`
}

// LLMConfig selects and tunes the language model backend.
type LLMConfig struct {
	Provider  string  `yaml:"provider"   env:"LLM_PROVIDER"   env-default:"anthropic"`
	Model     string  `yaml:"model"      env:"LLM_MODEL"      env-default:"claude-sonnet-4-5"`
	APIKey    string  `yaml:"api_key"    env:"LLM_API_KEY"`
	BaseURL   string  `yaml:"base_url"   env:"LLM_BASE_URL"`
	MaxTokens int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"2048"`
	RPS       float64 `yaml:"rps"        env:"LLM_RPS"        env-default:"5"`
	Burst     int     `yaml:"burst"      env:"LLM_BURST"      env-default:"5"`
}

// StorageConfig selects where raw audio lives.
type StorageConfig struct {
	Backend   string `yaml:"backend"    env:"STORAGE_BACKEND"    env-default:"local"`
	LocalDir  string `yaml:"local_dir"  env:"STORAGE_LOCAL_DIR"  env-default:"./data/audio"`
	Bucket    string `yaml:"bucket"     env:"STORAGE_BUCKET"`
	Prefix    string `yaml:"prefix"     env:"STORAGE_PREFIX"     env-default:"recordings"`
	Region    string `yaml:"region"     env:"STORAGE_REGION"     env-default:"ap-northeast-1"`
	Endpoint  string `yaml:"endpoint"   env:"STORAGE_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"STORAGE_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"STORAGE_SECRET_KEY"`
}

// AuditConfig holds hash chain settings.
type AuditConfig struct {
	HashAlgorithm string `yaml:"hash_algorithm" env:"AUDIT_HASH_ALGORITHM" env-default:"sha256"`
}

// NotifyConfig configures the optional NATS fan-out of phase events.
type NotifyConfig struct {
	NATSURL       string `yaml:"nats_url"       env:"NOTIFY_NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" env:"NOTIFY_SUBJECT_PREFIX" env-default:"voicedoc.events"`
}

// SentryConfig enables error and integrity alarm reporting.
type SentryConfig struct {
	DSN         string `yaml:"dsn"         env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" env-default:"development"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"    env:"TELEMETRY_SERVICE_NAME"    env-default:"voicedoc"`
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"TELEMETRY_METRICS_ENABLED" env-default:"true"`
}

// RateLimitConfig limits recording uploads per user.
type RateLimitConfig struct {
	UploadsPerMinute int `yaml:"uploads_per_minute" env:"RATE_LIMIT_UPLOADS_PER_MINUTE" env-default:"30"`
	Burst            int `yaml:"burst"              env:"RATE_LIMIT_BURST"              env-default:"10"`
}
