package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Resume   ResumeConfig
	Feed     FeedConfig
	Importer ImporterConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogLevel    string
	// DevResumeStub mounts POST /api/parse-resume.
	DevResumeStub bool
}

type DatabaseConfig struct {
	URL        string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type ResumeConfig struct {
	// LLM settings for an OpenAI-compatible endpoint (Groq by default).
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	SystemPromptPath string
	PDFToTextPath    string
	MaxUploadBytes   int64

	// ScriptPath is the resume script the development stub runs when present.
	ScriptPath string
}

type FeedConfig struct {
	BatchSize int
	TopK      int
}

type ImporterConfig struct {
	ListURL          string
	SourceName       string
	LinkSelector     string
	TitleSelector    string
	CompanySelector  string
	LocationSelector string
	TagSelector      string
	DateSelector     string
	BodySelector     string
	Workers          int
	RatePerSecond    int
	// IntervalHours enables the in-process scheduler when positive.
	IntervalHours int
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		v := opt(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		v := opt(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	optBool := func(key string) bool {
		v := opt(key)
		if v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, key)
			return false
		}
		return b
	}

	cfg.App = AppConfig{
		AppName:       optDefault("APP_NAME", "swipehire"),
		Environment:   optDefault("APP_ENV", "development"),
		HTTPPort:      req("HTTP_PORT"),
		LogLevel:      optDefault("LOG_LEVEL", "info"),
		DevResumeStub: optBool("DEV_RESUME_STUB"),
	}

	cfg.Database = DatabaseConfig{
		URL:                   opt("DATABASE_URL"),
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             optDefault("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
		MigrationsDir:         opt("MIGRATIONS_DIR"),
	}
	if cfg.Database.URL == "" && cfg.Database.DBHost == "" {
		missing = append(missing, "DATABASE_URL or DB_HOST")
	}

	cfg.Redis = RedisConfig{
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      time.Duration(optInt("REDIS_TTL", 600)) * time.Second,
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  optDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: optDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.Resume = ResumeConfig{
		LLMAPIKey:        opt("GROQ_KEY"),
		LLMBaseURL:       optDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:         optDefault("LLM_MODEL", "llama-3.3-70b-versatile"),
		SystemPromptPath: optDefault("RESUME_SYSTEM_PROMPT", "system_prompt.txt"),
		PDFToTextPath:    optDefault("PDFTOTEXT_PATH", "pdftotext"),
		MaxUploadBytes:   int64(optInt("RESUME_MAX_UPLOAD_BYTES", 10<<20)),
		ScriptPath:       optDefault("RESUME_SCRIPT", "resume.py"),
	}

	cfg.Feed = FeedConfig{
		BatchSize: optInt("FEED_BATCH_SIZE", 5),
		TopK:      optInt("FEED_TOP_K", 3000),
	}

	cfg.Importer = ImporterConfig{
		ListURL:          opt("IMPORT_LIST_URL"),
		SourceName:       optDefault("IMPORT_SOURCE_NAME", "careers"),
		LinkSelector:     optDefault("IMPORT_LINK_SELECTOR", "a"),
		TitleSelector:    optDefault("IMPORT_TITLE_SELECTOR", "h1"),
		CompanySelector:  opt("IMPORT_COMPANY_SELECTOR"),
		LocationSelector: opt("IMPORT_LOCATION_SELECTOR"),
		TagSelector:      opt("IMPORT_TAG_SELECTOR"),
		DateSelector:     opt("IMPORT_DATE_SELECTOR"),
		BodySelector:     optDefault("IMPORT_BODY_SELECTOR", "body"),
		Workers:          optInt("IMPORT_WORKERS", 4),
		RatePerSecond:    optInt("IMPORT_RPS", 3),
		IntervalHours:    optInt("IMPORT_INTERVAL_HOURS", 0),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr returns host:port for Redis.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}
