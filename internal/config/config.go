package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderStub   = "stub"
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderMemory = "memory"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Archive   ArchiveConfig
	Cache     CacheConfig
	DocIntel  DocIntelConfig
	Search    SearchConfig
	LLM       LLMConfig
	Translate TranslateConfig
	Speech    SpeechConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxUploadBytes int
	AllowedOrigins []string
}

type ArchiveConfig struct {
	Driver   string
	Database DatabaseConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type CacheConfig struct {
	Driver    string
	RedisAddr string
	SearchTTL time.Duration
}

type DocIntelConfig struct {
	Provider string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

type SearchConfig struct {
	Provider     string
	Endpoint     string
	APIKey       string
	APIVersion   string
	DefaultIndex string
	TopK         int
	Timeout      time.Duration
}

type LLMConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Deployment         string
	Model              string
	APIVersion         string
	Timeout            time.Duration
	MaxOutputTokens    int
	RateLimitPerMinute int
	RateLimitBurst     int
}

type TranslateConfig struct {
	Provider string
	Endpoint string
	APIKey   string
	Region   string
	Timeout  time.Duration
}

type SpeechConfig struct {
	Provider string
	APIKey   string
	Region   string
	Timeout  time.Duration
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 90*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	maxUploadBytes, err := parseIntEnv("SERVER_MAX_UPLOAD_BYTES", 10*1024*1024)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:           getEnv("SERVER_HOST", "0.0.0.0"),
		Port:           serverPort,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxUploadBytes: maxUploadBytes,
		AllowedOrigins: splitEnv("SERVER_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Archive = ArchiveConfig{
		Driver: strings.ToLower(getEnv("ARCHIVE_DRIVER", DriverMemory)),
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            getEnv("DB_USER", "scholarshield"),
			Password:        getEnv("DB_PASSWORD", "scholarshield"),
			Name:            getEnv("DB_NAME", "scholarshield"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxIdleTime: connMaxIdleTime,
			ConnMaxLifetime: connMaxLifetime,
		},
	}

	searchCacheTTL, err := parseDurationEnv("SEARCH_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Cache = CacheConfig{
		Driver:    strings.ToLower(getEnv("CACHE_DRIVER", DriverMemory)),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		SearchTTL: searchCacheTTL,
	}

	docIntelTimeout, err := parseDurationEnv("DOCINTEL_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.DocIntel = DocIntelConfig{
		Provider: strings.ToLower(getEnv("DOCINTEL_PROVIDER", ProviderStub)),
		Endpoint: getEnv("DOCINTEL_ENDPOINT", ""),
		APIKey:   getEnv("DOCINTEL_API_KEY", ""),
		Timeout:  docIntelTimeout,
	}

	searchTopK, err := parseIntEnv("SEARCH_TOP_K", 3)
	if err != nil {
		return cfg, err
	}

	searchTimeout, err := parseDurationEnv("SEARCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Search = SearchConfig{
		Provider:     strings.ToLower(getEnv("SEARCH_PROVIDER", ProviderMemory)),
		Endpoint:     getEnv("SEARCH_ENDPOINT", ""),
		APIKey:       getEnv("SEARCH_API_KEY", ""),
		APIVersion:   getEnv("SEARCH_API_VERSION", "2023-11-01"),
		DefaultIndex: getEnv("SEARCH_DEFAULT_INDEX", "university-policies"),
		TopK:         searchTopK,
		Timeout:      searchTimeout,
	}

	llmTimeout, err := parseDurationEnv("LLM_TIMEOUT", 45*time.Second)
	if err != nil {
		return cfg, err
	}

	llmMaxOutputTokens, err := parseIntEnv("LLM_MAX_OUTPUT_TOKENS", 1500)
	if err != nil {
		return cfg, err
	}

	llmRateLimitPerMinute, err := parseIntEnv("LLM_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	llmRateLimitBurst, err := parseIntEnv("LLM_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	llmProvider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderStub))
	defaultBaseURL := ""
	defaultModel := "gpt-4o"
	if llmProvider == ProviderOpenAI {
		defaultBaseURL = "https://api.openai.com/v1"
		defaultModel = "gpt-4o-mini"
	}

	cfg.LLM = LLMConfig{
		Provider:           llmProvider,
		APIKey:             getEnv("LLM_API_KEY", ""),
		BaseURL:            getEnv("LLM_BASE_URL", defaultBaseURL),
		Deployment:         getEnv("LLM_DEPLOYMENT", "gpt-4o"),
		Model:              getEnv("LLM_MODEL", defaultModel),
		APIVersion:         getEnv("LLM_API_VERSION", "2024-02-15-preview"),
		Timeout:            llmTimeout,
		MaxOutputTokens:    llmMaxOutputTokens,
		RateLimitPerMinute: llmRateLimitPerMinute,
		RateLimitBurst:     llmRateLimitBurst,
	}

	translateTimeout, err := parseDurationEnv("TRANSLATOR_TIMEOUT", 15*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Translate = TranslateConfig{
		Provider: strings.ToLower(getEnv("TRANSLATOR_PROVIDER", ProviderStub)),
		Endpoint: getEnv("TRANSLATOR_ENDPOINT", "https://api.cognitive.microsofttranslator.com"),
		APIKey:   getEnv("TRANSLATOR_API_KEY", ""),
		Region:   getEnv("TRANSLATOR_REGION", "eastus"),
		Timeout:  translateTimeout,
	}

	speechTimeout, err := parseDurationEnv("SPEECH_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Speech = SpeechConfig{
		Provider: strings.ToLower(getEnv("SPEECH_PROVIDER", ProviderStub)),
		APIKey:   getEnv("SPEECH_API_KEY", ""),
		Region:   getEnv("SPEECH_REGION", "eastus"),
		Timeout:  speechTimeout,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	switch c.Archive.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Archive.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Archive.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Archive.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Archive.Database.MaxIdleConns > c.Archive.Database.MaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
		}
	default:
		return fmt.Errorf("ARCHIVE_DRIVER must be memory or postgres")
	}

	switch c.Cache.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}
	default:
		return fmt.Errorf("CACHE_DRIVER must be memory or redis")
	}

	switch c.DocIntel.Provider {
	case ProviderStub:
	case ProviderAzure:
		if c.DocIntel.Endpoint == "" {
			return fmt.Errorf("DOCINTEL_ENDPOINT is required")
		}
		if c.DocIntel.APIKey == "" {
			return fmt.Errorf("DOCINTEL_API_KEY is required")
		}
	default:
		return fmt.Errorf("DOCINTEL_PROVIDER must be stub or azure")
	}

	switch c.Search.Provider {
	case ProviderMemory:
	case ProviderAzure:
		if c.Search.Endpoint == "" {
			return fmt.Errorf("SEARCH_ENDPOINT is required")
		}
		if c.Search.APIKey == "" {
			return fmt.Errorf("SEARCH_API_KEY is required")
		}
	default:
		return fmt.Errorf("SEARCH_PROVIDER must be memory or azure")
	}

	if c.Search.DefaultIndex == "" {
		return fmt.Errorf("SEARCH_DEFAULT_INDEX is required")
	}

	switch c.LLM.Provider {
	case ProviderStub:
	case ProviderAzure:
		if c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required")
		}
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required")
		}
		if c.LLM.Deployment == "" {
			return fmt.Errorf("LLM_DEPLOYMENT is required")
		}
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required")
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("LLM_MODEL is required")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be stub, azure or openai")
	}

	if c.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	if c.LLM.RateLimitPerMinute <= 0 {
		return fmt.Errorf("LLM_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.LLM.RateLimitBurst <= 0 {
		return fmt.Errorf("LLM_RATE_LIMIT_BURST must be greater than 0")
	}

	switch c.Translate.Provider {
	case ProviderStub:
	case ProviderAzure:
		if c.Translate.APIKey == "" {
			return fmt.Errorf("TRANSLATOR_API_KEY is required")
		}
	default:
		return fmt.Errorf("TRANSLATOR_PROVIDER must be stub or azure")
	}

	switch c.Speech.Provider {
	case ProviderStub:
	case ProviderAzure:
		if c.Speech.APIKey == "" {
			return fmt.Errorf("SPEECH_API_KEY is required")
		}
	default:
		return fmt.Errorf("SPEECH_PROVIDER must be stub or azure")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func splitEnv(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
