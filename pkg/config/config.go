package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OAuth    OAuthConfig
	JWT      JWTConfig
	Storage  StorageConfig
	AI       AIConfig
	Capture  CaptureConfig
	Search   SearchConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// OAuthConfig holds OAuth configuration
type OAuthConfig struct {
	Google GoogleOAuthConfig
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret    string
	RefreshSecret   string
	AccessExpiry    time.Duration
	RefreshExpiry   time.Duration
	DevAccessExpiry time.Duration
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string // "minio" or "s3"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
	PresignExpiry   time.Duration
}

// AIConfig holds model provider settings
type AIConfig struct {
	Enabled               bool   `envconfig:"AI_ENABLED" default:"true"`
	Provider              string `envconfig:"AI_PROVIDER" default:"gemini"`
	TranscriptionProvider string `envconfig:"TRANSCRIPTION_PROVIDER" default:"gemini"`
	SummaryWorkers        int    `envconfig:"SUMMARY_WORKERS" default:"2"`

	Gemini     GeminiConfig
	Groq       GroqConfig
	AssemblyAI AssemblyAIConfig
}

// GeminiConfig holds Gemini settings
type GeminiConfig struct {
	APIKey  string        `envconfig:"GEMINI_API_KEY"`
	Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	BaseURL string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `envconfig:"GEMINI_TIMEOUT" default:"60s"`
}

// GroqConfig holds Groq settings
type GroqConfig struct {
	APIKey  string        `envconfig:"GROQ_API_KEY"`
	Model   string        `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	BaseURL string        `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Timeout time.Duration `envconfig:"GROQ_TIMEOUT" default:"60s"`
}

// AssemblyAIConfig holds AssemblyAI settings
type AssemblyAIConfig struct {
	APIKey       string `envconfig:"ASSEMBLYAI_API_KEY"`
	LanguageCode string `envconfig:"ASSEMBLYAI_LANGUAGE" default:"en"`
}

// CaptureConfig holds recording pipeline settings
type CaptureConfig struct {
	ChunkInterval time.Duration `envconfig:"CAPTURE_CHUNK_INTERVAL" default:"6s"`
	MinChunkBytes int           `envconfig:"CAPTURE_MIN_CHUNK_BYTES" default:"8000"`
	SampleRate    int           `envconfig:"CAPTURE_SAMPLE_RATE" default:"16000"`
	ArchiveChunks bool          `envconfig:"CAPTURE_ARCHIVE_CHUNKS" default:"false"`
	StopTimeout   time.Duration `envconfig:"CAPTURE_STOP_TIMEOUT" default:"60s"`
}

// SearchConfig holds memories index settings
type SearchConfig struct {
	IndexPath string `envconfig:"SEARCH_INDEX_PATH"`
	MaxHits   int    `envconfig:"SEARCH_MAX_HITS" default:"20"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meeting_copilot"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", "redis_password"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OAuth: OAuthConfig{
			Google: GoogleOAuthConfig{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/v1/auth/google/callback"),
			},
		},
		JWT: JWTConfig{
			AccessSecret:    getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			RefreshSecret:   getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-change-in-production"),
			AccessExpiry:    getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
			RefreshExpiry:   getEnvAsDuration("JWT_REFRESH_EXPIRY", "168h"),
			DevAccessExpiry: getEnvAsDuration("JWT_DEV_ACCESS_EXPIRY", "720h"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-copilot"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", "http://localhost:9000"),
			PresignExpiry:   getEnvAsDuration("STORAGE_PRESIGN_EXPIRY", "1h"),
		},
	}

	if err := envconfig.Process("", &config.AI); err != nil {
		return nil, fmt.Errorf("failed to load AI config: %w", err)
	}
	if err := envconfig.Process("", &config.Capture); err != nil {
		return nil, fmt.Errorf("failed to load capture config: %w", err)
	}
	if err := envconfig.Process("", &config.Search); err != nil {
		return nil, fmt.Errorf("failed to load search config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OAuth.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.OAuth.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	switch c.AI.TranscriptionProvider {
	case "gemini", "assemblyai":
	default:
		return fmt.Errorf("unsupported TRANSCRIPTION_PROVIDER %q", c.AI.TranscriptionProvider)
	}
	switch c.AI.Provider {
	case "gemini", "groq":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AI.Provider)
	}
	if c.Capture.ChunkInterval <= 0 {
		return fmt.Errorf("CAPTURE_CHUNK_INTERVAL must be positive")
	}
	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("CAPTURE_SAMPLE_RATE must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
