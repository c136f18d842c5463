package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/site-attendance/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

const (
	// DefaultStorageBucket is the object-store bucket frames are staged in.
	DefaultStorageBucket = "ppe-images"

	// DefaultVisionProvider is used when VISION_PROVIDER is unset.
	DefaultVisionProvider = "gemini"
)

type Config struct {
	Database DatabaseConfig
	Vision   VisionConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	Storage  StorageConfig
	Telegram TelegramConfig
	Auth     AuthConfig
	Prices   PricesConfig
}

type DatabaseConfig struct {
	URL          string // postgres://... or sqlite://path/to/file.db
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// Driver returns the database/sql driver name matching the URL scheme.
func (c *DatabaseConfig) Driver() string {
	if strings.HasPrefix(c.URL, "sqlite://") || strings.HasPrefix(c.URL, "file:") {
		return "sqlite3"
	}
	return "postgres"
}

// SQLitePath returns the file path part of a sqlite:// URL.
func (c *DatabaseConfig) SQLitePath() string {
	return strings.TrimPrefix(c.URL, "sqlite://")
}

type VisionConfig struct {
	Provider     string        // gemini or openai
	Timeout      time.Duration // per classification call
	MaxImageSize int           // frames are downscaled to fit this many pixels per side
}

type GeminiConfig struct {
	APIKey string
	Model  string // defaults to gemini-2.5-flash
}

type OpenAIConfig struct {
	Token string
}

type StorageConfig struct {
	URL     string // Supabase project URL; empty keeps frames in memory
	Key     string // service role key
	Bucket  string
	Timeout time.Duration
}

// Enabled reports whether a remote object store is configured.
func (c *StorageConfig) Enabled() bool {
	return c.URL != ""
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Enabled reports whether PPE failure alerts should be sent.
func (c *TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}

type AuthConfig struct {
	JWTSecret string // empty disables admin authentication
}

// Enabled reports whether the admin API requires a bearer token.
func (c *AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration parses a Go duration ("30s", "2m"). Non-positive or invalid values yield the default.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Vision: VisionConfig{
			Provider:     strings.ToLower(envString("VISION_PROVIDER", DefaultVisionProvider)),
			Timeout:      envDuration("VISION_TIMEOUT", constants.DefaultVisionTimeout),
			MaxImageSize: envInt("VISION_MAX_IMAGE_SIZE", constants.DefaultMaxImageSize),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  envString("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Storage: StorageConfig{
			URL:     strings.TrimRight(os.Getenv("STORAGE_URL"), "/"),
			Key:     os.Getenv("STORAGE_KEY"),
			Bucket:  envString("STORAGE_BUCKET", DefaultStorageBucket),
			Timeout: envDuration("STORAGE_TIMEOUT", constants.DefaultStorageTimeout),
		},
		Telegram: TelegramConfig{
			Token:  os.Getenv("TELEGRAM_TOKEN"),
			ChatID: chatID,
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		},
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
