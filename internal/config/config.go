// Package config lee la configuración del servicio desde variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type StorageBackend string

const (
	StorageMemory    StorageBackend = "memory"
	StoragePostgres  StorageBackend = "postgres"
	StorageMongo     StorageBackend = "mongo"
	StorageFirestore StorageBackend = "firestore"
)

type Config struct {
	Port string

	Storage       StorageBackend
	DBDSN         string
	MongoURL      string
	MongoDatabase string
	GCPProject    string

	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	ChatModel       string
	ChatMaxTokens   int
	ChatTemperature float64
	ChatTimeout     time.Duration
	ChatRatePerSec  float64
	ChatRateBurst   int

	MetricsUser string
	MetricsPass string
}

// Load carga .env si existe y arma la config con defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port: getEnv("PORT", "3000"),

		DBDSN:         os.Getenv("DB_DSN"),
		MongoURL:      os.Getenv("MONGO_URL"),
		MongoDatabase: getEnv("MONGO_DATABASE", "pokepet"),
		GCPProject:    os.Getenv("GCP_PROJECT"),

		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		ChatModel:       getEnv("CHAT_MODEL", "deepseek-chat"),
		ChatMaxTokens:   getEnvInt("CHAT_MAX_TOKENS", 300),
		ChatTemperature: getEnvFloat("CHAT_TEMPERATURE", 0.7),
		ChatTimeout:     getEnvDuration("CHAT_TIMEOUT", 60*time.Second),
		ChatRatePerSec:  getEnvFloat("CHAT_RATE_PER_SEC", 1),
		ChatRateBurst:   getEnvInt("CHAT_RATE_BURST", 5),

		MetricsUser: os.Getenv("METRICS_USER"),
		MetricsPass: os.Getenv("METRICS_PASS"),
	}

	// Sin STORAGE_BACKEND explícito, DB_DSN implica postgres (como antes).
	storage := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	switch {
	case storage == "" && cfg.DBDSN != "":
		cfg.Storage = StoragePostgres
	case storage == "":
		cfg.Storage = StorageMemory
	default:
		cfg.Storage = StorageBackend(storage)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres storage backend")
		}
	case StorageMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("MONGO_URL is required for the mongo storage backend")
		}
	case StorageFirestore:
		if c.GCPProject == "" {
			return fmt.Errorf("GCP_PROJECT is required for the firestore storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage)
	}

	if c.ChatTimeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT must be positive")
	}
	return nil
}

// UseMockChat: sin API key se responde con el completer de prueba.
func (c Config) UseMockChat() bool {
	return strings.TrimSpace(c.DeepSeekAPIKey) == ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}
