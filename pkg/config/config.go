package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type StoreKind string

const (
	StoreFirestore StoreKind = "firestore"
	StoreMemory    StoreKind = "memory"
)

type Config struct {
	App struct {
		Env       string
		Port      string
		CORSHosts []string
		Store     StoreKind
	}
	Firebase struct {
		ProjectID       string
		CredentialsJSON string
		StorageBucket   string
	}
	TBA struct {
		AuthKey string
		BaseURL string
	}
	Mail struct {
		ResendKey string
		From      string
	}
	ReferenceCacheTTL time.Duration
}

// LoadConfig reads a .env file when one exists and then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables.")
	}

	cfg := &Config{}

	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.CORSHosts = splitList(getEnv("CORS_HOSTS", "http://localhost:3000"))
	cfg.App.Store = StoreKind(strings.ToLower(getEnv("STORE", string(StoreFirestore))))
	switch cfg.App.Store {
	case StoreFirestore, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE %q: expected firestore or memory", cfg.App.Store)
	}

	cfg.Firebase.ProjectID = getEnv("FIREBASE_PROJECT_ID", "")
	cfg.Firebase.CredentialsJSON = getEnv("FIREBASE_CREDENTIALS_JSON", "")
	cfg.Firebase.StorageBucket = getEnv("FIREBASE_STORAGE_BUCKET", "")

	cfg.TBA.AuthKey = getEnv("TBA_AUTH_KEY", "")
	cfg.TBA.BaseURL = getEnv("TBA_BASE_URL", "https://www.thebluealliance.com/api/v3")

	cfg.Mail.ResendKey = getEnv("RESEND_KEY", "")
	cfg.Mail.From = getEnv("EXPORT_MAIL_FROM", "Scouting <noreply@scouting.local>")

	ttl, err := getEnvAsDuration("REFERENCE_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.ReferenceCacheTTL = ttl

	if cfg.App.Store == StoreFirestore && cfg.Firebase.ProjectID == "" {
		log.Println("WARNING: FIREBASE_PROJECT_ID is empty, the default credentials project will be used.")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected duration, got '%s'", key, valueStr)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
