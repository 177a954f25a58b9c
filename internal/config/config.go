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

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// defaultClients mirrors the demo registry used outside production.
const defaultClients = "client1:password1:admin,client2:password2:read-only"

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string
	Env            string
	JWTSecret      string
	TokenTTL       time.Duration
	APIBasePath    string
	StorageBackend string
	CORSHosts      []string

	Clients     []ClientSeed
	DB          DatabaseConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	AuthLimit   AuthLimitConfig
}

// AuthLimitConfig throttles repeated failed POST /auth/token attempts per IP.
// A zero MaxFailures disables throttling.
type AuthLimitConfig struct {
	MaxFailures int
	Window      time.Duration
}

// ClientSeed is a registry entry parsed from API_CLIENTS.
type ClientSeed struct {
	ClientID string
	Secret   string
	Roles    []string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// IdempotencyConfig controls how long Idempotency-Key replays are honoured.
type IdempotencyConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "5000")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET_KEY", getEnv("JWT_SECRET", ""))
	cfg.APIBasePath = strings.TrimSuffix(getEnv("API_BASE_PATH", "/api/v1"), "/")
	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory))
	cfg.CORSHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000"))

	var err error
	if cfg.TokenTTL, err = parseDurationEnv("TOKEN_TTL", "3600"); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL == 0 {
		return nil, errors.New("TOKEN_TTL must be greater than zero")
	}

	// Client registry
	rawClients := getEnv("API_CLIENTS", "")
	if rawClients == "" && !cfg.IsProduction() {
		rawClients = defaultClients
	}
	if cfg.Clients, err = ParseClients(rawClients); err != nil {
		return nil, fmt.Errorf("invalid API_CLIENTS: %w", err)
	}
	if len(cfg.Clients) == 0 {
		return nil, errors.New("API_CLIENTS must define at least one client")
	}

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Idempotency
	if cfg.Idempotency.TTL, err = parseDurationEnv("IDEMPOTENCY_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}
	if cfg.Idempotency.SweepInterval, err = parseDurationEnv("IDEMPOTENCY_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_SWEEP_INTERVAL: %w", err)
	}

	// Token endpoint throttling
	cfg.AuthLimit.MaxFailures = getEnvInt("AUTH_MAX_FAILURES", 0)
	if cfg.AuthLimit.Window, err = parseDurationEnv("AUTH_FAILURE_WINDOW", "1m"); err != nil {
		return nil, fmt.Errorf("invalid AUTH_FAILURE_WINDOW: %w", err)
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	// An empty secret is tolerated outside production; main generates an ephemeral one.
	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return nil, errors.New("JWT_SECRET_KEY must be set for authentication")
	}

	return cfg, nil
}

// ParseClients parses a comma separated list of "id:secret:role1|role2" entries.
// Roles are optional; a client without roles can authenticate but holds no privileges.
func ParseClients(raw string) ([]ClientSeed, error) {
	var seeds []ClientSeed
	seen := make(map[string]bool)
	for _, entry := range splitList(raw) {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("entry %q must look like id:secret[:roles]", entry)
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("duplicate client %q", parts[0])
		}
		seen[parts[0]] = true

		seed := ClientSeed{ClientID: parts[0], Secret: parts[1], Roles: []string{}}
		if len(parts) == 3 {
			for _, role := range strings.Split(parts[2], "|") {
				if role = strings.TrimSpace(role); role != "" {
					seed.Roles = append(seed.Roles, role)
				}
			}
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// A bare integer is taken as seconds. If the variable is empty, it falls back
// to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	return parseDuration(getEnv(key, def))
}

func parseDuration(raw string) (time.Duration, error) {
	var d time.Duration
	if secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
		d = time.Duration(secs) * time.Second
	} else if d, err = time.ParseDuration(raw); err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
