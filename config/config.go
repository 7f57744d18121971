package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Firebase FirebaseConfig `toml:"firebase"`
	Identity IdentityConfig `toml:"identity"`
	Store    StoreConfig    `toml:"store"`
	Market   MarketConfig   `toml:"market"`
	App      AppConfig      `toml:"app"`
}

type ServerConfig struct {
	Port            string        `toml:"port"`
	CORSOrigins     []string      `toml:"cors_origins"`
	ShutdownTimeout time.Duration `toml:"-"`
}

type DatabaseConfig struct {
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	MaxConns int    `toml:"max_conns"`
	MinConns int    `toml:"min_conns"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	// SessionBroker fans session events out to other instances over
	// Redis Pub/Sub.
	SessionBroker bool `toml:"session_broker"`
}

type FirebaseConfig struct {
	CredentialsPath string  `toml:"credentials_path"`
	ProjectID       string  `toml:"project_id"`
	APIKey          string  `toml:"api_key"`
	RateLimit       float64 `toml:"rate_limit"` // identity toolkit requests per second
}

// IdentityConfig selects the identity provider. "memory" issues its own
// HS256 session tokens signed with SessionSecret.
type IdentityConfig struct {
	Backend       string        `toml:"backend"`
	SessionSecret string        `toml:"session_secret"`
	SessionTTL    time.Duration `toml:"-"`
}

type StoreConfig struct {
	Backend string `toml:"backend"` // firestore | redis | postgres | memory
}

type MarketConfig struct {
	MockLatency     time.Duration `toml:"-"`
	NewsRefreshCron string        `toml:"news_refresh_cron"`
	GeminiAPIKey    string        `toml:"gemini_api_key"`
	GeminiModel     string        `toml:"gemini_model"`
}

type AppConfig struct {
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	Version     string `toml:"version"`
	ServiceName string `toml:"service_name"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigins:     []string{"http://localhost:5173"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Name:     "techinvestor",
			MaxConns: 10,
			MinConns: 2,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Firebase: FirebaseConfig{
			RateLimit: 5,
		},
		Identity: IdentityConfig{
			Backend:    "memory",
			SessionTTL: time.Hour,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Market: MarketConfig{
			MockLatency:     time.Second,
			NewsRefreshCron: "@every 15m",
			GeminiModel:     "gemini-2.5-flash",
		},
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
			Version:     "1.0.0",
			ServiceName: "techinvestor-api",
		},
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables on top of file/default values.
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.CORSOrigins = getEnvAsList("CORS_ORIGINS", cfg.Server.CORSOrigins)
	cfg.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Database.DSN = getEnv("DB_DSN", cfg.Database.DSN)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.MaxConns = getEnvAsInt("DB_MAX_CONNS", cfg.Database.MaxConns)
	cfg.Database.MinConns = getEnvAsInt("DB_MIN_CONNS", cfg.Database.MinConns)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.SessionBroker = getEnvAsBool("SESSION_BROKER", cfg.Redis.SessionBroker)

	cfg.Firebase.CredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", cfg.Firebase.CredentialsPath)
	cfg.Firebase.ProjectID = getEnv("FIREBASE_PROJECT_ID", cfg.Firebase.ProjectID)
	cfg.Firebase.APIKey = getEnv("FIREBASE_API_KEY", cfg.Firebase.APIKey)
	cfg.Firebase.RateLimit = getEnvAsFloat("IDENTITY_RATE_LIMIT", cfg.Firebase.RateLimit)

	cfg.Identity.Backend = getEnv("IDENTITY_BACKEND", cfg.Identity.Backend)
	cfg.Identity.SessionSecret = getEnv("SESSION_SECRET", cfg.Identity.SessionSecret)
	cfg.Identity.SessionTTL = getEnvAsDuration("SESSION_TTL", cfg.Identity.SessionTTL)

	cfg.Store.Backend = getEnv("STORE_BACKEND", cfg.Store.Backend)

	cfg.Market.MockLatency = getEnvAsDuration("MOCK_LATENCY", cfg.Market.MockLatency)
	cfg.Market.NewsRefreshCron = getEnv("NEWS_REFRESH_CRON", cfg.Market.NewsRefreshCron)
	cfg.Market.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.Market.GeminiAPIKey)
	cfg.Market.GeminiModel = getEnv("GEMINI_MODEL", cfg.Market.GeminiModel)

	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
	cfg.App.ServiceName = getEnv("SERVICE_NAME", cfg.App.ServiceName)
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Identity.Backend {
	case "firebase":
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firebase identity backend")
		}
		if c.Firebase.APIKey == "" {
			return fmt.Errorf("FIREBASE_API_KEY is required for the firebase identity backend")
		}
	case "memory":
		if c.Identity.SessionSecret == "" {
			if c.App.Environment == "production" {
				return fmt.Errorf("SESSION_SECRET is required in production")
			}
			c.Identity.SessionSecret = "dev-session-secret"
		}
	default:
		return fmt.Errorf("unknown IDENTITY_BACKEND %q", c.Identity.Backend)
	}

	switch c.Store.Backend {
	case "firestore":
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firestore store")
		}
	case "postgres":
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required for the postgres store")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Redis.SessionBroker && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the session broker")
	}

	return nil
}

// PostgresDSN returns DB_DSN when set, otherwise a key/value DSN built
// from the individual DB_* settings.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
