// Package config reads the settings of both services once at startup.
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

const (
	ServiceGateway  = "gateway"
	ServiceAccounts = "accounts"

	BackendElastic = "elastic"
	BackendMongo   = "mongo"
	BackendMemory  = "memory"
)

type Config struct {
	Port string

	YelpAPIKey      string
	YelpAPIHost     string
	UpstreamTimeout time.Duration

	StoreBackend string
	ElasticURL   string
	MongoURI     string
	Database     string

	SecretKey  string
	SessionTTL time.Duration

	AllowedOrigins []string
}

// Load reads envFile (".env" when empty) if it exists and then the
// process environment.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:         getenv("PORT", "5000"),
		YelpAPIKey:   os.Getenv("YELP_API_KEY"),
		YelpAPIHost:  getenv("YELP_API_HOST", "https://api.yelp.com"),
		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", BackendElastic)),
		ElasticURL:   getenv("ELASTIC_URL", "http://localhost:9200"),
		MongoURI:     os.Getenv("MONGO_DB_CLUSTER"),
		Database:     getenv("DATABASE_NAME", "restaurant_db"),
		SecretKey:    os.Getenv("SECRET_KEY"),
	}

	var err error
	if cfg.UpstreamTimeout, err = duration("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	for _, o := range strings.Split(getenv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

// Validate reports the settings service needs that are missing.
func (c *Config) Validate(service string) error {
	var missing []string
	switch service {
	case ServiceGateway:
		if c.YelpAPIKey == "" {
			missing = append(missing, "YELP_API_KEY")
		}
	case ServiceAccounts:
		if c.SecretKey == "" {
			missing = append(missing, "SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown service %q", service)
	}

	switch c.StoreBackend {
	case BackendElastic:
		if c.ElasticURL == "" {
			missing = append(missing, "ELASTIC_URL")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGO_DB_CLUSTER")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// duration accepts Go durations ("15s") or a bare number of seconds.
func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
