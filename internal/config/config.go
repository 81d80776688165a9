package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-only-secret-change-me"

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseDriver string
	DatabaseURL    string
	DatabaseDebug  bool
	AutoMigrate    bool

	JWTSecret  string
	JWTTTL     time.Duration
	JWTJWKSURL string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	StorageDriver    string
	UploadDir        string
	MaxUploadBytes   int64
	PublicBaseURL    string
	CloudinaryName   string
	CloudinaryKey    string
	CloudinarySecret string
	GCSBucket        string
	GCSCredentials   string
	SupabaseURL      string
	SupabaseAnonKey  string
	SupabaseBucket   string

	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnvWithDefault("PORT", "8080"),
		Environment:      getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		DatabaseDriver:   strings.ToLower(getEnvWithDefault("DATABASE_DRIVER", "postgres")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseDebug:    os.Getenv("DB_DEBUG") == "1",
		AutoMigrate:      getBool("DB_AUTOMIGRATE", true),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           getDuration("JWT_TTL", 7*24*time.Hour),
		JWTJWKSURL:       os.Getenv("JWT_JWKS_URL"),
		CORSOrigins:      splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:     getFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 5),
		StorageDriver:    strings.ToLower(getEnvWithDefault("STORAGE_DRIVER", "local")),
		UploadDir:        getEnvWithDefault("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:   int64(getInt("MAX_UPLOAD_MB", 5)) * 1024 * 1024,
		PublicBaseURL:    strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CloudinaryName:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSCredentials:   os.Getenv("GCS_CREDENTIALS_FILE"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:  os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseBucket:   getEnvWithDefault("SUPABASE_BUCKET", "uploads"),
		MongoDBURI:       os.Getenv("MONGODB_URI"),
		MongoDBPassword:  os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase:  getEnvWithDefault("MONGODB_DATABASE", "servicios"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getInt("REDIS_DB", 0),
		CacheTTL:         getDuration("CACHE_TTL", time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = "servicios.db"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (expected postgres or sqlite)", c.DatabaseDriver)
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}

	switch c.StorageDriver {
	case "local":
	case "cloudinary":
		if c.CloudinaryName == "" || c.CloudinaryKey == "" || c.CloudinarySecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required")
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_URL_ANON_KEY are required")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MongoDBURI != "" && strings.Contains(c.MongoDBURI, "<password>") && c.MongoDBPassword == "" {
		return fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI has a <password> placeholder")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
