package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Token configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Media storage configuration
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string

	// Limits
	RecipeCreateLimit int
	PageSize          int

	// RequestRate is the API-wide request rate in requests per second.
	// Zero disables throttling.
	RequestRate  float64
	RequestBurst int

	LogLevel string
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath + "?_foreign_keys=1"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// secretFiles maps Docker secret file names to the viper keys they override.
var secretFiles = map[string]string{
	"db_user":        "db_user",
	"db_password":    "db_password",
	"jwt_secret":     "jwt_secret",
	"redis_password": "redis_password",
	"redis_url":      "redis_url",
}

// LoadConfig builds a Config from defaults, a .env file, environment variables and secrets.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		// A missing .env file is fine, the process environment still applies.
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	switch env {
	case CI:
		// CI passes every value, secrets included, as plain environment variables.
	case Development, Test, Production:
		if err := loadSecrets(v, env == Production); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg := &Config{
		ServerPort:        v.GetString("server_port"),
		ServerHost:        v.GetString("server_host"),
		CORSOrigins:       splitList(v.GetString("cors_origins")),
		DBDriver:          v.GetString("db_driver"),
		DBHost:            v.GetString("db_host"),
		DBPort:            v.GetString("db_port"),
		DBUser:            v.GetString("db_user"),
		DBPassword:        v.GetString("db_password"),
		DBName:            v.GetString("db_name"),
		DBSSLMode:         v.GetString("db_ssl_mode"),
		DBPath:            v.GetString("db_path"),
		RedisHost:         v.GetString("redis_host"),
		RedisPort:         v.GetString("redis_port"),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		RedisURL:          v.GetString("redis_url"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		StorageBackend:    v.GetString("storage_backend"),
		MediaRoot:         v.GetString("media_root"),
		MediaURL:          v.GetString("media_url"),
		S3Bucket:          v.GetString("s3_bucket_name"),
		S3Region:          v.GetString("aws_region"),
		S3Endpoint:        v.GetString("s3_endpoint"),
		RecipeCreateLimit: v.GetInt("recipe_create_limit"),
		PageSize:          v.GetInt("page_size"),
		RequestRate:       v.GetFloat64("request_rate"),
		RequestBurst:      v.GetInt("request_burst"),
		LogLevel:          v.GetString("log_level"),
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "foodgram")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_path", "foodgram.db")
	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("storage_backend", "local")
	v.SetDefault("media_root", "media")
	v.SetDefault("media_url", "/media/")
	v.SetDefault("s3_bucket_name", "foodgram-media")
	v.SetDefault("aws_region", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("recipe_create_limit", 30)
	v.SetDefault("page_size", 6)
	v.SetDefault("request_rate", 0)
	v.SetDefault("request_burst", 50)
	v.SetDefault("log_level", "info")
}

// loadSecrets overrides sensitive values with Docker secrets. Outside production a
// missing secrets directory is tolerated.
func loadSecrets(v *viper.Viper, required bool) error {
	dir := secretsDir()
	if _, err := os.Stat(dir); err != nil {
		if required {
			return fmt.Errorf("secrets directory %s: %w", dir, err)
		}
		return nil
	}

	for name, key := range secretFiles {
		if value := readSecret(name); value != "" {
			v.Set(key, value)
		}
	}
	return nil
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	data, err := os.ReadFile(filepath.Join(secretsDir(), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
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
