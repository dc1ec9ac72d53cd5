package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "must be set")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			add("DB_HOST", "postgres driver needs DB_HOST and DB_NAME")
		}
	case "sqlite":
		if env == Production {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
		if cfg.DBPath == "" {
			add("DB_PATH", "sqlite driver needs DB_PATH")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaRoot == "" {
			add("MEDIA_ROOT", "local storage needs MEDIA_ROOT")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			add("S3_BUCKET_NAME", "s3 storage needs a bucket")
		}
	default:
		add("STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend))
	}

	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be positive")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.RequestRate < 0 {
		add("REQUEST_RATE", "must not be negative")
	}
	if cfg.RequestRate > 0 && cfg.RequestBurst < 1 {
		add("REQUEST_BURST", "must be positive when throttling is enabled")
	}

	// Sensitive values are mandatory wherever real users connect.
	if env == Production || env == CI {
		if cfg.JWTSecret == "" {
			add("JWT_SECRET", "is required")
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required")
		}
	} else if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-insecure-secret"
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
