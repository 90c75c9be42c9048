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

	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be set"})
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{"DB_PATH", "required for the sqlite driver"})
		}
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST", "host and name are required for the postgres driver"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.SessionTTL <= 0 {
		errs = append(errs, ValidationError{"SESSION_TTL", "must be positive"})
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_PER_HOUR", "must not be negative"})
	}
	if cfg.APIBaseURL == "" {
		errs = append(errs, ValidationError{"API_BASE_URL", "must be set"})
	}

	if env == Production {
		if cfg.SecretKey == "" {
			errs = append(errs, ValidationError{"SECRET_KEY", "secret_key is required in production"})
		}
		if cfg.DBDriver != "postgres" {
			errs = append(errs, ValidationError{"DB_DRIVER", "production requires postgres"})
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "db_password secret is required"})
		}
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
