package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the server.
type Config struct {
	// HTTP server
	Port         string
	SecureCookie bool

	// Database
	DBPath string

	// Assets
	TemplateDir string
	StaticDir   string
}

// Load reads configuration from the environment, applying defaults for any
// unset variable. A .env file in the working directory is loaded first if
// present; real environment variables win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		SecureCookie: getEnvBool("SECURE_COOKIE", false),
		DBPath:       getEnv("DB_PATH", "finance.db"),
		TemplateDir:  getEnv("TEMPLATE_DIR", "web/templates"),
		StaticDir:    getEnv("STATIC_DIR", "web/static"),
	}
}

// Validate checks the configuration and returns an error describing every
// invalid field.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
