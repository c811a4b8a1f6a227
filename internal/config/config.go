// Package config loads the client's settings from the environment.
// Every problem is collected and reported in a single error.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/codeleap/shared/codeleap"
	"github.com/dfryer1193/codeleap/shared/db/sqlite"
	"github.com/rs/zerolog"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultSQLitePath  = "./codeleap.db"
	defaultPort        = 8080
	defaultMockAPIPort = 8081
	defaultLogFile     = "codeleap.log"
)

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration
	SQLitePath  string
	Port        int
	MockAPIPort int
	LogLevel    zerolog.Level
	LogFile     string
}

// LoadConfig reads CODELEAP_API_URL, CODELEAP_HTTP_TIMEOUT, SQLITE_DB_PATH, PORT,
// MOCKAPI_PORT, LOG_LEVEL and LOG_FILE.
func LoadConfig() (*Config, error) {
	var problems []string

	cfg := &Config{
		APIURL:      getOptionalEnv("CODELEAP_API_URL", codeleap.DefaultBaseURL),
		HTTPTimeout: getOptionalEnvDuration("CODELEAP_HTTP_TIMEOUT", defaultHTTPTimeout, &problems),
		SQLitePath:  getOptionalEnv("SQLITE_DB_PATH", defaultSQLitePath),
		Port:        getOptionalEnvPort("PORT", defaultPort, &problems),
		MockAPIPort: getOptionalEnvPort("MOCKAPI_PORT", defaultMockAPIPort, &problems),
		LogLevel:    getOptionalEnvLevel("LOG_LEVEL", zerolog.InfoLevel, &problems),
		LogFile:     getOptionalEnv("LOG_FILE", defaultLogFile),
	}

	if err := validateAPIURL(cfg.APIURL); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.HTTPTimeout < 0 {
		problems = append(problems, fmt.Sprintf("CODELEAP_HTTP_TIMEOUT must not be negative, got %s", cfg.HTTPTimeout))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(problems, "\n- "))
	}
	return cfg, nil
}

// ClientConfig returns the settings of the remote API client.
func (c *Config) ClientConfig() codeleap.ClientConfig {
	return codeleap.ClientConfig{
		BaseURL: c.APIURL,
		Timeout: c.HTTPTimeout,
	}
}

func (c *Config) SQLiteConfig() *sqlite.SQLiteConfig {
	return &sqlite.SQLiteConfig{Path: c.SQLitePath}
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid CODELEAP_API_URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CODELEAP_API_URL must be an absolute http(s) URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("CODELEAP_API_URL has no host: %q", raw)
	}
	return nil
}

func getOptionalEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, problems *[]string) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}

	// a bare number is read as seconds
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid value for %s: expected duration, got %q", key, raw))
		return defaultValue
	}
	return d
}

func getOptionalEnvPort(key string, defaultValue int, problems *[]string) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		*problems = append(*problems, fmt.Sprintf("invalid value for %s: expected port number, got %q", key, raw))
		return defaultValue
	}
	return port
}

func getOptionalEnvLevel(key string, defaultValue zerolog.Level, problems *[]string) zerolog.Level {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}

	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid value for %s: %q", key, raw))
		return defaultValue
	}
	return level
}
