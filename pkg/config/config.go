package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Server    ServerConfig
	View      ViewConfig
	Warmer    WarmerConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds mutation journal database configuration.
// An empty URL disables the journal.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// BackendConfig holds the REST backend configuration
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
	TTL     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// ViewConfig holds defaults for the rendered post list
type ViewConfig struct {
	PageSize      int
	NewPostUserID int64
}

// WarmerConfig holds cache warmer configuration. A zero Interval warms
// once and exits.
type WarmerConfig struct {
	Pages    int
	Interval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string
	Format       string // "json" or "text"
	ScalyrFormat bool   // Enable Scalyr-compatible JSON format
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from a .env file, environment variables and config file
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix("PM")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.postsmanager")
	viper.AddConfigPath("/etc/postsmanager")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:     getString("database_url", ""),
			Enabled: getString("database_url", "") != "",
		},
		Backend: BackendConfig{
			URL:     getString("backend_url", "https://dummyjson.com"),
			Timeout: GetDuration("backend_timeout", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
			TTL:     GetDuration("redis_ttl", 10*time.Minute),
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		View: ViewConfig{
			PageSize:      getInt("page_size", 10),
			NewPostUserID: int64(getInt("new_post_user_id", 1)),
		},
		Warmer: WarmerConfig{
			Pages:    getInt("warm_pages", 3),
			Interval: GetDuration("warm_interval", 0),
		},
		Logging: LoggingConfig{
			Level:        getString("log_level", "INFO"),
			Format:       getString("log_format", "json"),
			ScalyrFormat: getBool("log_scalyr_format", true),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", true),
			JaegerURL:         getString("jaeger_url", "http://localhost:14268/api/traces"),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "postsmanager"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("backend_url", "https://dummyjson.com")
	viper.SetDefault("backend_timeout", 10*time.Second)
	viper.SetDefault("redis_ttl", 10*time.Minute)
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("page_size", 10)
	viper.SetDefault("new_post_user_id", 1)
	viper.SetDefault("warm_pages", 3)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("log_scalyr_format", true)
	viper.SetDefault("telemetry_enabled", true)
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "postsmanager")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("PM_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("PM_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("PM_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

// toEnvKey converts snake_case or kebab-case keys to UPPER_SNAKE_CASE
func toEnvKey(key string) string {
	result := make([]rune, 0, len(key))
	for _, r := range key {
		switch {
		case r == '-' || r == '_':
			result = append(result, '_')
		case r >= 'a' && r <= 'z':
			result = append(result, r-'a'+'A')
		default:
			result = append(result, r)
		}
	}
	return string(result)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend_timeout must be positive")
	}
	if c.View.PageSize <= 0 || c.View.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("http_server_port must be between 1 and 65535")
	}
	if c.Warmer.Pages < 0 || c.Warmer.Pages > 50 {
		return fmt.Errorf("warm_pages must be between 0 and 50")
	}
	if c.Warmer.Interval < 0 {
		return fmt.Errorf("warm_interval must not be negative")
	}
	return nil
}

// GetDuration returns a duration from config key, with default
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if val := os.Getenv("PM_" + toEnvKey(key)); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}
