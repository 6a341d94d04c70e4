package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Private Automation Hub (Galaxy)
	HubURL       string
	HubAPIPrefix string
	HubToken     string
	HubUsername  string
	HubPassword  string
	HubVerifySSL bool
	HubCABundle  string
	HubEnabled   bool

	// Controller
	ControllerURL          string
	ControllerToken        string
	ControllerClientID     string
	ControllerClientSecret string
	ControllerVerifySSL    bool
	ControllerCABundle     string

	// HTTP
	RequestTimeout time.Duration
	BreakerEnabled bool

	// Database
	DatabaseURL string
	SQLitePath  string

	// RabbitMQ (optional; in-process bus when empty)
	RabbitMQURL string

	// Installer
	GalaxyBinary     string
	CollectionsPath  string
	PublicGalaxyURL  string
	DownloadDir      string
	InstallBatchSize int

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HubURL:       getEnv("AAP_HUB_URL", ""),
		HubAPIPrefix: getEnv("AAP_HUB_API_PREFIX", "/api/galaxy/v3"),
		HubToken:     getEnv("AAP_HUB_TOKEN", ""),
		HubUsername:  getEnv("AAP_HUB_USERNAME", ""),
		HubPassword:  getEnv("AAP_HUB_PASSWORD", ""),
		HubVerifySSL: getBoolEnv("AAP_HUB_VERIFY_SSL", true),
		HubCABundle:  getEnv("AAP_HUB_CA_BUNDLE", ""),
		HubEnabled:   getBoolEnv("AAP_HUB_ENABLED", true),

		ControllerURL:          getEnv("AAP_CONTROLLER_URL", ""),
		ControllerToken:        getEnv("AAP_CONTROLLER_TOKEN", ""),
		ControllerClientID:     getEnv("AAP_CONTROLLER_CLIENT_ID", ""),
		ControllerClientSecret: getEnv("AAP_CONTROLLER_CLIENT_SECRET", ""),
		ControllerVerifySSL:    getBoolEnv("AAP_CONTROLLER_VERIFY_SSL", true),
		ControllerCABundle:     getEnv("AAP_CONTROLLER_CA_BUNDLE", ""),

		RequestTimeout: getDurationEnv("AAP_REQUEST_TIMEOUT", 30*time.Second),
		BreakerEnabled: getBoolEnv("AAP_BREAKER_ENABLED", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("AAPBRIDGE_SQLITE_PATH", ""),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		GalaxyBinary:     getEnv("ANSIBLE_GALAXY_BIN", "ansible-galaxy"),
		CollectionsPath:  getEnv("ANSIBLE_COLLECTIONS_PATH", ""),
		PublicGalaxyURL:  getEnv("PUBLIC_GALAXY_URL", "https://galaxy.ansible.com"),
		DownloadDir:      getEnv("AAPBRIDGE_DOWNLOAD_DIR", ""),
		InstallBatchSize: getIntEnv("AAPBRIDGE_INSTALL_BATCH_SIZE", 0),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
