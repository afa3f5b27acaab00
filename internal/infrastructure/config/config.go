package config

import (
	"os"
	"time"
)

type Config struct {
	Server  ServerConfig
	OTLP    OTLPConfig
	Cart    CartConfig
	Backend BackendConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type OTLPConfig struct {
	Endpoint    string
	ServiceName string
	Environment string
	Enabled     bool
}

type CartConfig struct {
	// StorageFile is where the cart is persisted between runs. Empty
	// selects the in-memory store and the cart lives only for the
	// process lifetime.
	StorageFile string
}

type BackendConfig struct {
	// BaseURL of the marketplace backend the cart merges into. Empty
	// disables backend sync.
	BaseURL string
	Token   string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		OTLP: OTLPConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "cart-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
			Enabled:     getEnv("OTEL_EXPORT_ENABLED", "true") == "true",
		},
		Cart: CartConfig{
			StorageFile: getEnv("CART_STORAGE_FILE", ""),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", ""),
			Token:   getEnv("BACKEND_API_TOKEN", ""),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
