package config

import "os"

// Config is the process configuration, loaded from the environment
type Config struct {
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	HTTPPort    string
	CatalogPath string // empty = embedded default catalog
	LogLevel    string
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "lta"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		CatalogPath: getEnv("CATALOG_PATH", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
