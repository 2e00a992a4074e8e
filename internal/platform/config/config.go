package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	ConfigDir       string
	URNAliasFile    string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:            getenv("WEBFINGER_ADDR", ":8080"),
		ConfigDir:       getenv("WEBFINGER_CONFIG_DIR", "config"),
		URNAliasFile:    getenv("WEBFINGER_URNS_FILE", "urns.yml"),
		LogLevel:        getenv("WEBFINGER_LOG_LEVEL", "info"),
		LogFormat:       getenv("WEBFINGER_LOG_FORMAT", "text"),
		ShutdownTimeout: getdur("WEBFINGER_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
