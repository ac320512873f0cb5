// Package config handles application settings from environment variables
// and the positional column schema for the legacy dump.
package config

import (
	"errors"
	"os"
)

// Config holds all configuration for the application, typically loaded
// from environment variables populated by the .env file in main.go.
type Config struct {
	MongoConnString   string
	MongoDatabase     string
	CatalogConnString string
	PhotoBaseURL      string
	PhotoExt          string
	APIAddr           string
	LogLevel          string
	LogFile           string
}

// LoadConfig loads application settings from environment variables.
// Connection strings are validated lazily by the commands that need them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		MongoConnString:   os.Getenv("MONGO_CONNECTION_STRING"),
		MongoDatabase:     getenvDefault("MONGO_DATABASE", "ipe_catalog"),
		CatalogConnString: os.Getenv("CATALOG_SQL_CONNECTION_STRING"),
		PhotoBaseURL:      getenvDefault("PHOTO_BASE_URL", "https://cdn.imobiliariaipe.com.br/wpl"),
		PhotoExt:          getenvDefault("PHOTO_EXT", "jpg"),
		APIAddr:           getenvDefault("API_ADDR", ":8080"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
	}
	return cfg, nil
}

// RequireMongo returns an error unless the Mongo connection string is set.
func (c *Config) RequireMongo() error {
	if c.MongoConnString == "" {
		return errors.New("MONGO_CONNECTION_STRING environment variable not set")
	}
	return nil
}

// RequireCatalog returns an error unless the SQL catalog connection string is set.
func (c *Config) RequireCatalog() error {
	if c.CatalogConnString == "" {
		return errors.New("CATALOG_SQL_CONNECTION_STRING environment variable not set")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
