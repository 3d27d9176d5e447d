package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// MemoryDBPath is the sentinel for a transient in-memory database.
const MemoryDBPath = ":memory:"

type AppConfig struct {
	ConfigDir    string
	DatabasePath string
	LogLevel     string
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err == nil {
		log.Println(".env file loaded successfully.")
	}

	configDir := getEnv("TRADEDATA_CONFIG_DIR", defaultConfigDir())

	Cfg = &AppConfig{
		ConfigDir:    configDir,
		DatabasePath: getEnv("TRADEDATA_DB_PATH", filepath.Join(configDir, "trading.db")),
		LogLevel:     getEnv("TRADEDATA_LOG_LEVEL", "info"),
	}
}

// DatabasePath resolves the database location. Priority: explicit path, then
// the TRADEDATA_DB_PATH environment variable, then the per-user default.
// Supports MemoryDBPath for a transient instance.
func DatabasePath(override string) string {
	if override != "" {
		return override
	}
	if envPath := os.Getenv("TRADEDATA_DB_PATH"); envPath != "" {
		return envPath
	}
	return filepath.Join(defaultConfigDir(), "trading.db")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Last resort: relative to the working directory.
		return ".tradedata"
	}
	return filepath.Join(home, ".tradedata")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
