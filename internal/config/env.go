package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv applies the project's .env file and the process environment. Variables
// already set in the environment win over the .env file.
func (c *Config) LoadEnv() {
	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(c.ProjectPath, ".env"))

	setString(&c.TestPath, "JET_TEST_PATH")
	setString(&c.History.Driver, "JET_HISTORY_DRIVER")
	setString(&c.History.DSN, "JET_HISTORY_DSN")
	if v, err := strconv.Atoi(os.Getenv("JET_WORKERS")); err == nil && v > 0 {
		c.Workers = v
	}

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.Username, "DB_USERNAME")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_DATABASE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
