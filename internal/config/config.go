// Package config resolves runtime settings from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL   = "http://localhost:5000/api"
	defaultStateDir = ".khata"
)

// Config holds the resolved runtime settings.
type Config struct {
	// APIURL is the base URL of the Khata API, including the /api prefix.
	APIURL string
	// StateDir is where the token, theme, and debug log live.
	StateDir string
	// Token, when set, overrides the persisted token file.
	Token string
}

// Load reads settings from a .env file (if present) and the process
// environment. Environment variables win over .env values.
func Load() Config {
	_ = godotenv.Load() // .env is optional

	return Config{
		APIURL:   fallback(os.Getenv("KHATA_API_URL"), defaultAPIURL),
		StateDir: fallback(os.Getenv("KHATA_STATE_DIR"), defaultStateDir),
		Token:    os.Getenv("KHATA_TOKEN"),
	}
}

// ResolveStateDir expands the state dir against the user's home
// directory when it is not an absolute path.
func (c Config) ResolveStateDir() string {
	if filepath.IsAbs(c.StateDir) {
		return c.StateDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return c.StateDir
	}
	return filepath.Join(home, c.StateDir)
}

// LogPath is the location of the debug log inside the state dir.
func (c Config) LogPath() string {
	return filepath.Join(c.ResolveStateDir(), "debug.log")
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
