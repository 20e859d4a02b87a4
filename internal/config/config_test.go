package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KHATA_API_URL", "")
	t.Setenv("KHATA_STATE_DIR", "")
	t.Setenv("KHATA_TOKEN", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, ".khata", cfg.StateDir)
	assert.Empty(t, cfg.Token)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KHATA_API_URL", "https://khata.example.com/api")
	t.Setenv("KHATA_STATE_DIR", "/tmp/khata-test")
	t.Setenv("KHATA_TOKEN", "env-token")

	cfg := Load()
	assert.Equal(t, "https://khata.example.com/api", cfg.APIURL)
	assert.Equal(t, "/tmp/khata-test", cfg.StateDir)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestResolveStateDir_Absolute(t *testing.T) {
	cfg := Config{StateDir: "/var/lib/khata"}
	assert.Equal(t, "/var/lib/khata", cfg.ResolveStateDir())
	assert.Equal(t, filepath.Join("/var/lib/khata", "debug.log"), cfg.LogPath())
}

func TestResolveStateDir_RelativeUsesHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := Config{StateDir: ".khata"}
	assert.Equal(t, "/home/tester/.khata", cfg.ResolveStateDir())
}
