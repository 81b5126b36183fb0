package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Calendar: CalendarConfig{DurationMinutes: 30, EventTimezone: "UTC"},
		DueDate:  DueDateConfig{Timezone: "Asia/Kolkata"},
		LLM:      LLMConfig{Provider: "azure"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_REPO", "")
	t.Setenv("OWNER_MAP", "")
	t.Setenv("OWNER_MAP_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"meeting", "action-item"}, cfg.GitHub.DefaultLabels)
	assert.Equal(t, 30*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 30, cfg.Calendar.DurationMinutes)
	assert.Equal(t, "UTC", cfg.Calendar.EventTimezone)
	assert.Equal(t, "Asia/Kolkata", cfg.DueDate.Timezone)
	assert.False(t, cfg.TrackerConfigured())
	assert.Equal(t, "bob-real-github-username", cfg.Owners.Map["bob"])
}

func TestLoad_TrackerFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_REPO", "acme/widgets")
	t.Setenv("GITHUB_DEFAULT_LABELS", "meeting")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TrackerConfigured())
	assert.Equal(t, []string{"meeting"}, cfg.GitHub.DefaultLabels)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	bad := validConfig()
	bad.GitHub.Repo = "widgets"
	assert.Error(t, bad.Validate())

	bad = validConfig()
	bad.Calendar.DurationMinutes = 0
	assert.Error(t, bad.Validate())

	bad = validConfig()
	bad.DueDate.Timezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())

	bad = validConfig()
	bad.LLM.Provider = "anthropic"
	assert.Error(t, bad.Validate())
}

func TestBuildOwnerTable_LaterSourcesWin(t *testing.T) {
	t.Setenv("OWNER_NAME_1", "")
	t.Setenv("OWNER_NAME_2", "alice-default")

	file := filepath.Join(t.TempDir(), "owners.yaml")
	require.NoError(t, os.WriteFile(file, []byte("owners:\n  Alice: alice-file\n  carol: carol-file\n"), 0o644))

	table, err := buildOwnerTable(OwnerConfig{
		MapFile: file,
		Map:     map[string]string{"carol": "carol-env", "bob": ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice-file", table["alice"])
	assert.Equal(t, "carol-env", table["carol"])
	_, hasBob := table["bob"]
	assert.False(t, hasBob)
	_, hasMrinali := table["mrinali"]
	assert.False(t, hasMrinali)
}

func TestLoadOwnerFile_Missing(t *testing.T) {
	_, err := LoadOwnerFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
