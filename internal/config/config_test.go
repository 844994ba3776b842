package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/guilherme-santos/calremind/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configYAML = `
cron: "0 18 * * *"
timezone: Europe/Berlin
guilds:
  - guild-1
admins:
  - admin-1
calendars:
  - id: primary
  - id: team@group.calendar.google.com
    platform: google
    name: team
reminders:
  Standup: "Reminder: standup tomorrow"
  Retro: "Retro is coming up"
`

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "calremind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func setEnv(t *testing.T, configFile string) {
	t.Helper()

	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("LOG_CHANNEL_ID", "chan-1")
	t.Setenv("CONFIG_FILE", configFile)
}

func TestLoad(t *testing.T) {
	setEnv(t, writeConfig(t, configYAML))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "chan-1", cfg.LogChannelID)
	assert.Equal(t, "0 18 * * *", cfg.File.Cron)
	assert.Equal(t, "guild-1", cfg.Tenant().String())
	assert.Len(t, cfg.File.Calendars, 2)
	assert.Equal(t, "Reminder: standup tomorrow", cfg.Rules()["Standup"])

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_DefaultsPlatformToGoogle(t *testing.T) {
	setEnv(t, writeConfig(t, configYAML))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.File.Calendars[0].Platform)
}

func TestLoad_BotTokenOptional(t *testing.T) {
	setEnv(t, writeConfig(t, configYAML))
	t.Setenv("BOT_TOKEN", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.BotToken)
}

func TestLoad_MissingLogChannelID(t *testing.T) {
	setEnv(t, writeConfig(t, configYAML))
	t.Setenv("LOG_CHANNEL_ID", "")

	_, err := config.Load()
	assert.ErrorContains(t, err, "validating")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	_, err := config.Load()
	assert.ErrorContains(t, err, "reading")
}

func TestLoad_MissingCron(t *testing.T) {
	setEnv(t, writeConfig(t, `
guilds: [guild-1]
admins: [admin-1]
calendars:
  - id: primary
`))

	_, err := config.Load()
	assert.ErrorContains(t, err, "validating")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setEnv(t, writeConfig(t, `
cron: "0 18 * * *"
timezone: Not/AZone
guilds: [guild-1]
admins: [admin-1]
calendars:
  - id: primary
`))

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = cfg.Location()
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestConfig_SlogLevel(t *testing.T) {
	setEnv(t, writeConfig(t, configYAML))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
}
