package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/mnr-arrivals/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("MTA_API_KEY", "")

	cfg, err := config.Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 16181, cfg.Server.Port)
	assert.Equal(t, "mnr", cfg.Feed.Name)
	assert.Equal(t, config.DefaultRealtimeURL, cfg.Feed.RealtimeURL)
	assert.Equal(t, "x-api-key", cfg.Feed.APIKeyHeader)
	assert.Equal(t, 3, cfg.Arrivals.Count)
	assert.Equal(t, 30*time.Minute, cfg.ScheduleCutoff())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Empty(t, cfg.Feed.APIKey)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("MNR_KEY", "s3cret")

	cfg, err := config.Parse([]byte(`
server:
  port: 8080
  allowedOrigins: ["http://localhost:3000"]
feed:
  apiKeyEnv: MNR_KEY
  staticPath: ./gtfs
stop:
  name: Mamaroneck
arrivals:
  count: 5
storage:
  sqlitePath: ./mnr.db
logging:
  level: debug
  json: true
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.Feed.APIKey)
	assert.Equal(t, "./gtfs", cfg.Feed.StaticPath)
	assert.Equal(t, "Mamaroneck", cfg.Stop.Name)
	assert.Equal(t, 5, cfg.Arrivals.Count)
	assert.Equal(t, "./mnr.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, "America/New_York", cfg.Arrivals.Timezone)
	assert.Equal(t, config.DefaultRealtimeURL, cfg.Feed.RealtimeURL)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad yaml", yaml: "invalid: yaml: content: [[["},
		{name: "port out of range", yaml: "server:\n  port: 70000\n"},
		{name: "zero count", yaml: "arrivals:\n  count: 0\n"},
		{name: "count too large", yaml: "arrivals:\n  count: 500\n"},
		{name: "unknown timezone", yaml: "arrivals:\n  timezone: Mars/Olympus\n"},
		{name: "bad log level", yaml: "logging:\n  level: chatty\n"},
		{name: "bad static url", yaml: "feed:\n  staticURL: not a url\n"},
		{name: "empty realtime url", yaml: "feed:\n  realtimeURL: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("stop:\n  id: \"111\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "111", cfg.Stop.ID)

	_, err = config.Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoadAppConfig(t *testing.T) {
	origConfig := config.Config
	origDir, _ := os.Getwd()
	defer func() {
		config.Config = origConfig
		_ = os.Chdir(origDir)
	}()

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))

	// No file: defaults.
	require.NoError(t, config.LoadAppConfig())
	assert.Equal(t, 16181, config.Config.Server.Port)

	require.NoError(t, os.WriteFile("config.yml", []byte("server:\n  port: 9000\n"), 0o644))
	require.NoError(t, config.LoadAppConfig())
	assert.Equal(t, 9000, config.Config.Server.Port)

	require.NoError(t, os.WriteFile("config.yml", []byte("server:\n  port: -1\n"), 0o644))
	assert.Error(t, config.LoadAppConfig())
}

func TestLoadAppConfig_DotEnv(t *testing.T) {
	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	require.NoError(t, os.WriteFile(".env", []byte("MNR_DOTENV_KEY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("MNR_DOTENV_KEY") })

	cfg, err := config.Parse([]byte("feed:\n  apiKeyEnv: MNR_DOTENV_KEY\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Feed.APIKey)
}
