package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"tokend/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Engine: structures.EngineConfig{
			Timezone:         "UTC",
			EvaluateInterval: time.Minute,
		},
		LocalStore: structures.LocalStoreConfig{
			Driver: "sqlite",
			Path:   "/tmp/tokend.db",
		},
		Notifications: structures.NotificationsConfig{
			Sink: "log",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_UnknownDriver(t *testing.T) {
	c := validConfig()
	c.LocalStore.Driver = "redis"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_BadTimezone(t *testing.T) {
	c := validConfig()
	c.Engine.Timezone = "Mars/Olympus"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_RemoteWithoutPath(t *testing.T) {
	c := validConfig()
	c.Remote.Enabled = true
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_WebhookWithoutUrl(t *testing.T) {
	c := validConfig()
	c.Notifications.Sink = "webhook"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestNewConfigProvider_ReadsYamlWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokend.yml")
	yml := `
webServer:
  host: 127.0.0.1
  port: 8090
logger:
  level: debug
  mode: 420
  dir: /tmp
engine:
  timezone: UTC
  unlimitedUsers: [lolo]
localStore:
  driver: file
  path: /tmp/tokend.dat
remote:
  enabled: true
  path: /tmp/remote.db
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, 8090, conf.WebServer.Port)
	assert.Equal(t, "file", conf.LocalStore.Driver)
	assert.Equal(t, []string{"lolo"}, conf.Engine.UnlimitedUsers)
	assert.Equal(t, time.Minute, conf.Engine.EvaluateInterval)
	assert.Equal(t, 5*time.Second, conf.Remote.Timeout)
	assert.Equal(t, "log", conf.Notifications.Sink)
	assert.True(t, conf.Notifications.PushEnabled)
	assert.True(t, conf.Debug)
	assert.Equal(t, path, conf.Path)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: "/nonexistent/tokend.yml"})
	assert.Error(t, err)
}
