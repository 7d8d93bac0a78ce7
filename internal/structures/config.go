package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type EngineConfig struct {
	Timezone         string        `yaml:"timezone" validate:"required"`
	EvaluateInterval time.Duration `yaml:"evaluateInterval" validate:"required|min:1"`
	UnlimitedUsers   []string      `yaml:"unlimitedUsers"`
}

type LocalStoreConfig struct {
	Driver string `yaml:"driver" validate:"required|in:sqlite,file"`
	Path   string `yaml:"path" validate:"required|unixPath"`
}

type RemoteConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

type NotificationsConfig struct {
	Sink                string        `yaml:"sink" validate:"required|in:log,webhook"`
	WebhookUrl          string        `yaml:"webhookUrl"`
	Timeout             time.Duration `yaml:"timeout"`
	PushEnabled         bool          `yaml:"pushEnabled"`
	TokenArrivalEnabled bool          `yaml:"tokenArrivalEnabled"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName       string
	Debug         bool
	Path          string
	WebServer     Server              `yaml:"webServer"`
	Logger        LoggerConfig        `yaml:"logger"`
	Engine        EngineConfig        `yaml:"engine"`
	LocalStore    LocalStoreConfig    `yaml:"localStore"`
	Remote        RemoteConfig        `yaml:"remote"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Persistence   Persistence         `yaml:"persistence"`
	Cache         CacheConfig         `yaml:"cache"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// Location resolves Engine.Timezone, falling back to the process local zone.
func (c *Config) Location() *time.Location {
	if c.Engine.Timezone == "" || c.Engine.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
