package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"tokend/internal/structures"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("engine.timezone", "Local")
	v.SetDefault("engine.evaluateInterval", "60s")
	v.SetDefault("localStore.driver", "sqlite")
	v.SetDefault("remote.timeout", "5s")
	v.SetDefault("notifications.sink", "log")
	v.SetDefault("notifications.timeout", "3s")
	v.SetDefault("notifications.pushEnabled", true)
	v.SetDefault("notifications.tokenArrivalEnabled", true)
	v.SetDefault("persistence.saveInterval", "30s")

	_ = v.BindEnv("logger.level", "TOKEND_LOG_LEVEL")
	_ = v.BindEnv("engine.timezone", "TOKEND_TIMEZONE")
	_ = v.BindEnv("localStore.path", "TOKEND_LOCAL_PATH")
	_ = v.BindEnv("remote.path", "TOKEND_REMOTE_PATH")
	_ = v.BindEnv("notifications.webhookUrl", "TOKEND_WEBHOOK_URL")
	_ = v.BindEnv("cache.enabled", "TOKEND_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TokenDeliveryDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
