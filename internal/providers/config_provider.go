package providers

import (
	"fmt"
	"path/filepath"
	"storybank/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultKeyPrefix  = "scripter_tool_"
	DefaultQuotaBytes = 5 * 1024 * 1024
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)

	v.BindEnv("logger.level", "COMPOSER_LOG_LEVEL")
	v.BindEnv("storage.driver", "COMPOSER_STORAGE_DRIVER")
	v.BindEnv("storage.dsn", "COMPOSER_STORAGE_DSN")
	v.BindEnv("backend.baseURL", "COMPOSER_BACKEND_URL")
	v.BindEnv("cache.enabled", "COMPOSER_CACHE_ENABLED")
	v.BindEnv("cache.size", "COMPOSER_CACHE_SIZE")
	v.BindEnv("persistence.saveInterval", "COMPOSER_SAVE_INTERVAL")

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

	conf.AppName = "StoryBankComposer"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.prefix", DefaultKeyPrefix)
	v.SetDefault("storage.quotaBytes", DefaultQuotaBytes)
	v.SetDefault("cache.size", 16)
	v.SetDefault("persistence.saveInterval", 30*time.Second)
	v.SetDefault("backend.baseURL", "http://localhost:8000")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.maxRetries", 3)
	v.SetDefault("sync.batchConcurrency", 4)
	v.SetDefault("sync.maxResults", 20)
}
