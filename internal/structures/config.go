package structures

import "time"

type Server struct {
	Host string `mapstructure:"host" yaml:"host" validate:"required"`
	Port int    `mapstructure:"port" yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `mapstructure:"mode" yaml:"mode" validate:"required|uint"`
	Dir   string `mapstructure:"dir" yaml:"dir" validate:"required"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver" validate:"required|in:memory,sqlite"`
	DSN        string `mapstructure:"dsn" yaml:"dsn"`
	Prefix     string `mapstructure:"prefix" yaml:"prefix"`
	QuotaBytes int64  `mapstructure:"quotaBytes" yaml:"quotaBytes"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Size    int  `mapstructure:"size" yaml:"size"`
}

type Persistence struct {
	FilePath     string        `mapstructure:"filePath" yaml:"filePath"`
	SaveInterval time.Duration `mapstructure:"saveInterval" yaml:"saveInterval"`
}

type BackendConfig struct {
	BaseURL    string        `mapstructure:"baseURL" yaml:"baseURL" validate:"required|fullUrl"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"maxRetries" yaml:"maxRetries"`
}

type SyncConfig struct {
	BatchConcurrency int `mapstructure:"batchConcurrency" yaml:"batchConcurrency"`
	MaxResults       int `mapstructure:"maxResults" yaml:"maxResults"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server        `mapstructure:"webServer" yaml:"webServer"`
	Logger      LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Storage     StorageConfig `mapstructure:"storage" yaml:"storage"`
	Cache       CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Persistence Persistence   `mapstructure:"persistence" yaml:"persistence"`
	Backend     BackendConfig `mapstructure:"backend" yaml:"backend"`
	Sync        SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Metrics     MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}
