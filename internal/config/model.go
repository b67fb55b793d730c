package config

import (
	"fmt"
	"time"

	"github.com/thand-io/reader/internal/common"
)

// Config represents the application configuration structure
type Config struct {
	API           APIConfig           `mapstructure:"api"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

type APIConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Headers  map[string]string `mapstructure:"headers"`
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"` // memory, file or redis
	Path   string      `mapstructure:"path"`   // Directory for the file driver
	Name   string      `mapstructure:"name"`   // File name for the file driver
	Key    string      `mapstructure:"key"`    // Key the session record lives under
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NotificationsConfig struct {
	HistorySize int    `mapstructure:"history_size"`
	HistoryKey  string `mapstructure:"history_key"`
}

// MetricsConfig controls where collected metrics go. An empty
// pushgateway keeps them in process.
type MetricsConfig struct {
	PushGateway string        `mapstructure:"pushgateway"`
	Job         string        `mapstructure:"job"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (c *Config) GetEndpoint() string {
	return c.API.Endpoint
}

// SetEndpoint overrides the reader service endpoint, e.g. from a flag.
func (c *Config) SetEndpoint(endpoint string) error {
	if !common.IsValidURL(endpoint) {
		return fmt.Errorf("invalid endpoint url: %s", endpoint)
	}
	c.API.Endpoint = endpoint
	return nil
}

func (c *Config) HasPushGateway() bool {
	return len(c.Metrics.PushGateway) > 0
}

func (c *Config) HasEndpoint() bool {
	return len(c.API.Endpoint) > 0
}
