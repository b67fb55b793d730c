package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/thand-io/reader/internal/client"
	"github.com/thand-io/reader/internal/metrics"
	"github.com/thand-io/reader/internal/sessions"
	"github.com/thand-io/reader/internal/storage"
)

const (
	DefaultEndpoint = "https://api.reader.app"
	DefaultDir      = "$HOME/.config/reader"
)

var ErrNoActiveSession = errors.New(
	"you must login first. No valid session found")

func DefaultConfig() *Config {
	v := viper.New()

	// Set default values
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("error unmarshaling default config: %v", err)
	}

	return &config
}

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	setupViperConfig(v, configFile)
	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := setupLogging(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		// .env file not found, that's okay - continue with other sources
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}
	return nil
}

// setupViperConfig configures viper with file paths and defaults
func setupViperConfig(v *viper.Viper, configFile string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/reader")
	v.AddConfigPath(DefaultDir)

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix("READER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
}

// bindEnvironmentVariables binds all environment variables to viper
func bindEnvironmentVariables(v *viper.Viper) {
	v.BindEnv("api.endpoint", "READER_API_ENDPOINT", "READER_BASE_URL")
	v.BindEnv("api.timeout", "READER_API_TIMEOUT")

	v.BindEnv("storage.driver", "READER_STORAGE_DRIVER")
	v.BindEnv("storage.path", "READER_STORAGE_PATH")
	v.BindEnv("storage.key", "READER_STORAGE_KEY")

	v.BindEnv("storage.redis.address", "READER_REDIS_ADDRESS")
	v.BindEnv("storage.redis.password", "READER_REDIS_PASSWORD")
	v.BindEnv("storage.redis.db", "READER_REDIS_DB")

	v.BindEnv("metrics.pushgateway", "READER_METRICS_PUSHGATEWAY")
	v.BindEnv("metrics.job", "READER_METRICS_JOB")

	v.BindEnv("logging.level", "READER_LOGGING_LEVEL")
	v.BindEnv("logging.format", "READER_LOGGING_FORMAT")
}

// readAndUnmarshalConfig reads the configuration file and unmarshals it
func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setupLogging configures the logging system based on the config
func setupLogging(config *Config, v *viper.Viper) error {
	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	// Dump out the config settings if in debug mode
	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			if strings.Contains(key, "password") {
				continue
			}
			logrus.Debugf("Config '%s': %v\n", key, value)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Reader service defaults
	v.SetDefault("api.endpoint", DefaultEndpoint)
	v.SetDefault("api.timeout", client.DefaultTimeout)
	v.SetDefault("api.headers", map[string]string{})

	// Storage defaults
	v.SetDefault("storage.driver", string(storage.DriverFile))
	v.SetDefault("storage.path", DefaultDir)
	v.SetDefault("storage.name", "session")
	v.SetDefault("storage.key", sessions.DefaultKey)
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "reader:")
	v.SetDefault("storage.redis.ttl", "0s")

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	// Notification defaults
	v.SetDefault("notifications.history_size", 50)
	v.SetDefault("notifications.history_key", "notifications")

	// Metrics defaults
	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", metrics.DefaultJob)
	v.SetDefault("metrics.timeout", "5s")
}

// ClientConfig is the HTTP client setup derived from the api section.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL: c.API.Endpoint,
		Timeout: c.API.Timeout,
		Headers: c.API.Headers,
	}
}

// NewStorageProvider builds the persistence provider for the configured
// driver.
func (c *Config) NewStorageProvider() (storage.Provider, error) {
	driver := storage.Driver(strings.ToLower(c.Storage.Driver))

	switch driver {
	case storage.DriverRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     c.Storage.Redis.Address,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
		})
		return storage.NewProvider(driver,
			storage.WithRedisClient(redisClient),
			storage.WithRedisPrefix(c.Storage.Redis.Prefix),
			storage.WithRedisTTL(c.Storage.Redis.TTL),
		)

	case storage.DriverFile:
		return storage.NewProvider(driver,
			storage.WithPath(os.ExpandEnv(c.Storage.Path)),
			storage.WithName(c.Storage.Name),
		)

	default:
		return storage.NewProvider(driver)
	}
}
