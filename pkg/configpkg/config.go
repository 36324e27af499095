// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	ServerAddress         string        `mapstructure:"SERVER_ADDRESS"`
	Environement          string        `mapstructure:"GO_ENV"`
	LockTimeout           time.Duration `mapstructure:"LOCK_TIMEOUT"`
	NotificationWorkers   int           `mapstructure:"NOTIFICATION_WORKERS"`
	NotificationQueueSize int           `mapstructure:"NOTIFICATION_QUEUE_SIZE"`
	NotificationMaxWait   time.Duration `mapstructure:"NOTIFICATION_MAX_WAIT"`
	MetricsNamespace      string        `mapstructure:"METRICS_NAMESPACE"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("LOCK_TIMEOUT", 5*time.Second)
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_QUEUE_SIZE", 1000)
	v.SetDefault("NOTIFICATION_MAX_WAIT", 10*time.Millisecond)
	v.SetDefault("METRICS_NAMESPACE", "pet_transfers")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
