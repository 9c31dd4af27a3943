package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the platform services.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mapping  MappingConfig  `mapstructure:"mapping"`
	Peers    PeersConfig    `mapstructure:"peers"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// MappingConfig tunes the session-credit expiry behaviour.
type MappingConfig struct {
	// ExpiryGrace is how long an exhausted mapping stays accepted
	// before the sweeper flips it to expired.
	ExpiryGrace   time.Duration `mapstructure:"expiry_grace"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// PeersConfig holds base URLs of the sibling services.
type PeersConfig struct {
	UserServiceURL    string `mapstructure:"user_service_url"`
	WorkoutServiceURL string `mapstructure:"workout_service_url"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: mapping.expiry_grace -> MAPPING_EXPIRY_GRACE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.dsn", "host=localhost user=fitcoach dbname=fitcoach sslmode=disable")
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("mapping.expiry_grace", "2h")
	viper.SetDefault("mapping.sweep_interval", "1m")
	viper.SetDefault("peers.user_service_url", "http://localhost:8000")
	viper.SetDefault("peers.workout_service_url", "http://localhost:8001")

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
