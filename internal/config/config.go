/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// DefaultRoutingNumber is assigned to every account at this institution when
// no ROUTING_NUMBER override is configured.
const DefaultRoutingNumber = "000138582"

// Config holds all the configuration variables for the service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	RedisRateLimPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes    int    `mapstructure:"TOKEN_TTL_MINUTES"`
	RoutingNumber      string `mapstructure:"ROUTING_NUMBER"`
	BcryptCost         int    `mapstructure:"BCRYPT_COST"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	SeedDemoData       bool   `mapstructure:"SEED_DEMO_DATA"`
	DevMode            bool   `mapstructure:"DEV_MODE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ROUTING_NUMBER", DefaultRoutingNumber)
	viper.SetDefault("TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "simplebank:rate_limit")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("TOKEN_TTL_MINUTES")
	_ = viper.BindEnv("ROUTING_NUMBER")
	_ = viper.BindEnv("BCRYPT_COST")
	_ = viper.BindEnv("RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("SEED_DEMO_DATA")
	_ = viper.BindEnv("DEV_MODE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	config.RoutingNumber = strings.TrimSpace(config.RoutingNumber)
	if config.RoutingNumber == "" {
		config.RoutingNumber = DefaultRoutingNumber
	}
	if config.TokenTTLMinutes <= 0 {
		config.TokenTTLMinutes = 60
	}
	if config.BcryptCost < 4 || config.BcryptCost > 31 {
		log.Printf("level=warn component=config msg=\"bcrypt cost out of range; using default\" cost=%d", config.BcryptCost)
		config.BcryptCost = 12
	}
	if config.RateLimitPerMinute < 0 {
		config.RateLimitPerMinute = 0
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimPrefix = strings.TrimSpace(config.RedisRateLimPrefix)
	if config.RedisRateLimPrefix == "" {
		config.RedisRateLimPrefix = "simplebank:rate_limit"
	}

	return
}
