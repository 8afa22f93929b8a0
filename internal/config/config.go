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
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the donation-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	DatabaseURL             string `mapstructure:"DATABASE_URL"`
	RazorpayAPIBaseURL      string `mapstructure:"RAZORPAY_API_BASE_URL"`
	RazorpayKeyID           string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret       string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret   string `mapstructure:"RAZORPAY_WEBHOOK_SECRET"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	RedisURL                string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix    string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	InitFlowRateLimitPerMin int    `mapstructure:"INIT_FLOW_RATE_LIMIT_PER_MINUTE"`
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
	viper.SetDefault("RAZORPAY_API_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "sevasetu:rate_limit")
	viper.SetDefault("INIT_FLOW_RATE_LIMIT_PER_MINUTE", 60)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RAZORPAY_API_BASE_URL")
	_ = viper.BindEnv("RAZORPAY_KEY_ID")
	_ = viper.BindEnv("RAZORPAY_KEY_SECRET")
	_ = viper.BindEnv("RAZORPAY_WEBHOOK_SECRET")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("INIT_FLOW_RATE_LIMIT_PER_MINUTE")

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

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.RazorpayWebhookSecret = strings.TrimSpace(config.RazorpayWebhookSecret)
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "sevasetu:rate_limit"
	}
	if config.InitFlowRateLimitPerMin < 0 {
		log.Printf("level=warn component=config msg=\"negative init-flow rate limit configured; coercing to zero\" per_minute=%d", config.InitFlowRateLimitPerMin)
		config.InitFlowRateLimitPerMin = 0
	}

	return
}
