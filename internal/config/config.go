// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port             string `mapstructure:"PORT"`
	Env              string `mapstructure:"APP_ENV"`
	AppURL           string `mapstructure:"APP_URL"`
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	CookieExpireDays int    `mapstructure:"COOKIE_EXPIRE_DAYS"`
	DBHost           string `mapstructure:"DB_HOST"`
	DBPort           string `mapstructure:"DB_PORT"`
	DBUser           string `mapstructure:"DB_USER"`
	DBPassword       string `mapstructure:"DB_PASSWORD"`
	DBName           string `mapstructure:"DB_NAME"`
	DBSSLMode        string `mapstructure:"DB_SSLMODE"`
	RedisURL         string `mapstructure:"REDIS_URL"`
	AllowedOrigins   string `mapstructure:"ALLOWED_ORIGINS"`
	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPort         int    `mapstructure:"SMTP_PORT"`
	SMTPUser         string `mapstructure:"SMTP_USER"`
	SMTPPassword     string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom         string `mapstructure:"SMTP_FROM"`
	UploadDir        string `mapstructure:"UPLOAD_DIR"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars and defaults cover development.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "8190")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_URL", "http://localhost:5173")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("COOKIE_EXPIRE_DAYS", 7)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "inkwell")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM", "no-reply@inkwell.local")
	viper.SetDefault("UPLOAD_DIR", "uploads")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.CookieExpireDays <= 0 {
		return errors.New("COOKIE_EXPIRE_DAYS must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	} else {
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
