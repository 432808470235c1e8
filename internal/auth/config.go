package auth

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	SecretKey     string `mapstructure:"SecretKey"`
	TokenValidity string `mapstructure:"TokenValidity"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.BindEnv("SecretKey", "AUTH_SECRET")
	v.BindEnv("TokenValidity", "AUTH_TOKEN_VALIDITY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = v.GetString("AUTH_SECRET")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SecretKey is required")
	}
	if cfg.TokenValidity == "" {
		cfg.TokenValidity = "720h"
	}

	return &cfg, nil
}

func (c *Config) Validity() time.Duration {
	d, err := time.ParseDuration(c.TokenValidity)
	if err != nil {
		return 720 * time.Hour
	}
	return d
}
