package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/md-rashed-zaman/tutorslots/libs/config"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
)

type serviceConfig struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"availability-service"`
	Port        string `envconfig:"PORT" default:"8090"`
	GRPCPort    string `envconfig:"GRPC_PORT" default:"9090"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaGroupID string `envconfig:"KAFKA_GROUP_ID" default:"availability-service"`
	ProfileTopic string `envconfig:"KAFKA_PROFILE_TOPIC" default:"user.profile.updated.v1"`

	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	RedisDB            int    `envconfig:"REDIS_DB" default:"0"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	RateLimitPrefix    string `envconfig:"RATE_LIMIT_PREFIX" default:"rl:availability"`
	RateLimitFailOpen  bool   `envconfig:"RATE_LIMIT_FAIL_OPEN" default:"true"`

	CORSAllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS"`
	BodyLimitBytes     int64         `envconfig:"REQUEST_BODY_LIMIT_BYTES" default:"1048576"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	ZoneTablePath string `envconfig:"ZONE_TABLE_PATH"`
	UsersSeedPath string `envconfig:"USERS_SEED_PATH"`

	availability.Config
}

func loadConfig() (serviceConfig, error) {
	var cfg serviceConfig
	if err := config.Process("", &cfg); err != nil {
		return serviceConfig{}, err
	}
	if err := config.ValidatePort("PORT", cfg.Port); err != nil {
		return serviceConfig{}, err
	}
	if err := config.ValidatePort("GRPC_PORT", cfg.GRPCPort); err != nil {
		return serviceConfig{}, err
	}
	if cfg.RateLimitPerMinute <= 0 {
		return serviceConfig{}, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be > 0 (got %d)", cfg.RateLimitPerMinute)
	}
	if err := cfg.Config.Validate(); err != nil {
		return serviceConfig{}, err
	}
	return cfg, nil
}

// loadSeedUsers reads a JSON array of users. An empty path yields no users.
func loadSeedUsers(path string) ([]availability.User, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var users []availability.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("parse %s: user %d has no id", path, i)
		}
	}
	return users, nil
}
