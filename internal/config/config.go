package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	MetricsPort     int    `mapstructure:"metrics_port"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min"`
}

func (a AppConfig) PortString() string { return fmt.Sprintf("%d", a.Port) }

func (a AppConfig) Development() bool { return a.Env != "production" }

type MongoConfig struct {
	URI string `mapstructure:"uri"`
	DB  string `mapstructure:"db"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type WSConfig struct {
	PingIntervalSeconds  int   `mapstructure:"ping_interval_seconds"`
	WriteDeadlineSeconds int   `mapstructure:"write_deadline_seconds"`
	MaxMessageSizeBytes  int64 `mapstructure:"max_message_size_bytes"`
}

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Mongo MongoConfig `mapstructure:"mongo"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	WS    WSConfig    `mapstructure:"ws"`

	// derived
	PingInterval  time.Duration
	WriteDeadline time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.MetricsPort == 0 {
		cfg.App.MetricsPort = 9090
	}
	if cfg.App.RateLimitPerMin == 0 {
		cfg.App.RateLimitPerMin = 120
	}
	if cfg.WS.PingIntervalSeconds == 0 {
		cfg.WS.PingIntervalSeconds = 25
	}
	if cfg.WS.WriteDeadlineSeconds == 0 {
		cfg.WS.WriteDeadlineSeconds = 10
	}
	if cfg.WS.MaxMessageSizeBytes == 0 {
		cfg.WS.MaxMessageSizeBytes = 65536
	}
	cfg.PingInterval = time.Duration(cfg.WS.PingIntervalSeconds) * time.Second
	cfg.WriteDeadline = time.Duration(cfg.WS.WriteDeadlineSeconds) * time.Second

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Mongo.URI == "" {
		return errors.New("mongo.uri missing")
	}
	if cfg.Mongo.DB == "" {
		return errors.New("mongo.db missing")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("redis.addr missing")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers missing")
	}
	if cfg.Kafka.Topic == "" {
		return errors.New("kafka.topic missing")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret missing")
	}
	return nil
}
