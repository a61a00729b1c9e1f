package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Port string `mapstructure:"port" json:"port"`
}

type AlphaVantage struct {
	APIKey                string `mapstructure:"api_key" json:"api_key"`
	BaseURL               string `mapstructure:"base_url" json:"base_url"`
	MaxRequestsPerMinute  int    `mapstructure:"max_requests_per_minute" json:"max_requests_per_minute"`
	Burst                 int    `mapstructure:"burst" json:"burst"`
	MinRequestIntervalSec int    `mapstructure:"min_request_interval_sec" json:"min_request_interval_sec"`
	RequestTimeoutSec     int    `mapstructure:"request_timeout_sec" json:"request_timeout_sec"`
}

type Finnhub struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	APIKey  string `mapstructure:"api_key" json:"api_key"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

type Log struct {
	Level  string `mapstructure:"level" json:"level"`
	Pretty bool   `mapstructure:"pretty" json:"pretty"`
}

type Config struct {
	Server       Server       `mapstructure:"server" json:"server"`
	AlphaVantage AlphaVantage `mapstructure:"alphavantage" json:"alphavantage"`
	Finnhub      Finnhub      `mapstructure:"finnhub" json:"finnhub"`
	Log          Log          `mapstructure:"log" json:"log"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080"},
		AlphaVantage: AlphaVantage{
			BaseURL:              "https://www.alphavantage.co/query",
			MaxRequestsPerMinute: 5,
			Burst:                2,
		},
		Finnhub: Finnhub{
			BaseURL: "https://finnhub.io/api/v1",
		},
		Log: Log{Level: "info"},
	}
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                           "PORT",
	"alphavantage.api_key":                  "ALPHAVANTAGE_API_KEY",
	"alphavantage.base_url":                 "ALPHAVANTAGE_URL",
	"alphavantage.max_requests_per_minute":  "ALPHAVANTAGE_MAX_RPM",
	"alphavantage.burst":                    "ALPHAVANTAGE_BURST",
	"alphavantage.min_request_interval_sec": "ALPHAVANTAGE_MIN_INTERVAL_SEC",
	"alphavantage.request_timeout_sec":      "REQUEST_TIMEOUT_SEC",
	"finnhub.enabled":                       "FINNHUB_ENABLED",
	"finnhub.api_key":                       "FINNHUB_API_KEY",
	"finnhub.base_url":                      "FINNHUB_URL",
	"log.level":                             "LOG_LEVEL",
	"log.pretty":                            "LOG_PRETTY",
}

// Load reads config from path (JSON or YAML, by extension). If path is empty,
// ./config.json is used when present; otherwise defaults apply. A .env file in
// the working directory is loaded first, then environment variables override
// file values.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("alphavantage.api_key", cfg.AlphaVantage.APIKey)
	v.SetDefault("alphavantage.base_url", cfg.AlphaVantage.BaseURL)
	v.SetDefault("alphavantage.max_requests_per_minute", cfg.AlphaVantage.MaxRequestsPerMinute)
	v.SetDefault("alphavantage.burst", cfg.AlphaVantage.Burst)
	v.SetDefault("alphavantage.min_request_interval_sec", cfg.AlphaVantage.MinRequestIntervalSec)
	v.SetDefault("alphavantage.request_timeout_sec", cfg.AlphaVantage.RequestTimeoutSec)
	v.SetDefault("finnhub.enabled", cfg.Finnhub.Enabled)
	v.SetDefault("finnhub.api_key", cfg.Finnhub.APIKey)
	v.SetDefault("finnhub.base_url", cfg.Finnhub.BaseURL)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.pretty", cfg.Log.Pretty)
}

// normalize clamps values that would otherwise disable the client.
func (c *Config) normalize() {
	c.Server.Port = strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")
	if c.Server.Port == "" {
		c.Server.Port = Default().Server.Port
	}
	if c.AlphaVantage.BaseURL == "" {
		c.AlphaVantage.BaseURL = Default().AlphaVantage.BaseURL
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = Default().Finnhub.BaseURL
	}
	if c.AlphaVantage.MaxRequestsPerMinute < 0 {
		c.AlphaVantage.MaxRequestsPerMinute = 0
	}
	if c.AlphaVantage.Burst <= 0 {
		c.AlphaVantage.Burst = 1
	}
	if c.AlphaVantage.MinRequestIntervalSec < 0 {
		c.AlphaVantage.MinRequestIntervalSec = 0
	}
	if c.AlphaVantage.RequestTimeoutSec < 0 {
		c.AlphaVantage.RequestTimeoutSec = 0
	}
}
