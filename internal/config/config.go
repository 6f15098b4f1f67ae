package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		PublicURL string `yaml:"publicURL"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL                  string   `yaml:"ttl"`
		DataDir              string   `yaml:"dataDir"`
		Locale               string   `yaml:"locale"`
		Themes               []string `yaml:"themes"`
		DefaultDifficulty    string   `yaml:"defaultDifficulty"`
		DefaultQuestionCount int      `yaml:"defaultQuestionCount"`
		HistoryLimit         int      `yaml:"historyLimit"`
	} `yaml:"quiz"`
	Log struct {
		Level string `yaml:"level"`
		Color bool   `yaml:"color"`
	} `yaml:"log"`
}

// DefaultThemes are the banks shipped with the service.
var DefaultThemes = []string{"easter", "general", "movies", "sports", "kids"}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.PublicURL = "http://localhost:8080"
	cfg.Redis.TTL = "10m"
	cfg.Quiz.TTL = "10m"
	cfg.Quiz.Locale = "no"
	cfg.Quiz.Themes = append([]string(nil), DefaultThemes...)
	cfg.Quiz.DefaultDifficulty = "mixed"
	cfg.Quiz.DefaultQuestionCount = 10
	cfg.Quiz.HistoryLimit = 10
	cfg.Log.Level = "info"
	cfg.Log.Color = true
	return cfg
}

// Load reads YAML config from path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Quiz.Themes) == 0 {
		cfg.Quiz.Themes = append([]string(nil), DefaultThemes...)
	}
	if cfg.Quiz.DefaultQuestionCount <= 0 {
		cfg.Quiz.DefaultQuestionCount = 10
	}
	if cfg.Quiz.HistoryLimit <= 0 {
		cfg.Quiz.HistoryLimit = 10
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
