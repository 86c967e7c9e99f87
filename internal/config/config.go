package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileEnv names an optional YAML, TOML or JSON file whose keys are
// the lowercase environment variable names. Environment values win.
const ConfigFileEnv = "METRONOME_CONFIG"

type Config struct {
	Port                   int
	DatabaseURL            string
	NatsURL                string
	NatsToken              string
	LogLevel               string
	LinguisticServiceURL   string
	LinguisticTimeout      time.Duration
	LinguisticPort         int
	TimelineWebhookURL     string
	WebhookTimeout         time.Duration
	HumeAPIKey             string
	HumeAPIURL             string
	EmotionInsertBatchSize int
	APIToken               string
}

var defaults = map[string]any{
	"metronome_port":            8760,
	"database_url":              "",
	"nats_url":                  "nats://hermes:4222",
	"nats_token":                "",
	"log_level":                 "info",
	"linguistic_service_url":    "",
	"linguistic_timeout":        "30s",
	"linguistic_port":           8000,
	"timeline_webhook_url":      "",
	"webhook_timeout":           "10s",
	"hume_api_key":              "",
	"hume_api_url":              "https://api.hume.ai",
	"emotion_insert_batch_size": 500,
	"metronome_api_token":       "",
}

// Load reads defaults, the optional config file and the environment.
// Unparseable numbers and durations fall back to their defaults. Only an
// unreadable config file is an error.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return Config{
		Port:                   intValue(v, "metronome_port"),
		DatabaseURL:            v.GetString("database_url"),
		NatsURL:                v.GetString("nats_url"),
		NatsToken:              v.GetString("nats_token"),
		LogLevel:               strings.ToLower(v.GetString("log_level")),
		LinguisticServiceURL:   v.GetString("linguistic_service_url"),
		LinguisticTimeout:      durationValue(v, "linguistic_timeout"),
		LinguisticPort:         intValue(v, "linguistic_port"),
		TimelineWebhookURL:     v.GetString("timeline_webhook_url"),
		WebhookTimeout:         durationValue(v, "webhook_timeout"),
		HumeAPIKey:             v.GetString("hume_api_key"),
		HumeAPIURL:             v.GetString("hume_api_url"),
		EmotionInsertBatchSize: positiveIntValue(v, "emotion_insert_batch_size"),
		APIToken:               v.GetString("metronome_api_token"),
	}, nil
}

func intValue(v *viper.Viper, key string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return n
	}
	return defaults[key].(int)
}

func positiveIntValue(v *viper.Viper, key string) int {
	if n := intValue(v, key); n > 0 {
		return n
	}
	return defaults[key].(int)
}

// durationValue accepts Go durations ("45s", "1m") or whole seconds ("45").
func durationValue(v *viper.Viper, key string) time.Duration {
	s := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	d, _ := time.ParseDuration(defaults[key].(string))
	return d
}
