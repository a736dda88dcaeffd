package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SecretsSourceAWS = "aws"
	SecretsSourceEnv = "env"
)

type Config struct {
	ClickUp ClickUpConfig `mapstructure:"clickup"`
	Slack   SlackConfig   `mapstructure:"slack"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Secrets SecretsConfig `mapstructure:"secrets"`
	Log     LogConfig     `mapstructure:"log"`
}

type ClickUpConfig struct {
	BaseURL  string       `mapstructure:"base_url"`
	FolderID string       `mapstructure:"folder_id"`
	Lists    []ListConfig `mapstructure:"lists"`
	Statuses []string     `mapstructure:"statuses"`
}

// ListConfig names one list; lists are processed in configuration order.
type ListConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type SlackConfig struct {
	Channel string `mapstructure:"channel"`
	APIURL  string `mapstructure:"api_url"`
}

type AlertsConfig struct {
	AgeThresholdDays int    `mapstructure:"age_threshold_days"`
	ThresholdLabel   string `mapstructure:"threshold_label"`
	MaxChars         int    `mapstructure:"max_chars"`
	Separator        bool   `mapstructure:"separator"`
}

type SecretsConfig struct {
	Source   string `mapstructure:"source"`
	Name     string `mapstructure:"name"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaultLists = []map[string]any{
	{"id": "900200424416", "name": "AWS"},
	{"id": "900200424417", "name": "GitHub"},
	{"id": "901604984656", "name": "MongoDB Atlas"},
	{"id": "900200645782", "name": "Jenkins"},
	{"id": "900200667461", "name": "Miscellaneous"},
	{"id": "901608469670", "name": "Prod Temp Access VPN"},
	{"id": "901608574162", "name": "Prod Temp Access DB"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("clickup.base_url", "https://api.clickup.com/api/v2")
	v.SetDefault("clickup.folder_id", "")
	v.SetDefault("clickup.lists", defaultLists)
	v.SetDefault("clickup.statuses", []string{"Open", "Waiting for support", "Waiting for approval", "On hold"})

	v.SetDefault("slack.channel", "#clickup-alerts")
	v.SetDefault("slack.api_url", "")

	v.SetDefault("alerts.age_threshold_days", 14)
	v.SetDefault("alerts.threshold_label", "2 Weeks")
	v.SetDefault("alerts.max_chars", 2800)
	v.SetDefault("alerts.separator", true)

	v.SetDefault("secrets.source", SecretsSourceAWS)
	v.SetDefault("secrets.name", "my_clickup_slack_secrets")
	v.SetDefault("secrets.region", "ap-south-1")
	v.SetDefault("secrets.endpoint", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads config.yaml from path, or from ./, ./config and
// /etc/clickup-alerts/ when path is empty. A missing file is not an error
// when searching; defaults and environment variables
// (e.g. ALERTS_AGE_THRESHOLD_DAYS) still apply. A .env file in the working
// directory is loaded first if present; a malformed one is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/clickup-alerts/")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	for i := range cfg.ClickUp.Lists {
		cfg.ClickUp.Lists[i].ID = strings.TrimSpace(cfg.ClickUp.Lists[i].ID)
		cfg.ClickUp.Lists[i].Name = strings.TrimSpace(cfg.ClickUp.Lists[i].Name)
	}
	cfg.Secrets.Source = strings.ToLower(strings.TrimSpace(cfg.Secrets.Source))

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.ClickUp.Lists) == 0 && c.ClickUp.FolderID == "" {
		return fmt.Errorf("no lists configured (set clickup.lists or clickup.folder_id)")
	}

	seen := make(map[string]bool)
	for i, l := range c.ClickUp.Lists {
		if l.ID == "" {
			return fmt.Errorf("clickup.lists[%d]: id is required", i)
		}
		if seen[l.ID] {
			return fmt.Errorf("clickup.lists[%d]: duplicate list id %s", i, l.ID)
		}
		seen[l.ID] = true
	}

	if len(c.ClickUp.Statuses) == 0 {
		return fmt.Errorf("clickup.statuses must not be empty")
	}

	if c.Slack.Channel == "" {
		return fmt.Errorf("slack.channel is required")
	}

	if c.Alerts.AgeThresholdDays < 0 {
		return fmt.Errorf("alerts.age_threshold_days must not be negative")
	}
	if c.Alerts.MaxChars <= 0 {
		return fmt.Errorf("alerts.max_chars must be positive")
	}

	switch c.Secrets.Source {
	case SecretsSourceAWS:
		if c.Secrets.Name == "" {
			return fmt.Errorf("secrets.name is required for the aws source")
		}
	case SecretsSourceEnv:
	default:
		return fmt.Errorf("unknown secrets.source %q (want %s or %s)", c.Secrets.Source, SecretsSourceAWS, SecretsSourceEnv)
	}

	return nil
}
