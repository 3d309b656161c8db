package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Auth struct {
		SigningKey       string `yaml:"signing_key"`
		AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	} `yaml:"auth"`
	Notifications struct {
		SMSAPIKey        string `yaml:"sms_api_key"`
		EmailEndpoint    string `yaml:"email_endpoint"`
		EmailAPIKey      string `yaml:"email_api_key"`
		EmailFromName    string `yaml:"email_from_name"`
		EmailFromAddress string `yaml:"email_from_address"`
		FirebaseCreds    string `yaml:"firebase_credentials"`
	} `yaml:"notifications"`
}

// LoadConfig reads the YAML config named by CONFIG_PATH, falling back
// to config/config.yaml. Secrets may override config values through
// the environment.
func LoadConfig() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.Auth.SigningKey = v
	}
	if v := os.Getenv("SMS_API_KEY"); v != "" {
		cfg.Notifications.SMSAPIKey = v
	}
	if v := os.Getenv("EMAIL_API_KEY"); v != "" {
		cfg.Notifications.EmailAPIKey = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS"); v != "" {
		cfg.Notifications.FirebaseCreds = v
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":4000"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	return cfg, nil
}
