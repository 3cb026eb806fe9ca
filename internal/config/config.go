package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/flowuphq/flowup/pkg/logger"
	"github.com/flowuphq/flowup/pkg/storage"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    logger.Config   `yaml:"logger"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Cron      CronConfig      `yaml:"cron"`
	Meta      MetaConfig      `yaml:"meta"`
	Google    GoogleConfig    `yaml:"google"`
	Generator GeneratorConfig `yaml:"generator"`
	Storage   storage.Config  `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type SchedulerConfig struct {
	ScanInterval string `yaml:"scan_interval"`
	Enabled      bool   `yaml:"enabled"`
}

// CronConfig protects the HTTP trigger used by external cron services.
type CronConfig struct {
	Secret string `yaml:"secret"`
}

type MetaConfig struct {
	AppID        string `yaml:"app_id"`
	AppSecret    string `yaml:"app_secret"`
	GraphVersion string `yaml:"graph_version"`
	BaseURL      string `yaml:"base_url"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

// GeneratorConfig points at the external webhook service that produces
// post ideas and images.
type GeneratorConfig struct {
	TextWebhookURL  string `yaml:"text_webhook_url"`
	ImageWebhookURL string `yaml:"image_webhook_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type CacheConfig struct {
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	InsightsTTL string `yaml:"insights_ttl"`
}

type AuthConfig struct {
	TOTPSecret string `yaml:"totp_secret"`
	JWTSecret  string `yaml:"jwt_secret"`
	SessionTTL string `yaml:"session_ttl"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5610
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Scheduler.ScanInterval == "" {
		cfg.Scheduler.ScanInterval = "1m"
	}
	if cfg.Meta.GraphVersion == "" {
		cfg.Meta.GraphVersion = "v19.0"
	}
	if cfg.Meta.BaseURL == "" {
		cfg.Meta.BaseURL = "https://graph.facebook.com"
	}
	if cfg.Generator.TimeoutSeconds == 0 {
		cfg.Generator.TimeoutSeconds = 120
	}
	if cfg.Cache.InsightsTTL == "" {
		cfg.Cache.InsightsTTL = "10m"
	}
	if cfg.Auth.SessionTTL == "" {
		cfg.Auth.SessionTTL = "24h"
	}

	return cfg, nil
}
