package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type WebhookConfig struct {
	DiscordURL string        `json:"discord_url"`
	NoGo       bool          `json:"no_go"`
	Repairs    bool          `json:"repairs"`
	Cooldown   time.Duration `json:"cooldown"`
}

type LogConfig struct {
	Level string `json:"level"`
	// File enables a rotating log file in addition to stdout.
	File      string `json:"file"`
	MaxSizeMB int    `json:"max_size_mb"`
}

type Config struct {
	HTTPAddr              string         `json:"http_addr"`
	NodeName              string         `json:"node_name"`
	CatalogFile           string         `json:"catalog_file"`
	DefaultPayloadLbs     float64        `json:"default_payload_lbs"`
	DefaultReserveFuelLbs float64        `json:"default_reserve_fuel_lbs"`
	RegistrationCacheSize int            `json:"registration_cache_size"`
	RegistrationCacheTTL  time.Duration  `json:"registration_cache_ttl"`
	Log                   LogConfig      `json:"log"`
	Database              DatabaseConfig `json:"database"`
	Webhooks              WebhookConfig  `json:"webhooks"`
}

func Default() *Config {
	return &Config{
		HTTPAddr:              ":8080",
		NodeName:              "heliroute",
		CatalogFile:           "catalog.json",
		DefaultPayloadLbs:     2000,
		DefaultReserveFuelLbs: 600,
		RegistrationCacheSize: 256,
		RegistrationCacheTTL:  time.Hour,
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 32,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "heliroute",
			SSLMode: "disable",
		},
		Webhooks: WebhookConfig{
			NoGo:     true,
			Repairs:  false,
			Cooldown: 5 * time.Minute,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A .env file in the working directory is read first if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := cfg.merge(data); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (cfg *Config) merge(data []byte) error {
	var fileCfg struct {
		HTTPAddr              string  `json:"http_addr"`
		NodeName              string  `json:"node_name"`
		CatalogFile           string  `json:"catalog_file"`
		DefaultPayloadLbs     float64 `json:"default_payload_lbs"`
		DefaultReserveFuelLbs float64 `json:"default_reserve_fuel_lbs"`
		RegistrationCacheSize int     `json:"registration_cache_size"`
		RegistrationCacheTTL  string  `json:"registration_cache_ttl"`
		Log                   struct {
			Level     string `json:"level"`
			File      string `json:"file"`
			MaxSizeMB int    `json:"max_size_mb"`
		} `json:"log"`
		Database struct {
			Host     string `json:"host"`
			Port     int    `json:"port"`
			User     string `json:"user"`
			Password string `json:"password"`
			DBName   string `json:"dbname"`
			SSLMode  string `json:"sslmode"`
		} `json:"database"`
		Webhooks struct {
			DiscordURL string `json:"discord_url"`
			NoGo       *bool  `json:"no_go"`
			Repairs    *bool  `json:"repairs"`
			Cooldown   string `json:"cooldown"`
		} `json:"webhooks"`
	}

	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}

	if fileCfg.HTTPAddr != "" {
		cfg.HTTPAddr = fileCfg.HTTPAddr
	}
	if fileCfg.NodeName != "" {
		cfg.NodeName = fileCfg.NodeName
	}
	if fileCfg.CatalogFile != "" {
		cfg.CatalogFile = fileCfg.CatalogFile
	}
	if fileCfg.DefaultPayloadLbs > 0 {
		cfg.DefaultPayloadLbs = fileCfg.DefaultPayloadLbs
	}
	if fileCfg.DefaultReserveFuelLbs > 0 {
		cfg.DefaultReserveFuelLbs = fileCfg.DefaultReserveFuelLbs
	}
	if fileCfg.RegistrationCacheSize > 0 {
		cfg.RegistrationCacheSize = fileCfg.RegistrationCacheSize
	}
	if fileCfg.RegistrationCacheTTL != "" {
		if d, err := time.ParseDuration(fileCfg.RegistrationCacheTTL); err == nil {
			cfg.RegistrationCacheTTL = d
		}
	}

	if fileCfg.Log.Level != "" {
		cfg.Log.Level = fileCfg.Log.Level
	}
	if fileCfg.Log.File != "" {
		cfg.Log.File = fileCfg.Log.File
	}
	if fileCfg.Log.MaxSizeMB > 0 {
		cfg.Log.MaxSizeMB = fileCfg.Log.MaxSizeMB
	}

	if fileCfg.Database.Host != "" {
		cfg.Database.Host = fileCfg.Database.Host
	}
	if fileCfg.Database.Port != 0 {
		cfg.Database.Port = fileCfg.Database.Port
	}
	if fileCfg.Database.User != "" {
		cfg.Database.User = fileCfg.Database.User
	}
	if fileCfg.Database.Password != "" {
		cfg.Database.Password = fileCfg.Database.Password
	}
	if fileCfg.Database.DBName != "" {
		cfg.Database.DBName = fileCfg.Database.DBName
	}
	if fileCfg.Database.SSLMode != "" {
		cfg.Database.SSLMode = fileCfg.Database.SSLMode
	}

	if fileCfg.Webhooks.DiscordURL != "" {
		cfg.Webhooks.DiscordURL = fileCfg.Webhooks.DiscordURL
	}
	if fileCfg.Webhooks.NoGo != nil {
		cfg.Webhooks.NoGo = *fileCfg.Webhooks.NoGo
	}
	if fileCfg.Webhooks.Repairs != nil {
		cfg.Webhooks.Repairs = *fileCfg.Webhooks.Repairs
	}
	if fileCfg.Webhooks.Cooldown != "" {
		if d, err := time.ParseDuration(fileCfg.Webhooks.Cooldown); err == nil {
			cfg.Webhooks.Cooldown = d
		}
	}

	return nil
}

// applyEnv lets secrets and deployment settings come from the environment
// instead of the config file.
func (cfg *Config) applyEnv(getenv func(string) string) {
	if v := getenv("HELIROUTE_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("HELIROUTE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := getenv("HELIROUTE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := getenv("HELIROUTE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := getenv("HELIROUTE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := getenv("HELIROUTE_DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := getenv("HELIROUTE_DISCORD_URL"); v != "" {
		cfg.Webhooks.DiscordURL = v
	}
	if v := getenv("HELIROUTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
