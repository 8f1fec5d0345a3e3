package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file and applies defaults.
func Load(configPath string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	cfg.Env = normalizeEnv(cfg.Env)
	if strings.TrimSpace(cfg.DSN) == "" {
		cfg.DSN = cfg.Database.DSNValue()
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = cfg.Redis.URLValue()
	}
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			ParseTime: true,
		},
	}
}

func normalizeEnv(env string) string {
	e := strings.ToLower(strings.TrimSpace(env))
	if e == "prod" || e == "production" {
		return "production"
	}
	return defaultEnv
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env != "production"
}

// DefaultFullConfig returns the editorial config used before an admin
// has saved one.
func DefaultFullConfig() FullConfig {
	return FullConfig{
		Site: SiteConfig{
			Title:    "RegionPress",
			Keywords: []string{},
		},
		Desk: EditorialConfig{
			RequireApproval: true,
		},
		AI: AIConfig{
			Providers:          []AIProvider{},
			KeyPool:            []AIPoolKey{},
			EnableRewrite:      false,
			DefaultStyle:       "news",
			DoubleValidation:   false,
			MaxInputLength:     20000,
			DailyRequestLimit:  200,
			MonthlyTokenBudget: 2_000_000,
		},
	}
}
