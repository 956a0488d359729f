// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ストアドライバー
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string
	StoreDriver string
	DBMaxConns  int

	// Session
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitLogin   int

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string
}

// Load は環境変数と設定ファイルからConfigを読み込む。
// configFileが空の場合は環境変数CONFIG_FILEを参照し、それも空なら環境変数のみを使用する。
// 同じキーは環境変数が設定ファイルより優先される。
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		DatabaseURL:            v.GetString("database_url"),
		StoreDriver:            strings.ToLower(v.GetString("store_driver")),
		DBMaxConns:             v.GetInt("db_max_conns"),
		SessionMaxAge:          v.GetInt("session_max_age"),
		SessionCleanupInterval: v.GetDuration("session_cleanup_interval"),
		RateLimitGeneral:       v.GetInt("rate_limit_general"),
		RateLimitLogin:         v.GetInt("rate_limit_login"),
		LogLevel:               v.GetString("log_level"),
		ServerPort:             v.GetString("server_port"),
		BaseURL:                v.GetString("base_url"),
		CookieDomain:           v.GetString("cookie_domain"),
	}
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store_driver", StoreDriverPostgres)
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("session_max_age", 86400)
	v.SetDefault("session_cleanup_interval", time.Hour)
	v.SetDefault("rate_limit_general", 120)
	v.SetDefault("rate_limit_login", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("server_port", "8080")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("cookie_domain", "")
	v.SetDefault("database_url", "")
}

// validate は必須項目と値の範囲を検証する。
func (c *Config) validate() error {
	var problems []string

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver))
	}

	positive := map[string]int{
		"DB_MAX_CONNS":       c.DBMaxConns,
		"SESSION_MAX_AGE":    c.SessionMaxAge,
		"RATE_LIMIT_GENERAL": c.RateLimitGeneral,
		"RATE_LIMIT_LOGIN":   c.RateLimitLogin,
	}
	for _, key := range []string{"DB_MAX_CONNS", "SESSION_MAX_AGE", "RATE_LIMIT_GENERAL", "RATE_LIMIT_LOGIN"} {
		if positive[key] <= 0 {
			problems = append(problems, key+" must be a positive integer")
		}
	}
	if c.SessionCleanupInterval <= 0 {
		problems = append(problems, "SESSION_CLEANUP_INTERVAL must be a positive duration")
	}
	if c.ServerPort == "" {
		problems = append(problems, "SERVER_PORT is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UsesMemoryStore はメモリストアを使用する設定かどうかを返す。
func (c *Config) UsesMemoryStore() bool {
	return c.StoreDriver == StoreDriverMemory
}
