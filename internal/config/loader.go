package config

import (
	"fmt"
	"time"

	"github.com/auditflow/auditflow/internal/db"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	AI       AIConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// AIConfig holds the classification service settings.
type AIConfig struct {
	Enabled       bool
	BaseURL       string
	BatchTimeout  time.Duration
	RowTimeout    time.Duration
	MaxConcurrent int
}

// PipelineConfig holds normalization settings.
type PipelineConfig struct {
	// Statuses is the accepted status vocabulary; values outside it are
	// coerced to open.
	Statuses []string
}

// Default returns the configuration used when no config file or env
// overrides are present.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: db.DefaultConfig(),
		AI: AIConfig{
			Enabled:       true,
			BaseURL:       "http://localhost:5000",
			BatchTimeout:  30 * time.Second,
			RowTimeout:    10 * time.Second,
			MaxConcurrent: 8,
		},
		Pipeline: PipelineConfig{
			Statuses: []string{"open", "in_progress", "resolved", "closed"},
		},
	}
}

// Load reads config.yaml from configPath and applies env overrides with
// the AUDIT prefix (AUDIT_SERVER_ADDR, AUDIT_AI_BASE_URL, ...).
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("AUDIT")

	v.BindEnv("server.addr")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("ai.enabled")
	v.BindEnv("ai.base_url")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("ai.enabled") {
		cfg.AI.Enabled = v.GetBool("ai.enabled")
	}
	if v.IsSet("ai.base_url") {
		cfg.AI.BaseURL = v.GetString("ai.base_url")
	}
	if v.IsSet("ai.batch_timeout") {
		cfg.AI.BatchTimeout = v.GetDuration("ai.batch_timeout")
	}
	if v.IsSet("ai.row_timeout") {
		cfg.AI.RowTimeout = v.GetDuration("ai.row_timeout")
	}
	if v.IsSet("ai.max_concurrent") {
		cfg.AI.MaxConcurrent = v.GetInt("ai.max_concurrent")
	}
	if v.IsSet("pipeline.statuses") {
		cfg.Pipeline.Statuses = v.GetStringSlice("pipeline.statuses")
	}

	return cfg, nil
}
