package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all costnav server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	ListenAddr    string `json:"listen_addr"`
	DBPath        string `json:"db_path"`
	LogLevel      string `json:"log_level"`
	AgentEndpoint string `json:"agent_endpoint"`
	AgentAPIKey   string `json:"agent_api_key"`
	AgentID       string `json:"agent_id"`
	RetentionDays int    `json:"retention_days"`
	RetentionCron string `json:"retention_cron"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:    ":4200",
		DBPath:        filepath.Join(costnavDir(), "costnav.db"),
		LogLevel:      "info",
		AgentID:       "cost-estimator",
		RetentionDays: 90,
		RetentionCron: "0 3 * * *",
	}
}

func costnavDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".costnav"
	}
	return filepath.Join(home, ".costnav")
}

func settingsPath() string {
	return filepath.Join(costnavDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("COSTNAV_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("COSTNAV_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("COSTNAV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("COSTNAV_AGENT_ENDPOINT"); v != "" {
		cfg.AgentEndpoint = v
	}
	if v := os.Getenv("COSTNAV_AGENT_API_KEY"); v != "" {
		cfg.AgentAPIKey = v
	}
	if v := os.Getenv("COSTNAV_AGENT_ID"); v != "" {
		cfg.AgentID = v
	}
	if v := os.Getenv("COSTNAV_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetentionDays = n
		}
	}
	if v := os.Getenv("COSTNAV_RETENTION_CRON"); v != "" {
		cfg.RetentionCron = v
	}

	return cfg
}
