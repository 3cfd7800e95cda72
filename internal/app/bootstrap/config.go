package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID             string
	Version               string
	HTTPPort              int
	CatalogPath           string
	ProbeTimeout          time.Duration
	CacheTTL              time.Duration
	MonitorInterval       time.Duration
	AlertSuccessThreshold float64
	AutoStart             []string
	JWTSecret             string
	RedisURL              string
	KafkaBrokers          []string
	KafkaTopic            string
	Credentials           map[string]map[string]string
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		Version  string `yaml:"version"`
	} `yaml:"service"`
	Monitoring struct {
		CatalogPath           string   `yaml:"catalog_path"`
		ProbeTimeoutSeconds   int      `yaml:"probe_timeout_seconds"`
		CacheTTLSeconds       int      `yaml:"cache_ttl_seconds"`
		IntervalSeconds       int      `yaml:"interval_seconds"`
		AlertSuccessThreshold float64  `yaml:"alert_success_threshold"`
		AutoStart             []string `yaml:"auto_start"`
	} `yaml:"monitoring"`
	Events struct {
		KafkaBrokers []string `yaml:"kafka_brokers"`
		KafkaTopic   string   `yaml:"kafka_topic"`
	} `yaml:"events"`
	Credentials map[string]map[string]string `yaml:"credentials"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "M74-Integration-Health-Service",
		Version:               "0.1.0",
		HTTPPort:              8080,
		ProbeTimeout:          10 * time.Second,
		CacheTTL:              30 * time.Second,
		MonitorInterval:       60 * time.Second,
		AlertSuccessThreshold: 0.9,
		KafkaTopic:            "integration.health.events",
	}
	if raw, err := os.ReadFile(path); err == nil {
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.Version != "" {
			cfg.Version = f.Service.Version
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Monitoring.CatalogPath != "" {
			cfg.CatalogPath = f.Monitoring.CatalogPath
		}
		if f.Monitoring.ProbeTimeoutSeconds > 0 {
			cfg.ProbeTimeout = time.Duration(f.Monitoring.ProbeTimeoutSeconds) * time.Second
		}
		if f.Monitoring.CacheTTLSeconds > 0 {
			cfg.CacheTTL = time.Duration(f.Monitoring.CacheTTLSeconds) * time.Second
		}
		if f.Monitoring.IntervalSeconds > 0 {
			cfg.MonitorInterval = time.Duration(f.Monitoring.IntervalSeconds) * time.Second
		}
		if f.Monitoring.AlertSuccessThreshold > 0 {
			cfg.AlertSuccessThreshold = f.Monitoring.AlertSuccessThreshold
		}
		cfg.AutoStart = f.Monitoring.AutoStart
		cfg.KafkaBrokers = f.Events.KafkaBrokers
		if f.Events.KafkaTopic != "" {
			cfg.KafkaTopic = f.Events.KafkaTopic
		}
		cfg.Credentials = f.Credentials
	}
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.Version = envString("SERVICE_VERSION", cfg.Version)
	cfg.CatalogPath = envString("CATALOG_PATH", cfg.CatalogPath)
	cfg.ProbeTimeout = time.Duration(envInt("PROBE_TIMEOUT_SECONDS", int(cfg.ProbeTimeout.Seconds()))) * time.Second
	cfg.CacheTTL = time.Duration(envInt("CACHE_TTL_SECONDS", int(cfg.CacheTTL.Seconds()))) * time.Second
	cfg.MonitorInterval = time.Duration(envInt("MONITOR_INTERVAL_SECONDS", int(cfg.MonitorInterval.Seconds()))) * time.Second
	cfg.JWTSecret = envString("JWT_SECRET", cfg.JWTSecret)
	cfg.RedisURL = envString("REDIS_URL", cfg.RedisURL)
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		cfg.KafkaBrokers = splitList(raw)
	}
	if raw := os.Getenv("AUTO_START"); raw != "" {
		cfg.AutoStart = splitList(raw)
	}
	cfg.KafkaTopic = envString("KAFKA_TOPIC", cfg.KafkaTopic)
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envString(name, fallback string) string {
	if raw := os.Getenv(name); raw != "" {
		return raw
	}
	return fallback
}
