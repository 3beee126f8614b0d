package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Redis    RedisConfig    `json:"redis"`
	Platform PlatformConfig `json:"platform"`
	Monitor  MonitorConfig  `json:"monitor"`
}

type ServerConfig struct {
	BindAddr string `json:"bindAddr"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LoggingConfig struct {
	Level string `json:"level"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// PlatformConfig points at the Printyx platform API. TenantID is opaque here;
// resolving it belongs to the platform's session layer.
type PlatformConfig struct {
	BaseURL  string `json:"baseUrl"`
	TenantID string `json:"tenantId"`
	Timeout  string `json:"timeout"` // e.g. "10s"
}

type MonitorConfig struct {
	AlertInterval  string `json:"alertInterval"`  // e.g. "60s"
	BreachInterval string `json:"breachInterval"` // e.g. "30s"
	KPIInterval    string `json:"kpiInterval"`    // e.g. "60s"
	ToastChanSize  int    `json:"toastChanSize"`
	ProfilesFile   string `json:"profilesFile"`
	GateHideAfter  string `json:"gateHideAfter"` // success display window, e.g. "3s"
}

func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file")
	flag.Parse()

	cfg := &Config{
		Server: ServerConfig{
			BindAddr: getEnv("SERVER_BIND_ADDR", "0.0.0.0:8090"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "printyx_monitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Platform: PlatformConfig{
			BaseURL:  getEnv("PLATFORM_BASE_URL", "http://localhost:5000"),
			TenantID: getEnv("PLATFORM_TENANT_ID", ""),
			Timeout:  getEnv("PLATFORM_TIMEOUT", "10s"),
		},
		Monitor: MonitorConfig{
			AlertInterval:  getEnv("MONITOR_ALERT_INTERVAL", "60s"),
			BreachInterval: getEnv("MONITOR_BREACH_INTERVAL", "30s"),
			KPIInterval:    getEnv("MONITOR_KPI_INTERVAL", "60s"),
			ToastChanSize:  getEnvInt("MONITOR_TOAST_CHAN_SIZE", 256),
			ProfilesFile:   getEnv("MONITOR_PROFILES_FILE", ""),
			GateHideAfter:  getEnv("GATE_HIDE_AFTER", "3s"),
		},
	}

	if *configFile != "" {
		if err := loadFromFile(cfg, *configFile); err != nil {
			log.Err(err)
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:8090"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Platform.BaseURL == "" {
		cfg.Platform.BaseURL = "http://localhost:5000"
	}
	if cfg.Platform.Timeout == "" {
		cfg.Platform.Timeout = "10s"
	}
	if cfg.Monitor.AlertInterval == "" {
		cfg.Monitor.AlertInterval = "60s"
	}
	if cfg.Monitor.BreachInterval == "" {
		cfg.Monitor.BreachInterval = "30s"
	}
	if cfg.Monitor.KPIInterval == "" {
		cfg.Monitor.KPIInterval = "60s"
	}
	if cfg.Monitor.ToastChanSize == 0 {
		cfg.Monitor.ToastChanSize = 256
	}
	if cfg.Monitor.GateHideAfter == "" {
		cfg.Monitor.GateHideAfter = "3s"
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
