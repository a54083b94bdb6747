package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Schedule ScheduleConfig
	External ExternalAPIConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DataConfig struct {
	// Dir is the base directory for all persisted state.
	Dir string
	// ProgressFile holds sub-task progress records, updated by running jobs.
	ProgressFile string
	// SettingsFile is the system settings document.
	SettingsFile string
	// WorkDir is the working directory jobs execute in.
	WorkDir string
}

type ScheduleConfig struct {
	// CrontabFile is where the rendered schedule is written for crond.
	CrontabFile string
	// Command is the runner invocation each crontab line triggers.
	Command string
	// LogFile receives stdout/stderr of scheduled runs.
	LogFile string
}

type ExternalAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout int
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
		},
		Data: DataConfig{
			Dir:          dataDir,
			ProgressFile: getEnv("PROGRESS_FILE", filepath.Join(dataDir, "progress.json")),
			SettingsFile: getEnv("SETTINGS_FILE", filepath.Join(dataDir, "settings.json")),
			WorkDir:      getEnv("JOB_WORK_DIR", "."),
		},
		Schedule: ScheduleConfig{
			CrontabFile: getEnv("CRONTAB_FILE", filepath.Join(dataDir, "crontab.txt")),
			Command:     getEnv("CRON_COMMAND", "/usr/local/bin/marketpulse-cron -job complete -once"),
			LogFile:     getEnv("CRON_LOG_FILE", "/var/log/marketpulse/cron.log"),
		},
		External: ExternalAPIConfig{
			BaseURL: getEnv("EXTERNAL_API_URL", ""),
			APIKey:  getEnv("EXTERNAL_API_KEY", ""),
			Timeout: getEnvAsInt("EXTERNAL_API_TIMEOUT", 30),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
