package config

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// NATS Configuration
	NatsURL          string
	ClientID         string
	RequestSubject   string
	ResponsePrefix   string
	DiscoverySubject string

	// Reporter Configuration
	Projection      string
	ResponseTimeout time.Duration

	// Responder Queue Configuration
	Stream      string
	Durable     string
	MaxMsgs     int
	MaxAge      time.Duration
	AckWait     time.Duration
	Concurrency int
	FixturePath string

	// Database Configuration
	DBPath string

	LogLevel string
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			slog.Warn("Could not load env file", "file", envFile, "error", err)
		} else {
			slog.Info("Environment loaded", "file", envFile)
		}
	}

	return &Config{
		NatsURL:          getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		ClientID:         getEnv("CLIENT_ID", "riskreport"),
		RequestSubject:   getEnv("REQUEST_SUBJECT", "risk.table.request"),
		ResponsePrefix:   getEnv("RESPONSE_PREFIX", "risk.table.response"),
		DiscoverySubject: getEnv("DISCOVERY_SUBJECT", "risk.projections.discovery"),
		Projection:       getEnv("PROJECTION", "Exchange/ModuleKey/Symbol"),
		ResponseTimeout:  getEnvDuration("RESPONSE_TIMEOUT", "5m"),
		Stream:           getEnv("STREAM_NAME", "RISK"),
		Durable:          getEnv("QUEUE_DURABLE", "risk-wq"),
		MaxMsgs:          getEnvInt("QUEUE_MAX_MSGS", 2000),
		MaxAge:           getEnvDuration("QUEUE_MAX_AGE", "30s"),
		AckWait:          getEnvDuration("ACK_WAIT", "30s"),
		Concurrency:      getEnvInt("WORKER_CONCURRENCY", 2),
		FixturePath:      getEnv("FIXTURE_PATH", "data/risk-table.json"),
		DBPath:           getEnv("DB_PATH", "data/riskreport.sqlite"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadDotEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key, defaultVal string) time.Duration {
	val := getEnv(key, defaultVal)
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultVal)
	return d
}
