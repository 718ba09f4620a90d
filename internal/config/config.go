package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	Storage StorageConfig
	Session SessionConfig
	Server  ServerConfig
	Worker  WorkerConfig
	Link    LinkConfig
}

type DBConfig struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite only
}

type StorageConfig struct {
	Driver     string // "local" or "minio"
	FolderPath string
	MinIO      MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type ServerConfig struct {
	Port string
}

type WorkerConfig struct {
	PollInterval time.Duration
}

type LinkConfig struct {
	Secret string
	TTL    time.Duration
}

func Load() *Config {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "filebox"),
			Password: getEnv("DB_PASSWORD", "filebox_secret"),
			Name:     getEnv("DB_NAME", "filebox"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "filebox.db"),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "local"),
			FolderPath: getEnv("FOLDER_PATH", "/tmp/filebox"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", "filebox"),
				SecretKey: getEnv("MINIO_SECRET_KEY", "filebox_secret"),
				Bucket:    getEnv("MINIO_BUCKET", "filebox"),
				UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			},
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5000"),
		},
		Worker: WorkerConfig{
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", 2*time.Second),
		},
		Link: LinkConfig{
			Secret: getEnv("LINK_SECRET", "change-me-in-production"),
			TTL:    getEnvAsDuration("LINK_TTL", 15*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
