package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Storage and broker backend selectors.
const (
	StorageBackendMinio = "minio"
	StorageBackendGCS   = "gcs"

	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
	MQBackendDisabled = "disabled"
)

// Config is the process-wide configuration. It is loaded once at
// startup and passed into each component; nothing reads the
// environment after LoadConfig returns.
type Config struct {
	ServerPort int

	// PublicBaseURL is the externally visible base URL of this server,
	// used to build image URLs stored on posts.
	PublicBaseURL string

	// FrontendOrigin is the origin allowed by CORS, with credentials.
	FrontendOrigin string

	// JWTSecret signs identity tokens. Required.
	JWTSecret string

	LogLevel string

	Database DatabaseConfig
	Storage  StorageConfig
	MQ       MQConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// StorageConfig selects and configures the image storage backend.
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// MQConfig selects and configures the activity event broker.
type MQConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	serverPort := getEnvInt("SERVER_PORT", 8000)

	return Config{
		ServerPort:     serverPort,
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", serverPort)),
		FrontendOrigin: getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bloghub"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "bloghub_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", StorageBackendMinio),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				Bucket:    getEnv("MINIO_BUCKET", "bloghub-images"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				ProjectID:       os.Getenv("GCS_PROJECT_ID"),
				Bucket:          os.Getenv("GCS_BUCKET"),
				CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
			},
		},
		MQ: MQConfig{
			Backend: getEnv("MQ_BACKEND", MQBackendDisabled),
			RabbitMQ: RabbitMQConfig{
				URL:           os.Getenv("RABBITMQ_URL"),
				QueueDurable:  getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				PrefetchCount: getEnvInt("RABBITMQ_PREFETCH", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          os.Getenv("PUBSUB_PROJECT_ID"),
				CredentialsFile:    os.Getenv("PUBSUB_CREDENTIALS_FILE"),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return defaultValue
}
