package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"housy-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string

	StorageProvider     string
	AWSRegion           string
	S3Bucket            string
	S3Prefix            string
	S3PublicBaseURL     string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool
	LocalStoreDir       string
	LocalPublicBaseURL  string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	JWTSecret    string
	JWTExpiresIn time.Duration

	AIServiceURL   string
	RedisAddr      string
	EventsQueueURL string

	WorkerConcurrency     int
	WorkerShutdownTimeout time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := v.GetString("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	expiresIn := v.GetDuration("JWT_EXPIRES_IN")
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}

	return Config{
		Port:                v.GetString("PORT"),
		Env:                 env,
		LogLevel:            v.GetString("LOG_LEVEL"),
		CORSAllowOrigin:     splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:         dbURL,
		StorageProvider:     v.GetString("STORAGE_PROVIDER"),
		AWSRegion:           v.GetString("AWS_REGION"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		S3Prefix:            v.GetString("S3_PREFIX"),
		S3PublicBaseURL:     v.GetString("S3_PUBLIC_BASE_URL"),
		MinioEndpoint:       v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:      v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:      v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:         v.GetString("MINIO_BUCKET"),
		MinioUseSSL:         v.GetBool("MINIO_USE_SSL"),
		LocalStoreDir:       v.GetString("LOCAL_STORE_DIR"),
		LocalPublicBaseURL:  v.GetString("LOCAL_PUBLIC_BASE_URL"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTExpiresIn:        expiresIn,
		AIServiceURL:        v.GetString("AI_SERVICE_URL"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		EventsQueueURL:      v.GetString("EVENTS_SQS_QUEUE_URL"),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   v.GetString("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:       v.GetString("UI_REDIRECT_URL"),

		WorkerConcurrency:     v.GetInt("WORKER_CONCURRENCY"),
		WorkerShutdownTimeout: v.GetDuration("WORKER_SHUTDOWN_TIMEOUT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("STORAGE_PROVIDER", "local")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "photos")
	v.SetDefault("MINIO_BUCKET", "housy-photos")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("LOCAL_PUBLIC_BASE_URL", "http://localhost:8080/files")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("AI_SERVICE_URL", "http://localhost:8000/enrichPropertyParams")
	v.SetDefault("WORKER_CONCURRENCY", 4)
	v.SetDefault("WORKER_SHUTDOWN_TIMEOUT", "30s")
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// IsDevLike reports whether env permits in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
