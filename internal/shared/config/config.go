package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultStorageLimitBytes is the per-user quota for registered users (1 GiB).
	DefaultStorageLimitBytes int64 = 1 << 30
	// DefaultGuestStorageLimitBytes is the quota for guest sessions (100 MiB).
	DefaultGuestStorageLimitBytes int64 = 100 << 20
	// DefaultMaxUploadBytes caps a single upload (20 MiB).
	DefaultMaxUploadBytes int64 = 20 << 20
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	ObjectStoreType   string
	LocalStoreDir     string
	PublicBaseURL     string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
	SSEKMSKeyID       string

	JWTSecret         string
	MaxUploadBytes    int64
	AllowedFileTypes  []string
	StorageLimitBytes int64
	GuestLimitBytes   int64
}

// Load reads configuration from environment variables with sensible defaults.
// The object store mode is decided here, once per process: remote when a
// bucket is configured, local otherwise. Individual requests never switch.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	bucket := getEnv("S3_BUCKET", "")
	storeType := normalizeStoreType(getEnv("OBJECT_STORE", ""), bucket)

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,

		ObjectStoreType:   storeType,
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data/uploads"),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          bucket,
		S3Prefix:          getEnv("S3_PREFIX", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		MaxUploadBytes:    getEnvInt64("MAX_FILE_SIZE", DefaultMaxUploadBytes),
		AllowedFileTypes:  splitAndTrim(getEnv("ALLOWED_FILE_TYPES", "application/pdf,image/jpeg,image/jpg,image/png,image/webp,image/gif")),
		StorageLimitBytes: getEnvInt64("STORAGE_LIMIT_BYTES", DefaultStorageLimitBytes),
		GuestLimitBytes:   getEnvInt64("GUEST_STORAGE_LIMIT_BYTES", DefaultGuestStorageLimitBytes),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		log.Printf("config env %s invalid int: %q", key, raw)
		return def
	}
	return val
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
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw, bucket string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	}
	if strings.TrimSpace(bucket) != "" {
		return "s3"
	}
	return "local"
}
