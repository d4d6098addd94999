package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

// Push providers
const (
	PushFCM  = "fcm"
	PushExpo = "expo"
)

type Config struct {
	ServerPort string
	APIKey     string

	StoreBackend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	FirebaseProjectID   string
	FirebaseClientEmail string
	FirebasePrivateKey  string
	FirebaseCredsFile   string
	FirebaseCredsJSON   string

	PushProvider   string
	PushRatePerSec int

	RedisURL        string
	DispatchLockTTL time.Duration
	ActivityAsync   bool
	WorkerCount     int

	CallTimeout    time.Duration
	RequestTimeout time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	LogLevel  string
	LogPretty bool

	// EnvFileLoaded is false when no .env file was found; callers log it
	// once the logger exists.
	EnvFileLoaded bool
}

var (
	ErrAPIKeyRequired       = errors.New("API_KEY is required")
	ErrUnknownStoreBackend  = errors.New("STORE_BACKEND must be firestore or postgres")
	ErrUnknownPushProvider  = errors.New("PUSH_PROVIDER must be fcm or expo")
	ErrActivityAsyncNoRedis = errors.New("ACTIVITY_ASYNC requires REDIS_URL")
)

func LoadConfig() (*Config, error) {
	envErr := godotenv.Load()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = os.Getenv("PORT")
	}
	if serverPort == "" {
		serverPort = "3000"
	}

	storeBackend := strings.ToLower(os.Getenv("STORE_BACKEND"))
	if storeBackend == "" {
		storeBackend = StoreFirestore
	}

	pushProvider := strings.ToLower(os.Getenv("PUSH_PROVIDER"))
	if pushProvider == "" {
		pushProvider = PushFCM
	}

	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "require"
	}

	pushRate, err := strconv.Atoi(os.Getenv("PUSH_RATE_PER_SEC"))
	if err != nil || pushRate < 0 {
		pushRate = 0
	}

	workerCount, err := strconv.Atoi(os.Getenv("WORKER_COUNT"))
	if err != nil || workerCount <= 0 {
		workerCount = 2
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := &Config{
		ServerPort: serverPort,
		APIKey:     os.Getenv("API_KEY"),

		StoreBackend: storeBackend,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  dbSSLMode,

		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseClientEmail: os.Getenv("FIREBASE_CLIENT_EMAIL"),
		FirebasePrivateKey:  os.Getenv("FIREBASE_PRIVATE_KEY"),
		FirebaseCredsFile:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseCredsJSON:   os.Getenv("GCP_SA_KEY"),

		PushProvider:   pushProvider,
		PushRatePerSec: pushRate,

		RedisURL:        os.Getenv("REDIS_URL"),
		DispatchLockTTL: durationEnv("DISPATCH_LOCK_TTL", 30*time.Second),
		ActivityAsync:   boolEnv("ACTIVITY_ASYNC"),
		WorkerCount:     workerCount,

		CallTimeout:    durationEnv("CALL_TIMEOUT", 10*time.Second),
		RequestTimeout: durationEnv("REQUEST_TIMEOUT", 60*time.Second),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		LogLevel:  logLevel,
		LogPretty: boolEnv("LOG_PRETTY"),

		EnvFileLoaded: envErr == nil,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrAPIKeyRequired
	}
	switch c.StoreBackend {
	case StoreFirestore, StorePostgres:
	default:
		return ErrUnknownStoreBackend
	}
	switch c.PushProvider {
	case PushFCM, PushExpo:
	default:
		return ErrUnknownPushProvider
	}
	if c.ActivityAsync && c.RedisURL == "" {
		return ErrActivityAsyncNoRedis
	}
	return nil
}

// ObjectStorageEnabled reports whether every R2 setting is present.
func (c *Config) ObjectStorageEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

// durationEnv accepts Go durations ("15s") or plain seconds ("15").
func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
