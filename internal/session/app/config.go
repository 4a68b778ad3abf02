package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string // issuer claim for access tokens

	SignKeyMaterial string // base64url JWK JSON for the Ed25519 signing key (SIGN_KEY)
	SealKeyMaterial string // base64url JWK JSON for the A256GCM seal key (ENC_KEY)

	DatabaseURL  string // postgres:// URL; empty selects SQLite
	DatabaseFile string // SQLite file path (default ./sessions.db)

	RedisAddr     string // optional; enables the shared denylist
	RedisPassword string
	RedisDB       int

	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	MaxSessionsPerSubject int

	WeChatAppID  string
	WeChatSecret string

	Env                  string // dev, staging, prod (default: dev)
	LogLevel             string // debug, info, warn, error (default: info)
	LogFormat            string // json, text (default: json)
	Port                 int    // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first if present, so development
// setups need no exported variables.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer: getEnvOrDefault("ISSUER", "choosy-api"),

		SignKeyMaterial: os.Getenv("SIGN_KEY"),
		SealKeyMaterial: os.Getenv("ENC_KEY"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "sessions.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		AccessTokenTTL:        getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 2*time.Hour),
		RefreshTokenTTL:       getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 365*24*time.Hour),
		MaxSessionsPerSubject: getEnvIntOrDefault("MAX_SESSIONS_PER_SUBJECT", 10),

		WeChatAppID:  os.Getenv("WX_APPID"),
		WeChatSecret: os.Getenv("WX_SECRET"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
