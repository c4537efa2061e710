package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort          string
	Environment         string
	FirebaseProject     string
	FirebaseApiKey      string
	FirebaseDatabaseURL string
	JWTSecret           string
	JWTExpiry           int64
	AdminSenderID       string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		FirebaseProject:     getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:      getEnv("FIREBASE_API_KEY", ""),
		FirebaseDatabaseURL: getEnv("FIREBASE_DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:           getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		AdminSenderID:       getEnv("ADMIN_SENDER_ID", "admin"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
