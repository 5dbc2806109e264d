package config

import (
	"fmt"
	"os"
)

// Config holds the application configuration read from the environment.
// The upload directory is injected here and nowhere else; no component
// derives storage paths from the working directory at call time.
type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	RedisAddr     string
	RedisPassword string
	UploadDir     string
}

func Load() (*Config, error) {
	mongoURI := os.Getenv("MONGOURI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGOURI not set in environment")
	}
	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      mongoURI,
		DBName:        getEnv("DB", "property_management"),
		RedisAddr:     getEnv("REDIS_ADD", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASS"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
