package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	JWTSecret    string
	MongoURI     string
	DBName       string
	StoreDriver  string // "mongo" or "memory"
	Environment  string
	BatchLimit   int    // max writes per committed batch chunk
	FollowUpCron string // schedule for the follow-up reminder scan
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("DB_NAME", "nextgen-crm"),
		StoreDriver:  getEnv("STORE_DRIVER", "mongo"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		BatchLimit:   getEnvInt("BATCH_LIMIT", 400),
		FollowUpCron: getEnv("FOLLOWUP_CRON", "0 9 * * *"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
