package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env            string
	AppSecret      string
	DatabaseURL    string
	JWTExpiry      time.Duration
	Port           string
	SiteName       string
	TMDBAPIKey     string
	TMDBBaseURL    string
	EmbeddingHost  string
	EmbeddingModel string
	EmbeddingDim   int
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))
	embeddingDim, _ := strconv.Atoi(getEnv("EMBEDDING_DIM", "384"))

	// 优先使用完整的 DATABASE_URL，否则按各项拼接
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbUser := getEnv("DB_USER", "postgres")
		dbPass := getEnv("DB_PASSWORD", "postgres")
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbName := getEnv("DB_NAME", "cinematch")
		dbSSL := getEnv("DB_SSLMODE", "disable")

		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)
	}

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:            getEnv("APP_ENV", "development"),
		AppSecret:      appSecret,
		DatabaseURL:    dbURL,
		JWTExpiry:      time.Duration(expiryHours) * time.Hour,
		Port:           getEnv("PORT", "8000"),
		SiteName:       getEnv("SITE_NAME", "CineMatch"),
		TMDBAPIKey:     getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:    getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		EmbeddingHost:  getEnv("EMBEDDING_HOST", "http://localhost:11434"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "all-minilm"),
		EmbeddingDim:   embeddingDim,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
