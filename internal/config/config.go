// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして各コンポーネントに渡す。
// ビジネスロジック内から環境変数を直接参照してはならない。
type Config struct {
	// Database
	DatabaseURL string

	// Admin
	AdminUsername string
	AdminPassword string

	// Session
	SessionMaxAge time.Duration

	// Ingestion
	DailyJobLimit   int
	DuplicateWindow time.Duration

	// Export
	ExportDir string

	// Rate Limit（公開APIのIPごとのリクエスト制限、req/min）
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は.envファイルと環境変数からConfigを読み込む。
// .envが存在しない場合は環境変数のみを使用する。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envはあれば読み込む。本番では環境変数を直接設定する想定。
	_ = godotenv.Load()

	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AdminUsername = os.Getenv("ADMIN_USERNAME")
	if cfg.AdminUsername == "" {
		missing = append(missing, "ADMIN_USERNAME")
	}

	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", 24*time.Hour)
	cfg.DailyJobLimit = getEnvInt("DAILY_JOB_LIMIT", 50)
	cfg.DuplicateWindow = getEnvDuration("DUPLICATE_WINDOW", 7*24*time.Hour)
	cfg.ExportDir = getEnvString("EXPORT_DIR", "exports")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.ServerPort = getEnvString("SERVER_PORT", "5001")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
