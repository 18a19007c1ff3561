package config

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Config — параметры приложения, читаются из окружения один раз при старте.
type Config struct {
	Port             string
	AppSecret        string // соль для хеширования email в ключах хранилища
	JWTSecret        string
	JWTRefreshSecret string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	UploadDir        string
	ClientURL        string
}

var (
	App *Config

	// Redis — общий клиент хранилища (аналог глобального подключения к БД).
	Redis *redis.Client
)

// Load читает конфигурацию из переменных окружения.
// Секреты обязательны: без них нельзя ни подписывать токены, ни строить ключи.
func Load() error {
	cfg := &Config{
		Port:             getEnv("PORT", "3001"),
		AppSecret:        os.Getenv("APP_SECRET"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		ClientURL:        os.Getenv("CLIENT_URL"),
	}

	if cfg.AppSecret == "" {
		return fmt.Errorf("не задан APP_SECRET")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("не задан JWT_SECRET")
	}
	if cfg.JWTRefreshSecret == "" {
		return fmt.Errorf("не задан JWT_REFRESH_SECRET")
	}

	App = cfg
	return nil
}

// ConnectRedis открывает подключение к Redis и проверяет его пингом.
func ConnectRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     App.RedisAddr,
		Password: App.RedisPassword,
		DB:       App.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ошибка подключения к Redis (%s): %w", App.RedisAddr, err)
	}
	Redis = client
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
