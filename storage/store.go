package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashStore — минимальный контракт hash-корзин key-value-хранилища.
// Реализации: RedisStore (продакшен) и MemoryStore (тесты, локальный запуск).
type HashStore interface {
	HSet(ctx context.Context, key, field, value string) error
	// HGet возвращает models.ErrNotFound, если корзины или поля нет.
	HGet(ctx context.Context, key, field string) (string, error)
	// HGetAll возвращает пустую карту (не nil), если корзины нет.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	HExists(ctx context.Context, key, field string) (bool, error)
	// DeleteMatching удаляет все корзины, подходящие под шаблон вида "events:abc:*".
	DeleteMatching(ctx context.Context, pattern string) error
}

// Имена общих корзин.
const (
	usersKey    = "users"
	sessionsKey = "sessions"
)

// HashEmail строит ключевой хеш учетной записи: sha256(email + secret).
// Соль секретом делает хеш стабильным, но не словарным.
func HashEmail(email, secret string) string {
	sum := sha256.Sum256([]byte(email + secret))
	return hex.EncodeToString(sum[:])
}

// bucketKey — ключ месячной корзины: {kind}:{accountHash}:{yyyy-MM}.
func bucketKey(kind, accountHash, yearMonth string) string {
	return fmt.Sprintf("%s:%s:%s", kind, accountHash, yearMonth)
}
