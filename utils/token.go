package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken создает access токен для пользователя с коротким сроком действия.
// Идентичностью вызывающего служит email учетной записи.
func GenerateAccessToken(email, name string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = email
	claims["name"] = name
	claims["exp"] = time.Now().Add(15 * time.Minute).Unix() // Access-токен действует 15 минут
	secret := os.Getenv("JWT_SECRET")
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken создает refresh токен для пользователя с более длительным сроком действия.
func GenerateRefreshToken(email string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = email
	claims["typ"] = "refresh"
	claims["exp"] = time.Now().Add(7 * 24 * time.Hour).Unix() // Refresh-токен действует 7 дней
	refreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	return token.SignedString([]byte(refreshSecret))
}

// ParseRefreshToken проверяет refresh токен и возвращает email пользователя.
func ParseRefreshToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_REFRESH_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("недействительный refresh токен")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("недействительный refresh токен")
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return "", errors.New("недействительный refresh токен")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("недействительный refresh токен")
	}
	return email, nil
}
