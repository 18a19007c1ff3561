package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/niccoates/dail/storage"
	"github.com/niccoates/dail/uploads"
)

// Общие зависимости контроллеров, задаются один раз при старте.
var (
	Users    *storage.UserStore
	Calendar *storage.CalendarStore
	Avatars  uploads.Uploader
)

// Setup подключает контроллеры к хранилищу и загрузчику аватаров.
func Setup(store storage.HashStore, secret string, avatars uploads.Uploader) {
	Users = storage.NewUserStore(store, secret)
	Calendar = storage.NewCalendarStore(store, secret)
	Avatars = avatars
}

// claimsEmail извлекает email вызывающего из JWT claims запроса.
func claimsEmail(c *fiber.Ctx) (string, bool) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return "", false
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
