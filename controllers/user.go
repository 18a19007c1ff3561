package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/niccoates/dail/models"
	"github.com/niccoates/dail/uploads"
	"github.com/niccoates/dail/utils"
)

/* ---------- Структуры для JSON (User) ----------- */

// ProfileInput — обновление профиля
type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

/* ---------- Handlers для User ------------------ */

// UpdateProfile меняет имя и email учетной записи.
// Смена email — это перенос записи под новый ключ: сначала вставка нового,
// затем удаление старого. Старая сессия при этом отзывается, выдается новая пара токенов.
func UpdateProfile(c *fiber.Ctx) error {
	email, ok := claimsEmail(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Требуется авторизация"})
	}

	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невозможно разобрать JSON"})
	}
	if input.Name == "" || input.Email == "" || !strings.Contains(input.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нужны валидные name и email"})
	}

	user, err := Users.Get(c.Context(), email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("профиль: ошибка чтения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	user.Name = input.Name

	if input.Email == email {
		if err := Users.Put(c.Context(), user); err != nil {
			log.Printf("профиль: ошибка записи пользователя: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось обновить профиль"})
		}
		return c.JSON(fiber.Map{"success": true})
	}

	// Перенос под новый email
	user.Email = input.Email
	if err := Users.Rename(c.Context(), email, user); err != nil {
		log.Printf("профиль: ошибка переноса записи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось обновить профиль"})
	}

	// Старые токены выданы на прежний email — отзываем сессию и выдаем новую пару
	if err := Users.DeleteSession(c.Context(), email); err != nil {
		log.Printf("профиль: не удалось удалить старую сессию: %v", err)
	}
	access, err := utils.GenerateAccessToken(user.Email, user.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка выдачи токена"})
	}
	refresh, err := utils.GenerateRefreshToken(user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка выдачи токена"})
	}
	if err := Users.PutSession(c.Context(), user.Email, refresh); err != nil {
		log.Printf("профиль: не удалось сохранить сессию: %v", err)
	}
	setRefreshCookie(c, refresh)

	return c.JSON(fiber.Map{
		"success":      true,
		"access_token": access,
	})
}

// DeleteAccount удаляет учетную запись вместе со всеми календарными
// корзинами и сессией, затем чистит refresh cookie.
func DeleteAccount(c *fiber.Ctx) error {
	email, ok := claimsEmail(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Требуется авторизация"})
	}

	if _, err := Users.Get(c.Context(), email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("удаление: ошибка чтения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	if err := Users.Delete(c.Context(), email); err != nil {
		log.Printf("удаление: ошибка удаления данных: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось удалить учетную запись"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})

	return c.JSON(fiber.Map{"success": true})
}

// UploadPhoto принимает аватар (multipart-поле photo) и сохраняет ссылку в профиле.
// Допускаются JPEG/PNG/GIF размером до 2 МБ.
func UploadPhoto(c *fiber.Ctx) error {
	email, ok := claimsEmail(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Требуется авторизация"})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Файл не загружен"})
	}

	contentType := file.Header.Get("Content-Type")
	if _, ok := uploads.AllowedType(contentType); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый тип файла. Разрешены JPG, PNG и GIF"})
	}
	if file.Size > uploads.MaxAvatarSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Файл слишком большой. Максимум 2 МБ"})
	}

	user, err := Users.Get(c.Context(), email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("фото: ошибка чтения пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	url, err := Avatars.Save(file, contentType)
	if err != nil {
		log.Printf("фото: ошибка сохранения файла: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось загрузить фото"})
	}

	user.Image = url
	if err := Users.Put(c.Context(), user); err != nil {
		log.Printf("фото: ошибка записи пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось загрузить фото"})
	}

	return c.JSON(fiber.Map{"image": url})
}
