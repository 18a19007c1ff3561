package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/niccoates/dail/mail"
	"github.com/niccoates/dail/models"
	"github.com/niccoates/dail/utils"
)

/* ---------- Структуры для JSON (Auth) ----------- */

// CredentialsInput — тело запросов регистрации и входа
type CredentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const bcryptCost = 10

// Единое сообщение для всех причин отказа во входе:
// не раскрываем, существует ли учетная запись.
const invalidCredentials = "Неверный email или пароль"

const refreshCookie = "refresh_token"

/* ---------- Handlers для Auth ------------------ */

// Register создает новую учетную запись
func Register(c *fiber.Ctx) error {
	var input CredentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невозможно разобрать JSON"})
	}
	if input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Не указаны email или пароль"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	user := models.User{
		Email:     input.Email,
		Password:  string(hash),
		Name:      models.DefaultName(input.Email),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := Users.Create(c.Context(), user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Аккаунт с таким email уже существует"})
		}
		log.Printf("регистрация: ошибка хранилища: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	// Письмо — не часть контракта регистрации: отправляем в фоне, сбой только логируем.
	if mail.Enabled() {
		go func(email, name string) {
			if err := mail.NewMailService().SendWelcomeMail(email, name); err != nil {
				log.Printf("регистрация: не удалось отправить письмо на %s: %v", email, err)
			}
		}(user.Email, user.Name)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"email":   user.Email,
	})
}

// Login проверяет учетные данные и выдает пару токенов
func Login(c *fiber.Ctx) error {
	var input CredentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невозможно разобрать JSON"})
	}

	user, err := Users.Get(c.Context(), input.Email)
	if err != nil {
		// Отсутствие записи, сбой декодирования и прочее — один и тот же ответ
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": invalidCredentials})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": invalidCredentials})
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
		log.Printf("вход: не удалось сохранить сессию: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}

	setRefreshCookie(c, refresh)

	return c.JSON(fiber.Map{
		"access_token": access,
		"user":         user.Public(),
	})
}

// Refresh выдает новый access токен по действующему refresh токену
func Refresh(c *fiber.Ctx) error {
	tokenStr := c.Cookies(refreshCookie)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Требуется авторизация"})
	}

	email, err := utils.ParseRefreshToken(tokenStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Недействительный токен"})
	}

	// Токен должен совпадать с сохраненным: logout его отзывает
	stored, err := Users.GetSession(c.Context(), email)
	if err != nil || stored != tokenStr {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Недействительный токен"})
	}

	user, err := Users.Get(c.Context(), email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Недействительный токен"})
	}

	access, err := utils.GenerateAccessToken(user.Email, user.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка выдачи токена"})
	}

	return c.JSON(fiber.Map{"access_token": access})
}

// Logout отзывает refresh токен и чистит cookie
func Logout(c *fiber.Ctx) error {
	if tokenStr := c.Cookies(refreshCookie); tokenStr != "" {
		if email, err := utils.ParseRefreshToken(tokenStr); err == nil {
			if err := Users.DeleteSession(c.Context(), email); err != nil {
				log.Printf("выход: не удалось удалить сессию: %v", err)
			}
		}
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

func setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
}
