package controllers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/niccoates/dail/models"
)

/* ---------- Структуры для JSON (Calendar) ----------- */

// PostDayInput — запись за день: тип определяет формат поля data
type PostDayInput struct {
	Date string          `json:"date"` // yyyy-MM-dd
	Type string          `json:"type"` // event | label | birthday
	Data json.RawMessage `json:"data"`
}

/* ---------- Handlers для Calendar ------------------ */

// GetMonth отдает все записи месяца: события, метки и дни рождения.
// Карты в ответе никогда не null — минимум {}.
func GetMonth(c *fiber.Ctx) error {
	email, ok := claimsEmail(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Требуется авторизация"})
	}

	year := c.QueryInt("year", 0)
	month := c.QueryInt("month", 0)
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нужны валидные year и month"})
	}
	yearMonth := monthKey(year, month)

	events, err := Calendar.Events(c.Context(), email, yearMonth)
	if err != nil {
		log.Printf("календарь: ошибка чтения событий %s: %v", yearMonth, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось загрузить данные"})
	}
	labels, err := Calendar.Labels(c.Context(), email, yearMonth)
	if err != nil {
		log.Printf("календарь: ошибка чтения меток %s: %v", yearMonth, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось загрузить данные"})
	}
	birthdays, err := Calendar.Birthdays(c.Context(), email, yearMonth)
	if err != nil {
		log.Printf("календарь: ошибка чтения дней рождения %s: %v", yearMonth, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось загрузить данные"})
	}

	return c.JSON(models.MonthData{
		Events:    events,
		Labels:    labels,
		Birthdays: birthdays,
	})
}

// PostDay сохраняет запись за день. Метка и день рождения перезаписываются
// целиком; событие проходит через read-modify-write по списку дня.
func PostDay(c *fiber.Ctx) error {
	email, ok := claimsEmail(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Требуется авторизация"})
	}

	var input PostDayInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Невозможно разобрать JSON"})
	}
	// Корзина выбирается по году-месяцу самой даты, поэтому дата обязана быть валидной
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Некорректный формат даты, ожидается yyyy-MM-dd"})
	}

	switch input.Type {
	case "label":
		return postLabel(c, email, input)
	case "birthday":
		return postBirthday(c, email, input)
	case "event":
		return postEvent(c, email, input)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неизвестный тип записи"})
	}
}

// postLabel перезаписывает метку дня. Последняя запись побеждает.
func postLabel(c *fiber.Ctx, email string, input PostDayInput) error {
	var label models.Label
	if err := json.Unmarshal(input.Data, &label); err != nil || label.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Метка должна содержать текст"})
	}
	if !models.LabelColors[label.Color] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый цвет метки"})
	}

	if err := Calendar.PutLabel(c.Context(), email, input.Date, label); err != nil {
		log.Printf("календарь: ошибка записи метки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сохранить данные"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// postBirthday перезаписывает день рождения дня.
func postBirthday(c *fiber.Ctx, email string, input PostDayInput) error {
	var birthday models.Birthday
	if err := json.Unmarshal(input.Data, &birthday); err != nil || birthday.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "День рождения должен содержать имя"})
	}

	if err := Calendar.PutBirthday(c.Context(), email, input.Date, birthday); err != nil {
		log.Printf("календарь: ошибка записи дня рождения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сохранить данные"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// postEvent добавляет или обновляет событие дня.
// Совпавший createdAt означает обновление: запись заменяется на месте.
// Иначе событие добавляется в конец с новым серверным createdAt.
func postEvent(c *fiber.Ctx, email string, input PostDayInput) error {
	var event models.Event
	if err := json.Unmarshal(input.Data, &event); err != nil || event.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Событие должно содержать название"})
	}
	if !validClock(event.StartTime) || !validClock(event.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Время события должно быть в формате HH:mm"})
	}

	existing, err := Calendar.DayEvents(c.Context(), email, input.Date)
	if err != nil {
		log.Printf("календарь: ошибка чтения событий дня: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сохранить данные"})
	}

	replaced := false
	if event.CreatedAt != "" {
		for i := range existing {
			if existing[i].CreatedAt == event.CreatedAt {
				existing[i] = event
				replaced = true
				break
			}
		}
	}
	if !replaced {
		event.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		existing = append(existing, event)
	}

	if err := Calendar.PutEvents(c.Context(), email, input.Date, existing); err != nil {
		log.Printf("календарь: ошибка записи событий дня: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сохранить данные"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func monthKey(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
