package models

import (
	"encoding/json"
	"strings"
)

// User — учетная запись. Хранится в общей hash-корзине "users"
// как JSON-строка, полем служит хеш email.
type User struct {
	Email     string `json:"email"`
	Password  string `json:"password"` // bcrypt-хеш, наружу не отдается
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Public возвращает представление пользователя для ответа клиенту (без хеша пароля).
func (u User) Public() map[string]interface{} {
	return map[string]interface{}{
		"email": u.Email,
		"name":  u.Name,
		"image": u.Image,
	}
}

// DefaultName выводит отображаемое имя из email (часть до @).
func DefaultName(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// DecodeUser разбирает сохраненную запись пользователя. Значение может быть
// JSON-объектом либо дважды закодированной JSON-строкой — принимаем обе формы.
func DecodeUser(raw string) (User, error) {
	raw = strings.TrimSpace(raw)
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err == nil && u.Email != "" {
		return u, nil
	}
	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil && nested != raw {
		return DecodeUser(nested)
	}
	return User{}, ErrDecode
}
