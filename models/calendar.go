package models

import (
	"encoding/json"
	"strings"
)

// Event — одно событие дня. Идентичность события внутри дня задает
// CreatedAt: по нему ищется запись при обновлении.
type Event struct {
	StartTime string `json:"startTime"` // HH:mm
	EndTime   string `json:"endTime"`   // HH:mm
	Title     string `json:"title"`
	Location  string `json:"location,omitempty"`
	Video     string `json:"video,omitempty"`
	CreatedAt string `json:"createdAt"` // RFC3339, назначается сервером
}

// Label — метка дня, максимум одна на дату. Последняя запись побеждает.
type Label struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Birthday — день рождения, максимум один на дату.
type Birthday struct {
	Name string `json:"name"`
}

// LabelColors — допустимая палитра цветов меток.
var LabelColors = map[string]bool{
	"red":    true,
	"blue":   true,
	"green":  true,
	"purple": true,
	"yellow": true,
}

// MonthData — полезная нагрузка месяца: три карты, ключ — ISO-дата (yyyy-MM-dd).
// Карты всегда непустые указателем (минимум {}), никогда не nil.
type MonthData struct {
	Events    map[string][]Event  `json:"events"`
	Labels    map[string]Label    `json:"labels"`
	Birthdays map[string]Birthday `json:"birthdays"`
}

// DecodeEvents — единственная точка декодирования списка событий дня.
// Сохраненное значение может быть JSON-массивом, одиночным объектом
// (оборачиваем в список из одного элемента) или дважды закодированной
// JSON-строкой. Неразбираемое значение деградирует до пустого списка,
// ошибки наружу не выходят.
func DecodeEvents(raw string) []Event {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Event{}
	}

	var list []Event
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		if list == nil {
			return []Event{}
		}
		return list
	}

	var one Event
	if err := json.Unmarshal([]byte(raw), &one); err == nil && (one.Title != "" || one.StartTime != "") {
		return []Event{one}
	}

	// Дважды закодированная строка: "\"[...]\""
	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil && nested != raw {
		return DecodeEvents(nested)
	}

	return []Event{}
}

// DecodeLabel разбирает сохраненную метку. Вторым значением сообщает,
// удалось ли получить осмысленную запись.
func DecodeLabel(raw string) (Label, bool) {
	raw = strings.TrimSpace(raw)
	var l Label
	if err := json.Unmarshal([]byte(raw), &l); err == nil && l.Text != "" {
		return l, true
	}
	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil && nested != raw {
		return DecodeLabel(nested)
	}
	return Label{}, false
}

// DecodeBirthday разбирает сохраненный день рождения.
func DecodeBirthday(raw string) (Birthday, bool) {
	raw = strings.TrimSpace(raw)
	var b Birthday
	if err := json.Unmarshal([]byte(raw), &b); err == nil && b.Name != "" {
		return b, true
	}
	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil && nested != raw {
		return DecodeBirthday(nested)
	}
	return Birthday{}, false
}
