package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/niccoates/dail/models"
)

// Виды месячных корзин.
const (
	kindEvents    = "events"
	kindLabels    = "labels"
	kindBirthdays = "birthdays"
)

// CalendarStore — доступ к календарным записям поверх HashStore.
// Гетерогенные сохраненные представления (объект, массив, закодированная
// строка) декодируются здесь и дальше этой границы не просачиваются.
type CalendarStore struct {
	store  HashStore
	secret string
}

func NewCalendarStore(store HashStore, secret string) *CalendarStore {
	return &CalendarStore{store: store, secret: secret}
}

// Events возвращает все события месяца, ключ — ISO-дата.
// Карта всегда не nil; неразбираемое значение дня деградирует до
// пустого списка и логируется, запрос не падает.
func (s *CalendarStore) Events(ctx context.Context, email, yearMonth string) (map[string][]models.Event, error) {
	raw, err := s.store.HGetAll(ctx, s.key(kindEvents, email, yearMonth))
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.Event, len(raw))
	for date, val := range raw {
		list := models.DecodeEvents(val)
		if len(list) == 0 && val != "" && val != "[]" {
			log.Printf("календарь: неразбираемое значение событий за %s, отдаем пустой список", date)
		}
		out[date] = list
	}
	return out, nil
}

// Labels возвращает метки месяца. Неразбираемые значения пропускаются.
func (s *CalendarStore) Labels(ctx context.Context, email, yearMonth string) (map[string]models.Label, error) {
	raw, err := s.store.HGetAll(ctx, s.key(kindLabels, email, yearMonth))
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Label, len(raw))
	for date, val := range raw {
		if l, ok := models.DecodeLabel(val); ok {
			out[date] = l
		} else {
			log.Printf("календарь: неразбираемая метка за %s, пропускаем", date)
		}
	}
	return out, nil
}

// Birthdays возвращает дни рождения месяца.
func (s *CalendarStore) Birthdays(ctx context.Context, email, yearMonth string) (map[string]models.Birthday, error) {
	raw, err := s.store.HGetAll(ctx, s.key(kindBirthdays, email, yearMonth))
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Birthday, len(raw))
	for date, val := range raw {
		if b, ok := models.DecodeBirthday(val); ok {
			out[date] = b
		} else {
			log.Printf("календарь: неразбираемый день рождения за %s, пропускаем", date)
		}
	}
	return out, nil
}

// DayEvents — читающая половина read-modify-write: текущий список событий
// даты в каноническом виде. Корзина выбирается по году-месяцу самой даты.
func (s *CalendarStore) DayEvents(ctx context.Context, email, date string) ([]models.Event, error) {
	raw, err := s.store.HGet(ctx, s.key(kindEvents, email, YearMonthOf(date)), date)
	if errors.Is(err, models.ErrNotFound) {
		return []models.Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	return models.DecodeEvents(raw), nil
}

// PutEvents записывает полный список событий даты одним значением.
func (s *CalendarStore) PutEvents(ctx context.Context, email, date string, events []models.Event) error {
	return s.putJSON(ctx, kindEvents, email, date, events)
}

// PutLabel перезаписывает метку даты. Последняя запись побеждает.
func (s *CalendarStore) PutLabel(ctx context.Context, email, date string, l models.Label) error {
	return s.putJSON(ctx, kindLabels, email, date, l)
}

// PutBirthday перезаписывает день рождения даты.
func (s *CalendarStore) PutBirthday(ctx context.Context, email, date string, b models.Birthday) error {
	return s.putJSON(ctx, kindBirthdays, email, date, b)
}

func (s *CalendarStore) putJSON(ctx context.Context, kind, email, date string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", models.ErrStorage, kind, err)
	}
	return s.store.HSet(ctx, s.key(kind, email, YearMonthOf(date)), date, string(data))
}

func (s *CalendarStore) key(kind, email, yearMonth string) string {
	return bucketKey(kind, HashEmail(email, s.secret), yearMonth)
}

// YearMonthOf выделяет год-месяц из ISO-даты: первые два сегмента по "-".
// Корзина всегда выбирается по самой дате, а не по параметрам запроса.
func YearMonthOf(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) < 2 {
		return date
	}
	return parts[0] + "-" + parts[1]
}
