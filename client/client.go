// Package client — клиентское состояние календаря: кэш загруженных месяцев,
// аддитивное слияние при загрузке и оптимистичные локальные изменения
// до подтверждения сервером.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/niccoates/dail/models"
)

// monthPayload — ответ GET /calendar. Значения принимаем сырыми:
// сервер отдает канонические структуры, но старые данные могут прийти
// закодированной строкой — каждая точка чтения декодирует защитно.
type monthPayload struct {
	Events    map[string]json.RawMessage `json:"events"`
	Labels    map[string]json.RawMessage `json:"labels"`
	Birthdays map[string]json.RawMessage `json:"birthdays"`
}

// Client — API-клиент с локальным состоянием календаря.
// Локальный кэш — производная, возможно устаревшая копия; источником
// истины всегда остается сервер.
type Client struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	token     string
	events    map[string][]models.Event
	labels    map[string]models.Label
	birthdays map[string]models.Birthday
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
		events:    make(map[string][]models.Event),
		labels:    make(map[string]models.Label),
		birthdays: make(map[string]models.Birthday),
	}
}

// SignIn получает access токен по учетным данным.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/session", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ErrUnauthorized
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = out.AccessToken
	c.mu.Unlock()
	return nil
}

// SetToken задает access токен напрямую (например, после refresh).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// FetchMonth загружает месяц и вливает его в локальные карты.
// Внутри загруженного месяца ответ сервера авторитетен: локальные записи
// его дат, которых нет в ответе, удаляются — иначе неподтвержденное
// оптимистичное значение на пустой дате зависло бы навсегда.
// Записи других месяцев никогда не выбрасываются.
func (c *Client) FetchMonth(ctx context.Context, year, month int) error {
	url := fmt.Sprintf("%s/calendar?year=%04d&month=%02d", c.baseURL, year, month)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return models.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("загрузка месяца: статус %d", resp.StatusCode)
	}

	var payload monthPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	c.mu.Lock()
	defer c.mu.Unlock()
	for date := range c.events {
		if strings.HasPrefix(date, prefix) {
			if _, ok := payload.Events[date]; !ok {
				delete(c.events, date)
			}
		}
	}
	for date := range c.labels {
		if strings.HasPrefix(date, prefix) {
			if _, ok := payload.Labels[date]; !ok {
				delete(c.labels, date)
			}
		}
	}
	for date := range c.birthdays {
		if strings.HasPrefix(date, prefix) {
			if _, ok := payload.Birthdays[date]; !ok {
				delete(c.birthdays, date)
			}
		}
	}
	for date, raw := range payload.Events {
		c.events[date] = models.DecodeEvents(string(raw))
	}
	for date, raw := range payload.Labels {
		if l, ok := models.DecodeLabel(string(raw)); ok {
			c.labels[date] = l
		}
	}
	for date, raw := range payload.Birthdays {
		if b, ok := models.DecodeBirthday(string(raw)); ok {
			c.birthdays[date] = b
		}
	}
	return nil
}

// OpenMonth — навигация на месяц: загружаем его и два соседних,
// чтобы прогреть кэш для быстрого листания.
func (c *Client) OpenMonth(ctx context.Context, year, month int) error {
	base := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Month{0, 1, -1} {
		m := base.AddDate(0, int(d), 0)
		if err := c.FetchMonth(ctx, m.Year(), int(m.Month())); err != nil {
			return err
		}
	}
	return nil
}

// AddEvent оптимистично добавляет событие и отправляет его на сервер.
// При любом исходе месяц даты перечитывается: успех подтверждает серверный
// createdAt, ошибка откатывает висящее локальное значение.
func (c *Client) AddEvent(ctx context.Context, date string, event models.Event) error {
	tentative := event
	tentative.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	c.mu.Lock()
	c.events[date] = append(c.events[date], tentative)
	c.mu.Unlock()

	event.CreatedAt = "" // createdAt назначает сервер
	if err := c.postDay(ctx, date, "event", event); err != nil {
		c.resync(ctx, date)
		return err
	}
	return c.resync(ctx, date)
}

// UpdateEvent заменяет событие с данным createdAt.
func (c *Client) UpdateEvent(ctx context.Context, date string, event models.Event) error {
	if event.CreatedAt == "" {
		return models.ErrInvalidInput
	}

	c.mu.Lock()
	for i, existing := range c.events[date] {
		if existing.CreatedAt == event.CreatedAt {
			c.events[date][i] = event
			break
		}
	}
	c.mu.Unlock()

	if err := c.postDay(ctx, date, "event", event); err != nil {
		c.resync(ctx, date)
		return err
	}
	return c.resync(ctx, date)
}

// SetLabel оптимистично ставит метку дня.
func (c *Client) SetLabel(ctx context.Context, date string, label models.Label) error {
	c.mu.Lock()
	c.labels[date] = label
	c.mu.Unlock()

	if err := c.postDay(ctx, date, "label", label); err != nil {
		c.resync(ctx, date)
		return err
	}
	return c.resync(ctx, date)
}

// SetBirthday оптимистично ставит день рождения.
func (c *Client) SetBirthday(ctx context.Context, date string, birthday models.Birthday) error {
	c.mu.Lock()
	c.birthdays[date] = birthday
	c.mu.Unlock()

	if err := c.postDay(ctx, date, "birthday", birthday); err != nil {
		c.resync(ctx, date)
		return err
	}
	return c.resync(ctx, date)
}

// EventsOn — события даты в порядке начала (порядок хранения — порядок вставки).
func (c *Client) EventsOn(date string) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Event, len(c.events[date]))
	copy(out, c.events[date])
	sort.SliceStable(out, func(i, j int) bool {
		return clockMinutes(out[i].StartTime) < clockMinutes(out[j].StartTime)
	})
	return out
}

// LabelOn возвращает метку даты, если она известна локально.
func (c *Client) LabelOn(date string) (models.Label, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.labels[date]
	return l, ok
}

// BirthdayOn возвращает день рождения даты, если он известен локально.
func (c *Client) BirthdayOn(date string) (models.Birthday, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.birthdays[date]
	return b, ok
}

func (c *Client) postDay(ctx context.Context, date, kind string, data interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"date": date,
		"type": kind,
		"data": data,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calendar", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return models.ErrUnauthorized
	default:
		return fmt.Errorf("сохранение записи: статус %d", resp.StatusCode)
	}
}

// resync перечитывает месяц даты, чтобы локальное состояние сошлось с сервером.
func (c *Client) resync(ctx context.Context, date string) error {
	var year, month int
	if _, err := fmt.Sscanf(date, "%d-%d", &year, &month); err != nil {
		return err
	}
	return c.FetchMonth(ctx, year, month)
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func clockMinutes(s string) int {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0
	}
	return h*60 + m
}
