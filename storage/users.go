package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/niccoates/dail/models"
)

// UserStore — типизированный доступ к учетным записям поверх HashStore.
// Записи лежат в общей корзине "users", полем служит хеш email.
type UserStore struct {
	store  HashStore
	secret string
}

func NewUserStore(store HashStore, secret string) *UserStore {
	return &UserStore{store: store, secret: secret}
}

// Create сохраняет новую учетную запись. Если поле уже занято —
// models.ErrConflict, существующая запись не трогается.
func (s *UserStore) Create(ctx context.Context, u models.User) error {
	field := HashEmail(u.Email, s.secret)
	exists, err := s.store.HExists(ctx, usersKey, field)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrConflict
	}
	return s.put(ctx, field, u)
}

// Get загружает учетную запись по email. Отсутствие записи и неразбираемую
// запись не различаем: вызывающий в обоих случаях видит ErrNotFound.
func (s *UserStore) Get(ctx context.Context, email string) (models.User, error) {
	raw, err := s.store.HGet(ctx, usersKey, HashEmail(email, s.secret))
	if err != nil {
		return models.User{}, err
	}
	u, err := models.DecodeUser(raw)
	if err != nil {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

// Put перезаписывает учетную запись по ее текущему email.
func (s *UserStore) Put(ctx context.Context, u models.User) error {
	return s.put(ctx, HashEmail(u.Email, s.secret), u)
}

// Rename переносит запись под новый email: сначала вставка нового ключа,
// затем удаление старого. Сбой между шагами оставляет оба ключа, но не ноль.
func (s *UserStore) Rename(ctx context.Context, oldEmail string, u models.User) error {
	if err := s.put(ctx, HashEmail(u.Email, s.secret), u); err != nil {
		return err
	}
	return s.store.HDel(ctx, usersKey, HashEmail(oldEmail, s.secret))
}

// Delete удаляет учетную запись и все ее календарные корзины.
func (s *UserStore) Delete(ctx context.Context, email string) error {
	field := HashEmail(email, s.secret)
	if err := s.store.HDel(ctx, usersKey, field); err != nil {
		return err
	}
	for _, kind := range []string{"events", "labels", "birthdays"} {
		if err := s.store.DeleteMatching(ctx, fmt.Sprintf("%s:%s:*", kind, field)); err != nil {
			return err
		}
	}
	return s.store.HDel(ctx, sessionsKey, field)
}

// PutSession запоминает действующий refresh-токен пользователя.
func (s *UserStore) PutSession(ctx context.Context, email, token string) error {
	return s.store.HSet(ctx, sessionsKey, HashEmail(email, s.secret), token)
}

// GetSession возвращает сохраненный refresh-токен.
func (s *UserStore) GetSession(ctx context.Context, email string) (string, error) {
	return s.store.HGet(ctx, sessionsKey, HashEmail(email, s.secret))
}

// DeleteSession отзывает refresh-токен пользователя.
func (s *UserStore) DeleteSession(ctx context.Context, email string) error {
	err := s.store.HDel(ctx, sessionsKey, HashEmail(email, s.secret))
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

func (s *UserStore) put(ctx context.Context, field string, u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%w: user marshal: %v", models.ErrStorage, err)
	}
	return s.store.HSet(ctx, usersKey, field, string(data))
}
