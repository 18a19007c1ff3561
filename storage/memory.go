package storage

import (
	"context"
	"path"
	"sync"

	"github.com/niccoates/dail/models"
)

// MemoryStore — потокобезопасная реализация HashStore в памяти.
// Используется в тестах и для локального запуска без Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) HSet(_ context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[key]
	if !ok {
		bucket = make(map[string]string)
		s.data[key] = bucket
	}
	bucket[field] = value
	return nil
}

func (s *MemoryStore) HGet(_ context.Context, key, field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bucket, ok := s.data[key]; ok {
		if val, ok := bucket[field]; ok {
			return val, nil
		}
	}
	return "", models.ErrNotFound
}

func (s *MemoryStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for field, val := range s.data[key] {
		out[field] = val
	}
	return out, nil
}

func (s *MemoryStore) HDel(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(bucket, f)
	}
	if len(bucket) == 0 {
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) HExists(_ context.Context, key, field string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.data[key]
	if !ok {
		return false, nil
	}
	_, ok = bucket[field]
	return ok, nil
}

func (s *MemoryStore) DeleteMatching(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.data, key)
		}
	}
	return nil
}
