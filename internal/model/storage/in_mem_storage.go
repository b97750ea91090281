package storage

import (
	"context"
	"sync"

	"max.ks1230/exchange-bot/internal/entity/user"
)

// InMemStorage keeps user preferences for the lifetime of the process.
// Used when no Postgres is configured.
type InMemStorage struct {
	mu      sync.RWMutex
	userMap map[int64]user.Record
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{userMap: make(map[int64]user.Record)}
}

func (s *InMemStorage) GetByID(_ context.Context, id int64) (user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.userMap[id]
	if !ok {
		return user.Record{}, nil
	}
	return u, nil
}

func (s *InMemStorage) SaveByID(_ context.Context, id int64, rec user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userMap[id] = rec
	return nil
}
