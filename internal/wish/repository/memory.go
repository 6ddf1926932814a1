package repository

import (
	"context"
	"sync"

	"github.com/trian/landing/backend/wishes-service/internal/wish"
)

// MemoryRepo keeps the document in process memory. Used by unit tests and
// STORE_BACKEND=memory demos; contents are lost on restart.
type MemoryRepo struct {
	mu     sync.RWMutex
	wishes []wish.Wish
}

func NewMemoryRepo(seed ...wish.Wish) *MemoryRepo {
	return &MemoryRepo{wishes: wish.Clone(seed)}
}

func (m *MemoryRepo) Name() string { return "memory" }

func (m *MemoryRepo) Load(ctx context.Context) ([]wish.Wish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return wish.Clone(m.wishes), nil
}

func (m *MemoryRepo) Save(ctx context.Context, wishes []wish.Wish) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishes = wish.Clone(wishes)
	return nil
}
