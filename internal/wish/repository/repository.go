package repository

import (
	"context"

	"github.com/trian/landing/backend/wishes-service/internal/wish"
)

// Repository persists the whole wishes collection as one document.
// Save always replaces everything that was stored before.
type Repository interface {
	Load(ctx context.Context) ([]wish.Wish, error)
	Save(ctx context.Context, wishes []wish.Wish) error
	Name() string
}
