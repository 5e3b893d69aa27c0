// Package reviews persists reviews together with their ordered likes.
package reviews

import (
	"context"

	"github.com/dmitrijs2005/bookreview/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	ListByBookID(ctx context.Context, bookID string) ([]*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	ReplaceLikes(ctx context.Context, reviewID int64, likes []string) error
	Delete(ctx context.Context, id int64) error
}
