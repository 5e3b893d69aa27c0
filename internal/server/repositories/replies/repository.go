// Package replies persists replies posted under reviews.
package replies

import (
	"context"

	"github.com/dmitrijs2005/bookreview/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, reply *models.Reply) (*models.Reply, error)
	GetByID(ctx context.Context, id int64) (*models.Reply, error)
	List(ctx context.Context) ([]*models.Reply, error)
	ListByReviewID(ctx context.Context, reviewID int64) ([]*models.Reply, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}
