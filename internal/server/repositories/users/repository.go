// Package users is the credential store: it persists accounts and looks them
// up by their case-sensitive username.
package users

import (
	"context"

	"github.com/dmitrijs2005/bookreview/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
