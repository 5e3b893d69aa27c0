package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bookreview/internal/dbx"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/replies"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/reviews"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Reviews(db dbx.DBTX) reviews.Repository
	Replies(db dbx.DBTX) replies.Repository
}
