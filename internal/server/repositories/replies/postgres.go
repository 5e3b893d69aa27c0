package replies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/dbx"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
)

const selectReplies = `SELECT p.id, p.content, p.created_at, p.review_id, p.user_id, u.username
		 FROM replies p JOIN users u ON u.id = p.user_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reply *models.Reply) (*models.Reply, error) {

	query :=
		`INSERT INTO replies (content, review_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		reply.Content, reply.ReviewID, reply.UserID).Scan(&reply.ID, &reply.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reply, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Reply, error) {
	query := selectReplies + `
		 WHERE p.id = $1`

	reply := &models.Reply{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reply.ID, &reply.Content, &reply.CreatedAt, &reply.ReviewID, &reply.UserID, &reply.Author.UserName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reply, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Reply, error) {
	return r.list(ctx, selectReplies+`
		 ORDER BY p.id`)
}

func (r *PostgresRepository) ListByReviewID(ctx context.Context, reviewID int64) ([]*models.Reply, error) {
	return r.list(ctx, selectReplies+`
		 WHERE p.review_id = $1
		 ORDER BY p.id`, reviewID)
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE replies SET content = $1 WHERE id = $2`, content, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM replies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Reply, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Reply, 0)
	for rows.Next() {
		reply := &models.Reply{}
		if err := rows.Scan(&reply.ID, &reply.Content, &reply.CreatedAt, &reply.ReviewID, &reply.UserID, &reply.Author.UserName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
