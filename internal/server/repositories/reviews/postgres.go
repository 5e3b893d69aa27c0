package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/dbx"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the review row only. Likes are stored with ReplaceLikes,
// normally inside the same transaction.
func (r *PostgresRepository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {

	query :=
		`INSERT INTO reviews (content, book_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		review.Content, review.BookID, review.UserID).Scan(&review.ID, &review.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return review, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	query :=
		`SELECT r.id, r.content, r.book_id, r.created_at, r.user_id, u.username
		 FROM reviews r JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1
		 `

	review := &models.Review{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID, &review.Content, &review.BookID, &review.CreatedAt, &review.UserID, &review.Author.UserName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	likes, err := r.likes(ctx, id)
	if err != nil {
		return nil, err
	}
	review.Likes = likes

	return review, nil
}

// ListByBookID returns the reviews of a book in creation order, each with its likes.
func (r *PostgresRepository) ListByBookID(ctx context.Context, bookID string) ([]*models.Review, error) {
	query :=
		`SELECT r.id, r.content, r.book_id, r.created_at, r.user_id, u.username
		 FROM reviews r JOIN users u ON u.id = r.user_id
		 WHERE r.book_id = $1
		 ORDER BY r.id
		 `

	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Review, 0)
	byID := make(map[int64]*models.Review)

	for rows.Next() {
		review := &models.Review{Likes: []string{}}
		if err := rows.Scan(&review.ID, &review.Content, &review.BookID, &review.CreatedAt, &review.UserID, &review.Author.UserName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, review)
		byID[review.ID] = review
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(result) == 0 {
		return result, nil
	}

	likesQuery :=
		`SELECT l.review_id, l.liker
		 FROM review_likes l JOIN reviews r ON r.id = l.review_id
		 WHERE r.book_id = $1
		 ORDER BY l.review_id, l.position
		 `

	likeRows, err := r.db.QueryContext(ctx, likesQuery, bookID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var reviewID int64
		var liker string
		if err := likeRows.Scan(&reviewID, &liker); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		// a review inserted between the two queries is simply skipped
		if review, ok := byID[reviewID]; ok {
			review.Likes = append(review.Likes, liker)
		}
	}
	if err := likeRows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update stores the review content.
func (r *PostgresRepository) Update(ctx context.Context, review *models.Review) error {
	query := `UPDATE reviews SET content = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, review.Content, review.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

// ReplaceLikes swaps the whole likes sequence of a review, keeping order and duplicates.
func (r *PostgresRepository) ReplaceLikes(ctx context.Context, reviewID int64, likes []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM review_likes WHERE review_id = $1`, reviewID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO review_likes (review_id, position, liker)
		 VALUES ($1, $2, $3)
		 `

	for i, liker := range likes {
		if _, err := r.db.ExecContext(ctx, query, reviewID, i, liker); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

// Delete removes the review; likes and replies go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RequireAffected(res)
}

func (r *PostgresRepository) likes(ctx context.Context, reviewID int64) ([]string, error) {
	query :=
		`SELECT liker FROM review_likes
		 WHERE review_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	likes := make([]string, 0)
	for rows.Next() {
		var liker string
		if err := rows.Scan(&liker); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		likes = append(likes, liker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return likes, nil
}
