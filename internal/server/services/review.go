package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/dbx"
	"github.com/dmitrijs2005/bookreview/internal/server/access"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/repomanager"
)

// ReviewInput carries the fields of a new review.
type ReviewInput struct {
	Content string
	BookID  string
	Likes   []string
}

// ReviewPatch carries optional changes; nil fields are left as they are.
type ReviewPatch struct {
	Content *string
	Likes   *[]string
}

// ReviewService manages reviews and enforces that only their author changes them.
type ReviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewReviewService(db *sql.DB, m repomanager.RepositoryManager) *ReviewService {
	return &ReviewService{db: db, repomanager: m}
}

// ListByBook returns the reviews of a book. A blank book id yields an empty list.
func (s *ReviewService) ListByBook(ctx context.Context, bookID string) ([]*models.Review, error) {
	if strings.TrimSpace(bookID) == "" {
		return []*models.Review{}, nil
	}

	list, err := s.repomanager.Reviews(s.db).ListByBookID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	return list, nil
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	return s.load(ctx, s.db, id)
}

// Replies returns the replies of one review, fetched on demand.
func (s *ReviewService) Replies(ctx context.Context, id int64) ([]*models.Reply, error) {
	if _, err := s.load(ctx, s.db, id); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Replies(s.db).ListByReviewID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing replies: %w", err)
	}
	return list, nil
}

// Create stores a review authored by subject. The review row and its likes
// are written in one transaction.
func (s *ReviewService) Create(ctx context.Context, subject string, in ReviewInput) (*models.Review, error) {
	user, err := lookupUser(ctx, s.repomanager, s.db, subject)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.BookID) == "" {
		return nil, fmt.Errorf("%w: bookId is required", common.ErrorValidation)
	}

	likes := in.Likes
	if likes == nil {
		likes = []string{}
	}

	review := &models.Review{
		Content: in.Content,
		BookID:  in.BookID,
		UserID:  user.ID,
		Author:  models.Author{UserName: user.UserName},
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reviews(tx)
		if _, err := repo.Create(ctx, review); err != nil {
			return fmt.Errorf("error creating review: %w", err)
		}
		return repo.ReplaceLikes(ctx, review.ID, likes)
	})
	if err != nil {
		return nil, err
	}

	review.Likes = likes
	return review, nil
}

// Update applies patch on behalf of subject, who must own the review.
func (s *ReviewService) Update(ctx context.Context, id int64, subject string, patch ReviewPatch) (*models.Review, error) {
	review, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if err := access.AssertOwner(review.OwnerUsername(), subject); err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reviews(tx)
		if patch.Content != nil {
			review.Content = *patch.Content
			if err := repo.Update(ctx, review); err != nil {
				return s.mapMissing(err)
			}
		}
		if patch.Likes != nil {
			review.Likes = nonNil(*patch.Likes)
			if err := repo.ReplaceLikes(ctx, review.ID, review.Likes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// ToggleLike replaces the whole likes sequence. It needs no principal and
// no ownership; concurrent calls resolve as last writer wins.
func (s *ReviewService) ToggleLike(ctx context.Context, id int64, likes []string) (*models.Review, error) {
	var review *models.Review

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		review, err = s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		review.Likes = nonNil(likes)
		return s.repomanager.Reviews(tx).ReplaceLikes(ctx, id, review.Likes)
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// Delete removes a review owned by subject together with its replies and likes.
func (s *ReviewService) Delete(ctx context.Context, id int64, subject string) error {
	if subject == "" {
		return common.ErrorUnauthorized
	}

	review, err := s.load(ctx, s.db, id)
	if err != nil {
		return err
	}

	if err := access.AssertOwner(review.OwnerUsername(), subject); err != nil {
		return err
	}

	if err := s.repomanager.Reviews(s.db).Delete(ctx, id); err != nil {
		return s.mapMissing(err)
	}
	return nil
}

func (s *ReviewService) load(ctx context.Context, db dbx.DBTX, id int64) (*models.Review, error) {
	review, err := s.repomanager.Reviews(db).GetByID(ctx, id)
	if err != nil {
		return nil, s.mapMissing(err)
	}
	return review, nil
}

func (s *ReviewService) mapMissing(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrReviewNotFound
	}
	return fmt.Errorf("error accessing review: %w", err)
}

func nonNil(likes []string) []string {
	if likes == nil {
		return []string{}
	}
	return likes
}
