package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/server/access"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/repomanager"
)

// ReplyService manages replies under reviews.
type ReplyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewReplyService(db *sql.DB, m repomanager.RepositoryManager) *ReplyService {
	return &ReplyService{db: db, repomanager: m}
}

func (s *ReplyService) List(ctx context.Context) ([]*models.Reply, error) {
	list, err := s.repomanager.Replies(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing replies: %w", err)
	}
	return list, nil
}

// Create posts a reply by subject under the given review.
func (s *ReplyService) Create(ctx context.Context, reviewID int64, subject, content string) (*models.Reply, error) {
	user, err := lookupUser(ctx, s.repomanager, s.db, subject)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Reviews(s.db).GetByID(ctx, reviewID); err != nil {
		return nil, mapNotFound(err, common.ErrReviewNotFound)
	}

	reply := &models.Reply{
		Content:  content,
		ReviewID: reviewID,
		UserID:   user.ID,
		Author:   models.Author{UserName: user.UserName},
	}

	if _, err := s.repomanager.Replies(s.db).Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("error creating reply: %w", err)
	}

	return reply, nil
}

// Update replaces the content of the reply whose id is given. Callers pass
// the value of the route's {reviewId} segment here.
func (s *ReplyService) Update(ctx context.Context, replyID int64, subject, content string) (*models.Reply, error) {
	if _, err := lookupUser(ctx, s.repomanager, s.db, subject); err != nil {
		return nil, err
	}

	repo := s.repomanager.Replies(s.db)

	reply, err := repo.GetByID(ctx, replyID)
	if err != nil {
		return nil, mapNotFound(err, common.ErrReplyNotFound)
	}

	if err := access.AssertOwner(reply.OwnerUsername(), subject); err != nil {
		return nil, err
	}

	if err := repo.UpdateContent(ctx, reply.ID, content); err != nil {
		return nil, mapNotFound(err, common.ErrReplyNotFound)
	}

	reply.Content = content
	return reply, nil
}

// Delete removes a reply owned by subject. Both the reply and the review
// named in the route must exist.
func (s *ReplyService) Delete(ctx context.Context, reviewID, replyID int64, subject string) error {
	if _, err := lookupUser(ctx, s.repomanager, s.db, subject); err != nil {
		return err
	}

	repo := s.repomanager.Replies(s.db)

	reply, err := repo.GetByID(ctx, replyID)
	if err != nil {
		return mapNotFound(err, common.ErrReplyNotFound)
	}

	if _, err := s.repomanager.Reviews(s.db).GetByID(ctx, reviewID); err != nil {
		return mapNotFound(err, common.ErrReviewNotFound)
	}

	if err := access.AssertOwner(reply.OwnerUsername(), subject); err != nil {
		return err
	}

	if err := repo.Delete(ctx, reply.ID); err != nil {
		return mapNotFound(err, common.ErrReplyNotFound)
	}
	return nil
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return notFound
	}
	return fmt.Errorf("db error: %w", err)
}
