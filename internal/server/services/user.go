// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification and token
// issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	"github.com/dmitrijs2005/bookreview/internal/server/repositories/repomanager"
)

// PasswordHasher is the one-way hash used for stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenIssuer signs session tokens for a verified subject.
type TokenIssuer interface {
	Issue(subject, scope string) (string, error)
}

// UserService provides authentication-related operations:
// - Register: create users
// - VerifyCredentials: check a username/password pair
// - Authenticate: verify credentials and mint a token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, t TokenIssuer) *UserService {
	return &UserService{db: db, repomanager: m, hasher: h, tokens: t}
}

// Register creates a new user. A taken username yields common.ErrorAlreadyExists
// and leaves the existing account untouched.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// VerifyCredentials returns the subject for a matching username/password pair.
// Unknown users yield common.ErrUnknownUser and wrong passwords
// common.ErrBadPassword; both wrap common.ErrorUnauthorized.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUnknownUser
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", common.ErrBadPassword
	}

	return user.UserName, nil
}

// Authenticate verifies credentials and, on success, returns a signed token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	subject, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(subject, common.DefaultScope)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %w", common.ErrorInternal, err)
	}

	return token, nil
}

// lookupUser resolves the authenticated subject to its account.
func lookupUser(ctx context.Context, rm repomanager.RepositoryManager, db *sql.DB, subject string) (*models.User, error) {
	if subject == "" {
		return nil, common.ErrorUnauthorized
	}
	user, err := rm.Users(db).GetUserByLogin(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return user, nil
}
