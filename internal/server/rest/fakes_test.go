package rest

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/logging"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	"github.com/dmitrijs2005/bookreview/internal/server/services"
)

var errBoom = errors.New("boom")

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeTokens knows a fixed set of tokens. "expired" always reports expiry.
type fakeTokens struct {
	subjects map[string]string
}

func (f *fakeTokens) Validate(token string) (string, error) {
	if token == "expired" {
		return "", common.ErrTokenExpired
	}
	if s, ok := f.subjects[token]; ok {
		return s, nil
	}
	return "", common.ErrInvalidToken
}

type fakeUsers struct {
	registerErr error
	authErr     error
	calls       int
}

func (f *fakeUsers) Register(_ context.Context, username, _ string) (*models.User, error) {
	f.calls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: 7, UserName: username, PasswordHash: "secret-hash"}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, username, _ string) (string, error) {
	f.calls++
	if f.authErr != nil {
		return "", f.authErr
	}
	return "token-for-" + username, nil
}

type fakeReviews struct {
	err error

	calls     int
	subject   string
	id        int64
	bookID    string
	input     services.ReviewInput
	patch     services.ReviewPatch
	likes     []string
	likesSeen bool
}

func (f *fakeReviews) review(id int64) *models.Review {
	return &models.Review{ID: id, Content: "c", BookID: "b1", Likes: []string{}, Author: models.Author{UserName: "alice"}}
}

func (f *fakeReviews) ListByBook(_ context.Context, bookID string) ([]*models.Review, error) {
	f.calls++
	f.bookID = bookID
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Review{f.review(1)}, nil
}

func (f *fakeReviews) Get(_ context.Context, id int64) (*models.Review, error) {
	f.calls++
	f.id = id
	if f.err != nil {
		return nil, f.err
	}
	return f.review(id), nil
}

func (f *fakeReviews) Replies(_ context.Context, id int64) ([]*models.Reply, error) {
	f.calls++
	f.id = id
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Reply{{ID: 3, ReviewID: id, Content: "r"}}, nil
}

func (f *fakeReviews) Create(_ context.Context, subject string, in services.ReviewInput) (*models.Review, error) {
	f.calls++
	f.subject = subject
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return f.review(1), nil
}

func (f *fakeReviews) Update(_ context.Context, id int64, subject string, patch services.ReviewPatch) (*models.Review, error) {
	f.calls++
	f.id = id
	f.subject = subject
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	return f.review(id), nil
}

func (f *fakeReviews) ToggleLike(_ context.Context, id int64, likes []string) (*models.Review, error) {
	f.calls++
	f.id = id
	f.likes = likes
	f.likesSeen = true
	if f.err != nil {
		return nil, f.err
	}
	r := f.review(id)
	r.Likes = likes
	return r, nil
}

func (f *fakeReviews) Delete(_ context.Context, id int64, subject string) error {
	f.calls++
	f.id = id
	f.subject = subject
	return f.err
}

type fakeReplies struct {
	err error

	calls    int
	subject  string
	reviewID int64
	replyID  int64
	content  string
}

func (f *fakeReplies) List(context.Context) ([]*models.Reply, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Reply{}, nil
}

func (f *fakeReplies) Create(_ context.Context, reviewID int64, subject, content string) (*models.Reply, error) {
	f.calls++
	f.reviewID, f.subject, f.content = reviewID, subject, content
	if f.err != nil {
		return nil, f.err
	}
	return &models.Reply{ID: 9, ReviewID: reviewID, Content: content, Author: models.Author{UserName: subject}}, nil
}

func (f *fakeReplies) Update(_ context.Context, replyID int64, subject, content string) (*models.Reply, error) {
	f.calls++
	f.replyID, f.subject, f.content = replyID, subject, content
	if f.err != nil {
		return nil, f.err
	}
	return &models.Reply{ID: replyID, Content: content, Author: models.Author{UserName: subject}}, nil
}

func (f *fakeReplies) Delete(_ context.Context, reviewID, replyID int64, subject string) error {
	f.calls++
	f.reviewID, f.replyID, f.subject = reviewID, replyID, subject
	return f.err
}

type testDeps struct {
	users   *fakeUsers
	reviews *fakeReviews
	replies *fakeReplies
}

func newTestServer(t *testing.T, tweak func(*Options)) (*Server, *testDeps) {
	t.Helper()

	d := &testDeps{users: &fakeUsers{}, reviews: &fakeReviews{}, replies: &fakeReplies{}}
	o := Options{
		Address:       "127.0.0.1:0",
		AllowedOrigin: "http://localhost:3000",
		Users:         d.users,
		Reviews:       d.reviews,
		Replies:       d.replies,
		Tokens:        &fakeTokens{subjects: map[string]string{"alice-token": "alice", "bob-token": "bob"}},
	}
	if tweak != nil {
		tweak(&o)
	}
	return NewServer(o, nopLogger{}), d
}

// do sends a request through the full router. An empty token sends no
// Authorization header.
func do(t *testing.T, s *Server, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
