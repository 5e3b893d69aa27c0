package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/dbx"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	repliesrepo "github.com/dmitrijs2005/bookreview/internal/server/repositories/replies"
	reviewsrepo "github.com/dmitrijs2005/bookreview/internal/server/repositories/reviews"
	usersrepo "github.com/dmitrijs2005/bookreview/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// store is a tiny in-memory database shared by the fake repositories.
type store struct {
	mu      sync.Mutex
	nextID  int64
	users   map[string]*models.User
	reviews map[int64]*models.Review
	replies map[int64]*models.Reply

	usersErr   error
	createErr  error
	reviewsErr error
	likesErr   error
	repliesErr error
}

func newStore() *store {
	return &store{
		users:   map[string]*models.User{},
		reviews: map[int64]*models.Review{},
		replies: map[int64]*models.Reply{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) addUser(name string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: s.id(), UserName: name, PasswordHash: "hash:" + name}
	s.users[name] = u
	return u
}

func (s *store) addReview(owner *models.User, bookID string, likes ...string) *models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	if likes == nil {
		likes = []string{}
	}
	r := &models.Review{ID: s.id(), Content: "content", BookID: bookID, CreatedAt: time.Now(), Likes: likes, UserID: owner.ID, Author: models.Author{UserName: owner.UserName}}
	s.reviews[r.ID] = r
	return r
}

func (s *store) addReply(owner *models.User, review *models.Review) *models.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Reply{ID: s.id(), Content: "reply", ReviewID: review.ID, CreatedAt: time.Now(), UserID: owner.ID, Author: models.Author{UserName: owner.UserName}}
	s.replies[p.ID] = p
	return p
}

// --- users ---

type fakeUsersRepo struct{ s *store }

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.createErr != nil {
		return nil, f.s.createErr
	}
	if _, ok := f.s.users[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = f.s.id()
	f.s.users[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, name string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.usersErr != nil {
		return nil, f.s.usersErr
	}
	u, ok := f.s.users[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// --- reviews ---

type fakeReviewsRepo struct{ s *store }

func (f *fakeReviewsRepo) Create(_ context.Context, r *models.Review) (*models.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.reviewsErr != nil {
		return nil, f.s.reviewsErr
	}
	r.ID = f.s.id()
	r.CreatedAt = time.Now()
	cp := *r
	cp.Likes = []string{}
	f.s.reviews[r.ID] = &cp
	return r, nil
}

func (f *fakeReviewsRepo) GetByID(_ context.Context, id int64) (*models.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.reviewsErr != nil {
		return nil, f.s.reviewsErr
	}
	r, ok := f.s.reviews[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	cp.Likes = append([]string{}, r.Likes...)
	return &cp, nil
}

func (f *fakeReviewsRepo) ListByBookID(_ context.Context, bookID string) ([]*models.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.reviewsErr != nil {
		return nil, f.s.reviewsErr
	}
	out := []*models.Review{}
	for id := int64(1); id <= f.s.nextID; id++ {
		if r, ok := f.s.reviews[id]; ok && r.BookID == bookID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewsRepo) Update(_ context.Context, r *models.Review) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored, ok := f.s.reviews[r.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Content = r.Content
	return nil
}

func (f *fakeReviewsRepo) ReplaceLikes(_ context.Context, id int64, likes []string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.likesErr != nil {
		return f.s.likesErr
	}
	stored, ok := f.s.reviews[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Likes = append([]string{}, likes...)
	return nil
}

func (f *fakeReviewsRepo) Delete(_ context.Context, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.reviews[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.reviews, id)
	for pid, p := range f.s.replies {
		if p.ReviewID == id {
			delete(f.s.replies, pid)
		}
	}
	return nil
}

// --- replies ---

type fakeRepliesRepo struct{ s *store }

func (f *fakeRepliesRepo) Create(_ context.Context, p *models.Reply) (*models.Reply, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.repliesErr != nil {
		return nil, f.s.repliesErr
	}
	p.ID = f.s.id()
	p.CreatedAt = time.Now()
	cp := *p
	f.s.replies[p.ID] = &cp
	return p, nil
}

func (f *fakeRepliesRepo) GetByID(_ context.Context, id int64) (*models.Reply, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.repliesErr != nil {
		return nil, f.s.repliesErr
	}
	p, ok := f.s.replies[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepliesRepo) List(_ context.Context) ([]*models.Reply, error) {
	return f.filter(func(*models.Reply) bool { return true })
}

func (f *fakeRepliesRepo) ListByReviewID(_ context.Context, reviewID int64) ([]*models.Reply, error) {
	return f.filter(func(p *models.Reply) bool { return p.ReviewID == reviewID })
}

func (f *fakeRepliesRepo) filter(keep func(*models.Reply) bool) ([]*models.Reply, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.repliesErr != nil {
		return nil, f.s.repliesErr
	}
	out := []*models.Reply{}
	for id := int64(1); id <= f.s.nextID; id++ {
		if p, ok := f.s.replies[id]; ok && keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepliesRepo) UpdateContent(_ context.Context, id int64, content string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.replies[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Content = content
	return nil
}

func (f *fakeRepliesRepo) Delete(_ context.Context, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.replies[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.replies, id)
	return nil
}

// --- manager ---

type fakeRepoManager struct{ s *store }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return &fakeUsersRepo{m.s} }
func (m *fakeRepoManager) Reviews(dbx.DBTX) reviewsrepo.Repository      { return &fakeReviewsRepo{m.s} }
func (m *fakeRepoManager) Replies(dbx.DBTX) repliesrepo.Repository      { return &fakeRepliesRepo{m.s} }

// --- auth fakes ---

type fakeHasher struct{ err error }

func (h fakeHasher) Hash(p string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hash:" + p, nil
}

func (h fakeHasher) Verify(hash, p string) bool { return hash == "hash:"+p }

type fakeIssuer struct {
	err     error
	subject string
	scope   string
}

func (i *fakeIssuer) Issue(subject, scope string) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	i.subject, i.scope = subject, scope
	return "token-for-" + subject, nil
}
