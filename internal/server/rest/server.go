// Package rest exposes the book review API over HTTP. Every request passes
// the access gate before reaching a handler; handlers translate service
// errors into status codes per route.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/bookreview/internal/logging"
	"github.com/dmitrijs2005/bookreview/internal/ratelimit"
	"github.com/dmitrijs2005/bookreview/internal/server/access"
	"github.com/dmitrijs2005/bookreview/internal/server/models"
	"github.com/dmitrijs2005/bookreview/internal/server/services"
)

// UserService registers accounts and exchanges credentials for tokens.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// ReviewService is the review manager consumed by the handlers.
type ReviewService interface {
	ListByBook(ctx context.Context, bookID string) ([]*models.Review, error)
	Get(ctx context.Context, id int64) (*models.Review, error)
	Replies(ctx context.Context, id int64) ([]*models.Reply, error)
	Create(ctx context.Context, subject string, in services.ReviewInput) (*models.Review, error)
	Update(ctx context.Context, id int64, subject string, patch services.ReviewPatch) (*models.Review, error)
	ToggleLike(ctx context.Context, id int64, likes []string) (*models.Review, error)
	Delete(ctx context.Context, id int64, subject string) error
}

// ReplyService is the reply manager consumed by the handlers.
type ReplyService interface {
	List(ctx context.Context) ([]*models.Reply, error)
	Create(ctx context.Context, reviewID int64, subject, content string) (*models.Reply, error)
	Update(ctx context.Context, replyID int64, subject, content string) (*models.Reply, error)
	Delete(ctx context.Context, reviewID, replyID int64, subject string) error
}

// TokenValidator resolves a bearer token to its subject.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Options carries the collaborators of a Server. Policy defaults to
// access.DefaultPolicy; Limiter and Metrics are optional.
type Options struct {
	Address         string
	AllowedOrigin   string
	ShutdownTimeout time.Duration

	Users   UserService
	Reviews ReviewService
	Replies ReplyService
	Tokens  TokenValidator

	Policy  *access.Policy
	Limiter *ratelimit.KeyedRateLimiter
	Metrics *Metrics
}

const defaultShutdownTimeout = 10 * time.Second

type Server struct {
	address         string
	allowedOrigin   string
	shutdownTimeout time.Duration

	users   UserService
	reviews ReviewService
	replies ReplyService
	tokens  TokenValidator

	policy   *access.Policy
	limiter  *ratelimit.KeyedRateLimiter
	metrics  *Metrics
	validate *validator.Validate
	logger   logging.Logger

	handler http.Handler
}

func NewServer(o Options, l logging.Logger) *Server {
	s := &Server{
		address:         o.Address,
		allowedOrigin:   o.AllowedOrigin,
		shutdownTimeout: o.ShutdownTimeout,
		users:           o.Users,
		reviews:         o.Reviews,
		replies:         o.Replies,
		tokens:          o.Tokens,
		policy:          o.Policy,
		limiter:         o.Limiter,
		metrics:         o.Metrics,
		validate:        newValidator(),
		logger:          l.With("module", "rest_server"),
	}
	if s.policy == nil {
		s.policy = access.DefaultPolicy()
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.gate)

	r.Post("/register", s.handleRegister)
	r.With(s.rateLimit).Post("/authenticate", s.handleAuthenticate)

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", s.handleListReviews)
		r.Post("/", s.handleCreateReview)
		r.Get("/{id}", s.handleGetReview)
		r.Put("/{id}", s.handleUpdateReview)
		r.Delete("/{id}", s.handleDeleteReview)
		r.Get("/{id}/replies", s.handleListReviewReplies)
		r.Put("/{id}/like", s.handleToggleLike)
	})

	r.Route("/replies", func(r chi.Router) {
		r.Get("/", s.handleListReplies)
		r.Post("/{reviewId}", s.handleCreateReply)
		r.Put("/{reviewId}", s.handleUpdateReply)
		r.Delete("/{reviewId}/{replyId}", s.handleDeleteReply)
	})

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
