package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/bookreview/internal/server/auth"
	"github.com/dmitrijs2005/bookreview/internal/server/services"
)

type createReviewRequest struct {
	Content string   `json:"content"`
	BookID  string   `json:"bookId"`
	Likes   []string `json:"likes"`
}

// updateReviewRequest leaves absent fields untouched.
type updateReviewRequest struct {
	Content *string   `json:"content"`
	Likes   *[]string `json:"likes"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.reviews.ListByBook(r.Context(), r.URL.Query().Get("bookId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	review, err := s.reviews.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleListReviewReplies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	list, err := s.reviews.Replies(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if !s.bind(w, r, &req) {
		return
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	review, err := s.reviews.Create(r.Context(), subject, services.ReviewInput{
		Content: req.Content,
		BookID:  req.BookID,
		Likes:   req.Likes,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateReviewRequest
	if !s.bind(w, r, &req) {
		return
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	review, err := s.reviews.Update(r.Context(), id, subject, services.ReviewPatch{
		Content: req.Content,
		Likes:   req.Likes,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	likes, err := decodeLikes(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := s.reviews.ToggleLike(r.Context(), id, likes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	if err := s.reviews.Delete(r.Context(), id, subject); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeLikes accepts either a bare JSON array of usernames or an object
// with a "likes" array. JSON null yields an empty list.
func decodeLikes(r *http.Request) ([]string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("malformed request body: %w", err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("request body is empty")
	}

	var likes []string
	if body[0] == '[' || bytes.Equal(body, []byte("null")) {
		err = json.Unmarshal(body, &likes)
	} else {
		var wrapped struct {
			Likes []string `json:"likes"`
		}
		err = json.Unmarshal(body, &wrapped)
		likes = wrapped.Likes
	}
	if err != nil {
		return nil, fmt.Errorf("malformed request body: %w", err)
	}

	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}

// pathID parses a numeric route parameter, writing a 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return id, true
}
