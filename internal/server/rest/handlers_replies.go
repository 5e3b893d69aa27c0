package rest

import (
	"net/http"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/server/auth"
)

// replyRequest accepts empty content; a null or absent value is stored as "".
type replyRequest struct {
	Content string `json:"content"`
}

// A subject whose account is gone is a bad request on reply routes.
var userGone = statusOverride{err: common.ErrUserNotFound, status: http.StatusBadRequest}

func (s *Server) handleListReplies(w http.ResponseWriter, r *http.Request) {
	list, err := s.replies.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewId")
	if !ok {
		return
	}

	var req replyRequest
	if !s.bind(w, r, &req) {
		return
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	reply, err := s.replies.Create(r.Context(), reviewID, subject, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err,
			userGone,
			statusOverride{err: common.ErrReviewNotFound, status: http.StatusBadRequest},
		)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// handleUpdateReply resolves the route's {reviewId} segment as the id of the
// reply to edit.
func (s *Server) handleUpdateReply(w http.ResponseWriter, r *http.Request) {
	replyID, ok := pathID(w, r, "reviewId")
	if !ok {
		return
	}

	var req replyRequest
	if !s.bind(w, r, &req) {
		return
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	reply, err := s.replies.Update(r.Context(), replyID, subject, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err, userGone)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleDeleteReply(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewId")
	if !ok {
		return
	}
	replyID, ok := pathID(w, r, "replyId")
	if !ok {
		return
	}

	subject, _ := auth.SubjectFromContext(r.Context())
	if err := s.replies.Delete(r.Context(), reviewID, replyID, subject); err != nil {
		s.writeServiceError(w, r, err, userGone)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
