package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bookreview/internal/common"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.bind(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.UserName)
	writeJSON(w, http.StatusOK, user)
}

// handleAuthenticate answers every credential failure with the same 401 so
// callers cannot tell unknown users from wrong passwords.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Debug(r.Context(), "authentication failed", "username", req.Username, "error", err)
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
