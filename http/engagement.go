package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/auth"
	"wtfSocial/errs"
)

func (s *Server) registerEngagementRoutes(r *mux.Router) {
	r.HandleFunc("/posts/{id}/like", s.requireAuth(s.handleToggleLike)).Methods("POST")
	r.HandleFunc("/posts/{id}/comments", s.requireAuth(s.handleCreateComment)).Methods("POST")
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := s.actions.ToggleLike(r.Context(), auth.GetActor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"liked": liked})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decode(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comment, err := s.actions.CreateComment(r.Context(), auth.GetActor(r.Context()), mux.Vars(r)["id"], req.Content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]interface{}{"comment": comment})
}
