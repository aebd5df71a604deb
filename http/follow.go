package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/auth"
	"wtfSocial/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/users/{id}/follow", s.requireAuth(s.handleToggleFollow)).Methods("POST")
}

func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	following, err := s.actions.ToggleFollow(r.Context(), auth.GetActor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"following": following})
}
