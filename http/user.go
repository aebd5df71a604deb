package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/auth"
	"wtfSocial/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/users/sync", s.requireIdentity(s.handleSyncUser)).Methods("POST")
}

// handleSyncUser creates the user of the signed in identity on first sign in,
// and returns it on every later call.
func (s *Server) handleSyncUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.actions.SyncUser(r.Context(), auth.GetClaims(r.Context()).Identity())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
}
