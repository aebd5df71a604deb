package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/auth"
	"wtfSocial/errs"
)

func (s *Server) registerNotificationRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", s.requireAuth(s.handleGetNotifications)).Methods("GET")
	r.HandleFunc("/notifications/read", s.requireAuth(s.handleMarkNotificationsRead)).Methods("POST")
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.actions.GetNotifications(r.Context(), auth.GetActor(r.Context()))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"notifications": list})
}

// handleMarkNotificationsRead accepts an empty body, which marks every notification as read.
func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}
	if err := s.actions.MarkNotificationsRead(r.Context(), auth.GetActor(r.Context()), req.IDs); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nil)
}
