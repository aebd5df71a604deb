package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"wtfSocial/action"
	"wtfSocial/auth"
	"wtfSocial/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/feed", s.handleFeed).Methods("GET")
	r.HandleFunc("/posts", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")
}

type createPostRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

// handleFeed serves the feed from the page cache, rendering it on a miss.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, action.PathFeed, func() (map[string]interface{}, error) {
		posts, err := s.actions.ListFeed(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"posts": posts}, nil
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decode(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.actions.CreatePost(r.Context(), auth.GetActor(r.Context()), req.Content, req.Image)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]interface{}{"post": post})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	err := s.actions.DeletePost(r.Context(), auth.GetActor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nil)
}

// serveCached answers from the page cache under key, or renders the page with
// render, caches it and answers with that. A matching If-None-Match gets a 304.
// A render that overlapped an invalidation is answered but not cached.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string, render func() (map[string]interface{}, error)) {
	page, hit := s.pages.Get(key)
	s.metrics.cacheLookup(hit)
	if !hit {
		gen := s.pages.Generation()
		fields, err := render()
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		body, err := envelope(fields)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		var stored bool
		if page, stored = s.pages.PutIfCurrent(key, body, gen); !stored {
			s.logger.Debug("page cache: render overlapped an invalidation", "key", key)
		}
	}

	w.Header().Set("ETag", page.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == page.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(page.Body); err != nil {
		errs.LogError(r, err)
	}
}
