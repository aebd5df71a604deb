package http

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"wtfSocial/action"
	"wtfSocial/auth"
	"wtfSocial/domain"
	"wtfSocial/errs"
)

func (s *Server) registerProfileRoutes(r *mux.Router) {
	r.HandleFunc("/profile/{handle}", s.handleGetProfile).Methods("GET")
	r.HandleFunc("/profile", s.requireIdentity(s.handleUpdateProfile)).Methods("PUT")
}

// handleGetProfile serves a profile page: the profile, the user's posts, the posts
// the user liked and whether the acting user follows them. The page differs per
// acting user, so it is cached per viewer.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	actor := auth.GetActor(r.Context())
	key := action.PathProfile + "/" + url.PathEscape(handle) + "?viewer=" + url.QueryEscape(actor.UserID)

	s.serveCached(w, r, key, func() (map[string]interface{}, error) {
		profile, err := s.actions.GetProfileByHandle(r.Context(), handle)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, errs.Errorf(errs.ENOTFOUND, "Profile not found")
		}

		var (
			posts, liked []domain.Post
			following    bool
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			posts, err = s.actions.GetUserPosts(ctx, profile.ID)
			return err
		})
		g.Go(func() error {
			var err error
			liked, err = s.actions.GetUserLikedPosts(ctx, profile.ID)
			return err
		})
		g.Go(func() error {
			following = s.actions.IsFollowing(ctx, actor, profile.ID)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"profile":      profile,
			"posts":        posts,
			"liked_posts":  liked,
			"is_following": following,
		}, nil
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.actions.UpdateProfile(r.Context(), auth.GetActor(r.Context()), upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{"user": user})
}
