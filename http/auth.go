package http

import (
	"net/http"
	"strings"

	"wtfSocial/auth"
	"wtfSocial/domain"
	"wtfSocial/errs"
)

// authUser is a middleware that runs on every request. It verifies the bearer token,
// if there is one, resolves the acting user and stores both the claims and the Actor
// in the request context. Requests without a valid token carry on anonymously.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.verifier.Verify(r.Context(), header)
		if err != nil {
			s.logger.Debug("auth: rejected token", "path", r.URL.Path, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		actor, err := s.resolver.Actor(r.Context(), claims.Subject)
		if err != nil {
			s.logger.Error("auth: failed to resolve acting user", "external_id", claims.Subject, "error", err)
			actor = domain.Actor{ExternalID: claims.Subject}
		}
		ctx := auth.SetClaims(r.Context(), claims)
		ctx = auth.SetActor(ctx, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth is a middleware that only lets requests of a resolved user through.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.GetActor(r.Context()).Resolved() {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHENTICATED, "You must be signed in."))
			return
		}
		next(w, r)
	}
}

// requireIdentity is like requireAuth but also lets through signed in identities
// that have no user record yet.
func (s *Server) requireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetClaims(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHENTICATED, "You must be signed in."))
			return
		}
		next(w, r)
	}
}
