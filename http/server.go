package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wtfSocial/action"
	"wtfSocial/auth"
	"wtfSocial/cache"
	"wtfSocial/domain"
	"wtfSocial/errs"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// ActorResolver maps a verified external identity to the Actor of a request.
type ActorResolver interface {
	Actor(ctx context.Context, externalID string) (domain.Actor, error)
}

// Server provides the http functionality of this app, namely routing, request
// handling, and middleware. It identifies the acting user once per request and
// hands it over to one of the actions.
type Server struct {
	router   *mux.Router
	actions  *action.Actions
	verifier TokenVerifier
	resolver ActorResolver
	pages    *cache.PageCache
	metrics  *Collector
	logger   *slog.Logger
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the actions passed in.
// The metrics collector is registered with reg and exposed on /metrics.
func NewServer(
	actions *action.Actions,
	verifier TokenVerifier,
	resolver ActorResolver,
	pages *cache.PageCache,
	reg *prometheus.Registry,
	logger *slog.Logger,
) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:   mux.NewRouter(),
		actions:  actions,
		verifier: verifier,
		resolver: resolver,
		pages:    pages,
		metrics:  NewMetricsCollector(),
		logger:   logger,
	}
	if err := reg.Register(s.metrics); err != nil {
		return nil, err
	}

	s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")

	s.registerPostRoutes(s.router)
	s.registerEngagementRoutes(s.router)
	s.registerProfileRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerNotificationRoutes(s.router)
	s.registerUserRoutes(s.router)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Not found."))
	})

	// Set up middleware that needs to run on every matched request.
	s.router.Use(s.metrics.instrument, s.authUser)
	return s, nil
}

// ServeHTTP makes the Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens and serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// writeJSON writes the success envelope {"success": true, ...fields}.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, fields map[string]interface{}) {
	body, err := envelope(fields)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		errs.LogError(r, err)
	}
}

func envelope(fields map[string]interface{}) ([]byte, error) {
	out := map[string]interface{}{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// decode reads the json request body into dst.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid json body.")
	}
	return nil
}
