// Package action holds the operations the presentation layer calls: one function
// per user intent. Every operation gets the acting user passed in explicitly, talks
// to storage only through the injected domain.Store and reports failures as errs
// errors, whose message is the fixed public message of the operation.
package action

import (
	"log/slog"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// Cached views that mutations mark as stale.
const (
	PathFeed    = "/"
	PathProfile = "/profile"
)

// Invalidator receives the signal that rendered views under the given paths are stale.
// It is advisory: actions never wait for or depend on its outcome.
type Invalidator interface {
	Invalidate(paths ...string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(...string) {}

// Actions bundles the operations together with their dependencies.
type Actions struct {
	store       domain.Store
	invalidator Invalidator
	logger      *slog.Logger
}

// Option configures Actions.
type Option func(*Actions)

// WithInvalidator sets the receiver of cache invalidation signals.
func WithInvalidator(inv Invalidator) Option {
	return func(a *Actions) {
		if inv != nil {
			a.invalidator = inv
		}
	}
}

// WithLogger sets the logger failures are reported to. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Actions) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New returns Actions working on store.
func New(store domain.Store, opts ...Option) *Actions {
	a := &Actions{
		store:       store,
		invalidator: nopInvalidator{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// fail logs the real cause of a failed operation and returns it masked with the
// operation's public message. Expected outcomes like a missing post are logged at
// info level, everything else at error level.
func (a *Actions) fail(op, public string, err error, args ...any) error {
	args = append(args, "code", errs.ErrorCode(err), "error", err)
	if errs.ErrorCode(err) == errs.EINTERNAL {
		a.logger.Error(op+": failed", args...)
	} else {
		a.logger.Info(op+": rejected", args...)
	}
	return errs.Mask(err, public)
}

// readFailed logs a failed read and returns a generic EINTERNAL error carrying public.
func (a *Actions) readFailed(op, public string, err error, args ...any) error {
	args = append(args, "error", err)
	a.logger.Error(op+": failed", args...)
	return errs.Wrap(errs.EINTERNAL, public, err)
}

// unauthenticated is returned by operations that need a resolved actor and got none.
func unauthenticated(public string) error {
	return errs.Errorf(errs.EUNAUTHENTICATED, "%s", public)
}
