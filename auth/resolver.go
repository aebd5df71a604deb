package auth

import (
	"context"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// UserFinder looks up users by the subject of their identity.
type UserFinder interface {
	ByExternalID(ctx context.Context, externalID string) (*domain.User, error)
}

// Resolver maps external identities to internal user ids.
type Resolver struct {
	users UserFinder
}

func NewResolver(users UserFinder) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the id of the user linked to externalID. ok is false, with a nil
// error, when there is no identity or no user linked to it yet.
func (r *Resolver) Resolve(ctx context.Context, externalID string) (userID string, ok bool, err error) {
	if externalID == "" {
		return "", false, nil
	}
	user, err := r.users.ByExternalID(ctx, externalID)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.ID, true, nil
}

// Actor resolves externalID into the Actor of a request.
func (r *Resolver) Actor(ctx context.Context, externalID string) (domain.Actor, error) {
	userID, _, err := r.Resolve(ctx, externalID)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{ExternalID: externalID, UserID: userID}, nil
}
