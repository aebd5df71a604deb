package action

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

const (
	msgSyncUser     = "Failed to sync user"
	handleMaxLength = 23
)

// SyncUser returns the user linked to the identity, creating it on first sign in.
// New users get a handle derived from the provider username, or from the local
// part of the email address when there is none.
func (a *Actions) SyncUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	if id.ExternalID == "" {
		return nil, unauthenticated(msgSyncUser)
	}
	args := []any{"external_id", id.ExternalID}

	user, err := a.store.Users().ByExternalID(ctx, id.ExternalID)
	if err == nil {
		return user, nil
	}
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		return nil, a.fail("sync user", msgSyncUser, err, args...)
	}

	handle, err := a.freeHandle(ctx, id)
	if err != nil {
		return nil, a.fail("sync user", msgSyncUser, err, args...)
	}
	name := id.Name
	if name == "" {
		name = handle
	}
	user = &domain.User{
		ExternalID: id.ExternalID,
		Email:      &id.Email,
		Name:       name,
		Handle:     handle,
		Image:      id.Picture,
	}
	err = a.store.Users().Create(ctx, user)
	if errs.ErrorCode(err) == errs.ECONFLICT {
		// A concurrent first request may have created the user already.
		if existing, lookupErr := a.store.Users().ByExternalID(ctx, id.ExternalID); lookupErr == nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, a.fail("sync user", msgSyncUser, err, args...)
	}
	a.logger.Info("sync user: created", "user_id", user.ID, "handle", user.Handle)
	return user, nil
}

// freeHandle derives a handle from the identity that no other user has taken yet.
func (a *Actions) freeHandle(ctx context.Context, id domain.Identity) (string, error) {
	base := id.Username
	if base == "" {
		base, _, _ = strings.Cut(id.Email, "@")
	}
	base = sanitizeHandle(base)

	handle := base
	for i := 0; i < 3; i++ {
		_, err := a.store.Users().ByHandle(ctx, handle)
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return handle, nil
		}
		if err != nil {
			return "", err
		}
		handle = base + "_" + uuid.NewString()[:6]
	}
	return "", errs.Errorf(errs.ECONFLICT, "No free handle for %q.", base)
}

func sanitizeHandle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '.' || r == '-':
			b.WriteRune('_')
		}
		if b.Len() == handleMaxLength {
			break
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
