package action

import (
	"context"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

const (
	msgToggleFollow = "Failed to toggle follow"
	msgSelfFollow   = "You cannot follow yourself"
)

// ToggleFollow makes the acting user follow targetUserID, or unfollow when the edge
// already exists. It reports whether the actor follows the target afterwards.
// A new follow notifies the followed user within the same transaction.
func (a *Actions) ToggleFollow(ctx context.Context, actor domain.Actor, targetUserID string) (bool, error) {
	if !actor.Resolved() {
		return false, unauthenticated(msgToggleFollow)
	}
	if actor.UserID == targetUserID {
		return false, errs.Errorf(errs.EINVALID, msgSelfFollow)
	}
	args := []any{"user_id", actor.UserID, "target_id", targetUserID}
	edge := &domain.Follow{FollowerID: actor.UserID, FollowingID: targetUserID}

	following, err := a.store.Follows().Exists(ctx, actor.UserID, targetUserID)
	if err != nil {
		return false, a.fail("toggle follow", msgToggleFollow, err, args...)
	}
	if following {
		if err := a.store.Follows().Delete(ctx, edge); err != nil {
			return false, a.fail("toggle follow", msgToggleFollow, err, args...)
		}
		a.invalidator.Invalidate(PathFeed, PathProfile)
		return false, nil
	}

	err = a.store.RunAtomic(ctx, func(tx domain.Store) error {
		if err := tx.Follows().Create(ctx, edge); err != nil {
			return err
		}
		return tx.Notifications().Create(ctx, &domain.Notification{
			Type:      domain.NotificationFollow,
			UserID:    targetUserID,
			CreatorID: actor.UserID,
		})
	})
	if err != nil {
		return false, a.fail("toggle follow", msgToggleFollow, err, args...)
	}
	a.invalidator.Invalidate(PathFeed, PathProfile)
	return true, nil
}
