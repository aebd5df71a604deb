package action

import (
	"context"

	"wtfSocial/domain"
)

const (
	msgFetchNotifications  = "Failed to fetch notifications"
	msgUpdateNotifications = "Failed to update notifications"
)

// GetNotifications returns the notifications of the acting user, newest first.
func (a *Actions) GetNotifications(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	if !actor.Resolved() {
		return nil, unauthenticated(msgFetchNotifications)
	}
	list, err := a.store.Notifications().ByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, a.readFailed("get notifications", msgFetchNotifications, err, "user_id", actor.UserID)
	}
	return list, nil
}

// MarkNotificationsRead marks the listed notifications of the acting user as read,
// or all of them when ids is empty.
func (a *Actions) MarkNotificationsRead(ctx context.Context, actor domain.Actor, ids []string) error {
	if !actor.Resolved() {
		return unauthenticated(msgUpdateNotifications)
	}
	if err := a.store.Notifications().MarkRead(ctx, actor.UserID, ids); err != nil {
		return a.fail("mark notifications read", msgUpdateNotifications, err, "user_id", actor.UserID)
	}
	return nil
}
