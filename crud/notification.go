package crud

import (
	"context"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// NotificationService manages Notifications.
// It implements the domain.NotificationService interface.
type NotificationService struct {
	notificationValidator
}

type notificationValidator struct {
	notificationGorm
}

type notificationGorm struct {
	db *gorm.DB
}

// NewNotificationService returns an instance of NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		notificationValidator{
			notificationGorm{
				db: db,
			},
		},
	}
}

var _ domain.NotificationService = &NotificationService{}

// Create runs validations needed for creating new Notification database records.
func (nv *notificationValidator) Create(ctx context.Context, n *domain.Notification) error {
	err := runNotificationValFns(n,
		nv.typeValid,
		nv.idsRequired,
		nv.notSelfAddressed,
		nv.referenceRequired)
	if err != nil {
		return err
	}
	return nv.notificationGorm.Create(ctx, n)
}

func runNotificationValFns(n *domain.Notification, fns ...notificationValFn) error {
	for _, fn := range fns {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

type notificationValFn func(n *domain.Notification) error

func (nv *notificationValidator) typeValid(n *domain.Notification) error {
	switch n.Type {
	case domain.NotificationLike, domain.NotificationComment, domain.NotificationFollow:
		return nil
	}
	return errs.Errorf(errs.EINVALID, "Unknown notification type %q.", n.Type)
}

func (nv *notificationValidator) idsRequired(n *domain.Notification) error {
	if n.UserID == "" || n.CreatorID == "" {
		return errs.Errorf(errs.EINVALID, "A notification needs a recipient and a creator.")
	}
	return nil
}

// notSelfAddressed makes sure nobody gets notified about their own doings.
func (nv *notificationValidator) notSelfAddressed(n *domain.Notification) error {
	if n.UserID == n.CreatorID {
		return errs.Errorf(errs.EINVALID, "Users are not notified about their own actions.")
	}
	return nil
}

// referenceRequired makes sure LIKE and COMMENT notifications point at their post,
// and COMMENT notifications at their comment too.
func (nv *notificationValidator) referenceRequired(n *domain.Notification) error {
	switch n.Type {
	case domain.NotificationLike:
		if n.PostID == nil {
			return errs.Errorf(errs.EINVALID, "A like notification needs a post.")
		}
	case domain.NotificationComment:
		if n.PostID == nil || n.CommentID == nil {
			return errs.Errorf(errs.EINVALID, "A comment notification needs a post and a comment.")
		}
	}
	return nil
}

func (ng *notificationGorm) Create(ctx context.Context, n *domain.Notification) error {
	if err := ng.db.WithContext(ctx).Create(n).Error; err != nil {
		return storeErr(err, "")
	}
	return nil
}

// ByUserID retrieves the notifications addressed to userID, newest first, along
// with their creator summaries and previews of the post and comment they refer to.
func (ng *notificationGorm) ByUserID(ctx context.Context, userID string) ([]domain.Notification, error) {
	db := ng.db.WithContext(ctx)
	notifications := []domain.Notification{}
	err := db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	var creatorIDs, postIDs, commentIDs []string
	for _, n := range notifications {
		creatorIDs = append(creatorIDs, n.CreatorID)
		if n.PostID != nil {
			postIDs = append(postIDs, *n.PostID)
		}
		if n.CommentID != nil {
			commentIDs = append(commentIDs, *n.CommentID)
		}
	}
	creators, err := summaries(db, creatorIDs)
	if err != nil {
		return nil, err
	}
	posts := map[string]domain.PostPreview{}
	if len(postIDs) > 0 {
		var found []domain.PostPreview
		err := db.Model(&domain.Post{}).Select("id", "content", "image").Where("id IN ?", postIDs).Find(&found).Error
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			posts[p.ID] = p
		}
	}
	comments := map[string]domain.CommentPreview{}
	if len(commentIDs) > 0 {
		var found []domain.CommentPreview
		err := db.Model(&domain.Comment{}).Select("id", "content", "created_at").Where("id IN ?", commentIDs).Find(&found).Error
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			comments[c.ID] = c
		}
	}

	for i := range notifications {
		n := &notifications[i]
		n.Creator = creators[n.CreatorID]
		if n.PostID != nil {
			if p, ok := posts[*n.PostID]; ok {
				n.Post = &p
			}
		}
		if n.CommentID != nil {
			if c, ok := comments[*n.CommentID]; ok {
				n.Comment = &c
			}
		}
	}
	return notifications, nil
}

// MarkRead sets read on the listed notifications of userID. An empty ids list
// marks every notification of userID as read.
func (ng *notificationGorm) MarkRead(ctx context.Context, userID string, ids []string) error {
	db := ng.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	if len(ids) > 0 {
		db = db.Where("id IN ?", ids)
	}
	return db.Update("read", true).Error
}
