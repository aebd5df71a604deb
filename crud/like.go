package crud

import (
	"context"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Create runs validations needed for creating new Like database records.
// Whether the user already likes the post is left to the unique index, so two
// racing requests can't both get through.
func (lv *likeValidator) Create(ctx context.Context, like *domain.Like) error {
	if err := runLikeValFns(like, lv.idsRequired); err != nil {
		return err
	}
	return lv.likeGorm.Create(ctx, like)
}

// Delete runs validations needed for deleting existing Like database records.
func (lv *likeValidator) Delete(ctx context.Context, like *domain.Like) error {
	if err := runLikeValFns(like, lv.idsRequired); err != nil {
		return err
	}
	return lv.likeGorm.Delete(ctx, like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(like *domain.Like) error

// idsRequired ensures that neither the post id nor the user id is empty.
func (lv *likeValidator) idsRequired(like *domain.Like) error {
	if like.PostID == "" || like.UserID == "" {
		return errs.Errorf(errs.EINVALID, "A like needs a post and a user.")
	}
	return nil
}

// ByPostAndUser retrieves the like a user has given to a post.
func (lg *likeGorm) ByPostAndUser(ctx context.Context, postID, userID string) (*domain.Like, error) {
	var like domain.Like
	db := lg.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID)
	if err := first(db, &like, "You have not liked that post."); err != nil {
		return nil, err
	}
	return &like, nil
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(ctx context.Context, like *domain.Like) error {
	if err := lg.db.WithContext(ctx).Create(like).Error; err != nil {
		return storeErr(err, "You already like that post.")
	}
	return nil
}

// Delete permanently deletes the like of the user on the post.
func (lg *likeGorm) Delete(ctx context.Context, like *domain.Like) error {
	res := lg.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", like.PostID, like.UserID).
		Delete(&domain.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "You cannot unlike a post you have not liked.")
	}
	return nil
}
