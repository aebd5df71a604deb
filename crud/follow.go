package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

type followValidator struct {
	followGorm
}

type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

var _ domain.FollowService = &FollowService{}

// Create runs validations needed for creating new Follow database records.
func (fv *followValidator) Create(ctx context.Context, follow *domain.Follow) error {
	err := runFollowValFns(ctx, follow,
		fv.followingIsNotFollower,
		fv.followedUserExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Create(ctx, follow)
}

// Delete runs validations needed for deleting existing Follow database records.
func (fv *followValidator) Delete(ctx context.Context, follow *domain.Follow) error {
	return fv.followGorm.Delete(ctx, follow)
}

func runFollowValFns(ctx context.Context, follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, follow); err != nil {
			return err
		}
	}
	return nil
}

type followValFn func(ctx context.Context, follow *domain.Follow) error

func (fv *followValidator) followingIsNotFollower(_ context.Context, follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowingID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself")
	}
	return nil
}

func (fv *followValidator) followedUserExists(ctx context.Context, follow *domain.Follow) error {
	db := fv.db.WithContext(ctx).Where("id = ?", follow.FollowingID)
	return first(db, &domain.User{}, "The user to be followed does not exist.")
}

// Exists reports whether followerID follows followingID.
func (fg *followGorm) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var follow domain.Follow
	err := fg.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	if err := fg.db.WithContext(ctx).Create(follow).Error; err != nil {
		return storeErr(err, "You already follow this user.")
	}
	return nil
}

func (fg *followGorm) Delete(ctx context.Context, follow *domain.Follow) error {
	res := fg.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", follow.FollowerID, follow.FollowingID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "You don't follow this user.")
	}
	return nil
}
