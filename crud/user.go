package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// UserService manages Users. It implements the domain.UserService interface.
// Users are created on first sign in from the claims of the identity provider,
// so there are no passwords or tokens to take care of here.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	emailRegex  *regexp.Regexp
	handleRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userValidator{
			emailRegex:  regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			handleRegex: regexp.MustCompile(`^[a-z0-9_]{1,30}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.externalIDRequired,
		uv.emailNormalize,
		uv.emailFormat,
		uv.handleNormalize,
		uv.handleFormat)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// ByHandle normalizes the handle before looking it up, so "@Alice" finds "alice".
func (uv *userValidator) ByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return uv.userGorm.ByHandle(ctx, normalizeHandle(handle))
}

// Profile normalizes the handle the same way ByHandle does.
func (uv *userValidator) Profile(ctx context.Context, handle string) (*domain.Profile, error) {
	return uv.userGorm.Profile(ctx, normalizeHandle(handle))
}

// UpdateProfile runs validations on the profile fields before writing them
// to the user linked to externalID.
func (uv *userValidator) UpdateProfile(ctx context.Context, externalID string, upd *domain.ProfileUpdate) (*domain.User, error) {
	if externalID == "" {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, "You must be signed in.")
	}
	err := runProfileValFns(upd, uv.profileTrim)
	if err != nil {
		return nil, err
	}
	return uv.userGorm.UpdateProfile(ctx, externalID, upd)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

func runProfileValFns(upd *domain.ProfileUpdate, fns ...profileValFn) error {
	for _, fn := range fns {
		if err := fn(upd); err != nil {
			return err
		}
	}
	return nil
}

type profileValFn func(upd *domain.ProfileUpdate) error

// externalIDRequired makes sure every user is linked to an identity.
func (uv *userValidator) externalIDRequired(user *domain.User) error {
	if strings.TrimSpace(user.ExternalID) == "" {
		return errs.Errorf(errs.EINVALID, "An external identity is required.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == nil {
		return nil
	}
	if !uv.emailRegex.MatchString(*user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
// A blank email is stored as NULL.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	if user.Email == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(*user.Email))
	if email == "" {
		user.Email = nil
	} else {
		user.Email = &email
	}
	return nil
}

func (uv *userValidator) handleNormalize(user *domain.User) error {
	user.Handle = normalizeHandle(user.Handle)
	return nil
}

// handleFormat allows lowercase letters, digits and underscores, at most 30 of them.
func (uv *userValidator) handleFormat(user *domain.User) error {
	if !uv.handleRegex.MatchString(user.Handle) {
		return errs.Errorf(errs.EINVALID, "The handle may only contain letters, digits and underscores.")
	}
	return nil
}

func (uv *userValidator) profileTrim(upd *domain.ProfileUpdate) error {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Bio = strings.TrimSpace(upd.Bio)
	upd.Location = strings.TrimSpace(upd.Location)
	upd.Website = strings.TrimSpace(upd.Website)
	return nil
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("id = ?", id)
	if err := first(db, &user, "The user does not exist."); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByHandle retrieves a User database record by its unique handle.
func (ug *userGorm) ByHandle(ctx context.Context, handle string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("handle = ?", handle)
	if err := first(db, &user, "The user does not exist."); err != nil {
		return nil, err
	}
	return &user, nil
}

// ByExternalID retrieves the User linked to an identity provider subject.
// The auth middleware calls this on every authenticated request.
func (ug *userGorm) ByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("external_id = ?", externalID)
	if err := first(db, &user, "The user does not exist."); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Create(user).Error
	if err != nil {
		return storeErr(err, "The email address or handle is already taken.")
	}
	return nil
}

// UpdateProfile writes every profile field, empty ones included, and returns the
// updated user.
func (ug *userGorm) UpdateProfile(ctx context.Context, externalID string, upd *domain.ProfileUpdate) (*domain.User, error) {
	user, err := ug.ByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	err = ug.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"name":     upd.Name,
		"bio":      upd.Bio,
		"location": upd.Location,
		"website":  upd.Website,
	}).Error
	if err != nil {
		return nil, storeErr(err, "")
	}
	user.Name, user.Bio, user.Location, user.Website = upd.Name, upd.Bio, upd.Location, upd.Website
	return user, nil
}

// Profile retrieves the public profile of the user with the given handle,
// along with the number of followers, followings and posts.
func (ug *userGorm) Profile(ctx context.Context, handle string) (*domain.Profile, error) {
	user, err := ug.ByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	profile := domain.Profile{
		ID:        user.ID,
		Name:      user.Name,
		Handle:    user.Handle,
		Bio:       user.Bio,
		Image:     user.Image,
		Website:   user.Website,
		Location:  user.Location,
		CreatedAt: user.CreatedAt,
	}
	db := ug.db.WithContext(ctx)
	if err := db.Model(&domain.Follow{}).Where("following_id = ?", user.ID).Count(&profile.Counts.Followers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Follow{}).Where("follower_id = ?", user.ID).Count(&profile.Counts.Following).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Post{}).Where("author_id = ?", user.ID).Count(&profile.Counts.Posts).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// summaries loads the public summaries of the given users, keyed by user id.
func summaries(db *gorm.DB, ids []string) (map[string]domain.UserSummary, error) {
	out := make(map[string]domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []domain.UserSummary
	err := db.Model(&domain.User{}).
		Select("id", "name", "handle", "image").
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	for _, s := range found {
		out[s.ID] = s
	}
	return out, nil
}

// first is a helper for getting the first database record that matches a given query.
// A missing record comes back as an ENOTFOUND error carrying notFound as its message.
func first(db *gorm.DB, dst interface{}, notFound string) error {
	err := db.First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Errorf(errs.ENOTFOUND, "%s", notFound)
	}
	return err
}

// storeErr turns a unique constraint violation into an ECONFLICT error carrying
// conflict as its message. Other errors are returned unchanged.
func storeErr(err error, conflict string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if conflict == "" {
			conflict = "The record already exists."
		}
		return errs.Wrap(errs.ECONFLICT, conflict, err)
	}
	return err
}
