package crud

import (
	"context"

	"gorm.io/gorm"

	"wtfSocial/domain"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
// It implements domain.Store, so it is what gets handed to the action layer.
type Services struct {
	db   *gorm.DB
	cfgs []ServicesConfig

	User         *UserService
	Post         *PostService
	Comment      *CommentService
	Like         *LikeService
	Follow       *FollowService
	Notification *NotificationService
}

var _ domain.Store = &Services{}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db:   db,
		cfgs: cfgs,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// NewAllServices creates a Services object with every crud service.
func NewAllServices(db *gorm.DB) (*Services, error) {
	return NewServices(db,
		WithUser(),
		WithPost(),
		WithComment(),
		WithLike(),
		WithFollow(),
		WithNotification())
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser() ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService.
func WithPost() ServicesConfig {
	return func(s *Services) error {
		s.Post = NewPostService(s.db)
		return nil
	}
}

// WithComment wraps the constructor of CommentService, NewCommentService.
func WithComment() ServicesConfig {
	return func(s *Services) error {
		s.Comment = NewCommentService(s.db)
		return nil
	}
}

// WithLike wraps the constructor of LikeService, NewLikeService.
func WithLike() ServicesConfig {
	return func(s *Services) error {
		s.Like = NewLikeService(s.db)
		return nil
	}
}

// WithFollow wraps the constructor of FollowService, NewFollowService.
func WithFollow() ServicesConfig {
	return func(s *Services) error {
		s.Follow = NewFollowService(s.db)
		return nil
	}
}

// WithNotification wraps the constructor of NotificationService, NewNotificationService.
func WithNotification() ServicesConfig {
	return func(s *Services) error {
		s.Notification = NewNotificationService(s.db)
		return nil
	}
}

func (s *Services) Users() domain.UserService                 { return s.User }
func (s *Services) Posts() domain.PostService                 { return s.Post }
func (s *Services) Comments() domain.CommentService           { return s.Comment }
func (s *Services) Likes() domain.LikeService                 { return s.Like }
func (s *Services) Follows() domain.FollowService             { return s.Follow }
func (s *Services) Notifications() domain.NotificationService { return s.Notification }

// RunAtomic runs fn inside a database transaction. The Store handed to fn holds
// the same set of services as s, all bound to the transaction.
func (s *Services) RunAtomic(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs, err := NewServices(tx, s.cfgs...)
		if err != nil {
			return err
		}
		return fn(txs)
	})
}

// AutoMigrate attempts to automatically migrate all tables.
// Production databases are migrated with the SQL files under migrations/ instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Like{},
		&domain.Follow{},
		&domain.Notification{},
	)
}
