package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.authorIDRequired,
		pv.contentMinLength,
		pv.imageNormalize)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errs.Errorf(errs.EINVALID, "A post id is required.")
	}
	return pv.postGorm.Delete(ctx, id)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn = func(post *domain.Post) error

func (pv *postValidator) authorIDRequired(post *domain.Post) error {
	if post.AuthorID == "" {
		return errs.Errorf(errs.EINVALID, "A post needs an author.")
	}
	return nil
}

// contentMinLength makes sure that the Post's content is not blank.
func (pv *postValidator) contentMinLength(post *domain.Post) error {
	if strings.TrimSpace(post.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Content is required")
	}
	return nil
}

// imageNormalize stores posts without an image url as NULL.
func (pv *postValidator) imageNormalize(post *domain.Post) error {
	if post.Image == nil {
		return nil
	}
	if img := strings.TrimSpace(*post.Image); img != "" {
		post.Image = &img
	} else {
		post.Image = nil
	}
	return nil
}

// ByID retrieves a single Post by ID, without its associations.
// If the record doesn't exist, it returns errs.ENOTFOUND.
func (pg *postGorm) ByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	db := pg.db.WithContext(ctx).Where("id = ?", id)
	if err := first(db, &post, "Post not found"); err != nil {
		return nil, err
	}
	return &post, nil
}

// Feed retrieves the posts matching filter, newest first. Each post comes with
// its comments (oldest first), its likes, the author summaries of the post and
// its comments, and the like and comment counts.
func (pg *postGorm) Feed(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	db := pg.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at asc")
		}).
		Preload("Likes").
		Order("posts.created_at desc")
	if filter.AuthorID != "" {
		db = db.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.LikedBy != "" {
		db = db.Where("EXISTS (SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?)", filter.LikedBy)
	}
	posts := []domain.Post{}
	if err := db.Find(&posts).Error; err != nil {
		return nil, err
	}
	if err := pg.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachAuthors fills in the author summaries and counts of the given posts and their comments.
func (pg *postGorm) attachAuthors(ctx context.Context, posts []domain.Post) error {
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
		for _, c := range p.Comments {
			ids = append(ids, c.AuthorID)
		}
	}
	authors, err := summaries(pg.db.WithContext(ctx), ids)
	if err != nil {
		return err
	}
	for i := range posts {
		p := &posts[i]
		p.Author = authors[p.AuthorID]
		if p.Comments == nil {
			p.Comments = []domain.Comment{}
		}
		if p.Likes == nil {
			p.Likes = []domain.Like{}
		}
		for j := range p.Comments {
			p.Comments[j].Author = authors[p.Comments[j].AuthorID]
		}
		p.Counts = domain.PostCounts{
			Likes:    len(p.Likes),
			Comments: len(p.Comments),
		}
	}
	return nil
}

// Create stores the data from the Post object in a new database record.
// On success, the author summary is filled in so the post can be rendered right away.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	if err := pg.db.WithContext(ctx).Create(post).Error; err != nil {
		return storeErr(err, "")
	}
	post.Comments = []domain.Comment{}
	post.Likes = []domain.Like{}
	authors, err := summaries(pg.db.WithContext(ctx), []string{post.AuthorID})
	if err != nil {
		return err
	}
	post.Author = authors[post.AuthorID]
	return nil
}

// Delete permanently deletes a Post record from the database, along with its
// notifications, likes and comments. The foreign keys cascade as well, the explicit
// deletes make the outcome independent of the driver enforcing them.
// Called inside RunAtomic the nested transaction becomes a savepoint.
func (pg *postGorm) Delete(ctx context.Context, id string) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Errorf(errs.ENOTFOUND, "Post not found")
		}
		return nil
	})
}
