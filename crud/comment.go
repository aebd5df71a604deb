package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"wtfSocial/domain"
	"wtfSocial/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

type commentValidator struct {
	commentGorm
}

type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	err := runCommentValFns(comment,
		cv.idsRequired,
		cv.contentMinLength)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(ctx, comment)
}

func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

type commentValFn func(comment *domain.Comment) error

func (cv *commentValidator) idsRequired(comment *domain.Comment) error {
	if comment.AuthorID == "" || comment.PostID == "" {
		return errs.Errorf(errs.EINVALID, "A comment needs an author and a post.")
	}
	return nil
}

func (cv *commentValidator) contentMinLength(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Content is required")
	}
	return nil
}

// Create stores the comment and fills in its author summary.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	if err := cg.db.WithContext(ctx).Create(comment).Error; err != nil {
		return storeErr(err, "")
	}
	authors, err := summaries(cg.db.WithContext(ctx), []string{comment.AuthorID})
	if err != nil {
		return err
	}
	comment.Author = authors[comment.AuthorID]
	return nil
}
