package service

import (
	"context"
	"strings"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// CommentService manages comments on reviews.
type CommentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
	users    repository.UserRepository
}

// NewCommentService builds the service.
func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository, users repository.UserRepository) *CommentService {
	return &CommentService{comments: comments, reviews: reviews, users: users}
}

// CommentInput describes a new comment.
type CommentInput struct {
	UserID   int64
	ReviewID int64
	Comment  string
}

// Create stores a comment on a review.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (*domain.Comment, error) {
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, userError(err)
	}
	if _, err := s.reviews.GetByID(ctx, in.ReviewID); err != nil {
		return nil, storageError(err, "review")
	}
	comment := &domain.Comment{
		UserID:   in.UserID,
		ReviewID: in.ReviewID,
		Comment:  strings.TrimSpace(in.Comment),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storageError(err, "comment")
	}
	return s.Get(ctx, comment.ID)
}

// Get returns a comment.
func (s *CommentService) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "comment")
	}
	return comment, nil
}

// List returns one page of comments.
func (s *CommentService) List(ctx context.Context, q repository.ListQuery) (Page[domain.Comment], error) {
	comments, total, err := s.comments.List(ctx, q)
	if err != nil {
		return Page[domain.Comment]{}, apperrors.MapError(err)
	}
	return newPage(comments, q, total), nil
}

// Update edits the text of a comment owned by the caller, or any comment for admins.
func (s *CommentService) Update(ctx context.Context, caller *domain.IdentityClaim, id int64, text string) (*domain.Comment, error) {
	comment, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	comment.Comment = strings.TrimSpace(text)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storageError(err, "comment")
	}
	return s.Get(ctx, id)
}

// Delete removes a comment and its likes.
func (s *CommentService) Delete(ctx context.Context, caller *domain.IdentityClaim, id int64) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	return storageError(s.comments.Delete(ctx, id), "comment")
}

func (s *CommentService) owned(ctx context.Context, caller *domain.IdentityClaim, id int64) (*domain.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.SelfOrAdmin(caller, comment.UserID); err != nil {
		return nil, err
	}
	return comment, nil
}
