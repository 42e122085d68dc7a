package service

import (
	"context"
	"errors"

	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// LikeService records likes on reviews and comments. The caller is always the liker.
type LikeService struct {
	likes    repository.LikeRepository
	reviews  repository.ReviewRepository
	comments repository.CommentRepository
}

// NewLikeService builds the service.
func NewLikeService(likes repository.LikeRepository, reviews repository.ReviewRepository, comments repository.CommentRepository) *LikeService {
	return &LikeService{likes: likes, reviews: reviews, comments: comments}
}

// Like records that the caller likes the target. Liking twice is a conflict.
func (s *LikeService) Like(ctx context.Context, caller *domain.IdentityClaim, target domain.LikeTarget, targetID int64) (*domain.Like, error) {
	if err := s.ensureTarget(ctx, target, targetID); err != nil {
		return nil, err
	}
	like, err := s.likes.Add(ctx, target, caller.SubjectID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(string(target)+" already liked", map[string]any{"targetId": targetID})
		}
		return nil, storageError(err, "like")
	}
	return like, nil
}

// Unlike removes the caller's like.
func (s *LikeService) Unlike(ctx context.Context, caller *domain.IdentityClaim, target domain.LikeTarget, targetID int64) error {
	if err := s.ensureTarget(ctx, target, targetID); err != nil {
		return err
	}
	return storageError(s.likes.Remove(ctx, target, caller.SubjectID, targetID), "like")
}

// List returns the likes of a review or comment.
func (s *LikeService) List(ctx context.Context, target domain.LikeTarget, targetID int64) ([]domain.Like, error) {
	if err := s.ensureTarget(ctx, target, targetID); err != nil {
		return nil, err
	}
	likes, err := s.likes.ListByTarget(ctx, target, targetID)
	return likes, apperrors.MapError(err)
}

func (s *LikeService) ensureTarget(ctx context.Context, target domain.LikeTarget, id int64) error {
	switch target {
	case domain.LikeTargetReview:
		_, err := s.reviews.GetByID(ctx, id)
		return storageError(err, "review")
	case domain.LikeTargetComment:
		_, err := s.comments.GetByID(ctx, id)
		return storageError(err, "comment")
	}
	return apperrors.NewBadRequest("unknown like target")
}
