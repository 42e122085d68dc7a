package service

import (
	"context"
	"strings"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/events"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// ReviewService manages book reviews and their comment threads.
type ReviewService struct {
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	books      repository.BookRepository
	dispatcher events.Dispatcher
}

// ReviewDependencies bundles collaborators for the review service.
type ReviewDependencies struct {
	ReviewRepo  repository.ReviewRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	BookRepo    repository.BookRepository
	Dispatcher  events.Dispatcher
}

// NewReviewService builds the service.
func NewReviewService(deps ReviewDependencies) *ReviewService {
	return &ReviewService{
		reviews:    deps.ReviewRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		books:      deps.BookRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ReviewInput describes a new review.
type ReviewInput struct {
	UserID  int64
	BookID  int64
	Rating  int
	Comment string
}

// ReviewUpdateInput carries optional review changes.
type ReviewUpdateInput struct {
	Rating  *int
	Comment *string
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	return nil
}

// Create stores a review of a book.
func (s *ReviewService) Create(ctx context.Context, actor *domain.IdentityClaim, in ReviewInput) (*domain.Review, error) {
	if err := validRating(in.Rating); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, userError(err)
	}
	if _, err := s.books.GetByID(ctx, in.BookID); err != nil {
		return nil, storageError(err, "book")
	}

	review := &domain.Review{
		UserID:  in.UserID,
		BookID:  in.BookID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, storageError(err, "review")
	}
	s.bookReviewed(ctx, actor, review.BookID)
	return s.load(ctx, review.ID)
}

// Get returns a review.
func (s *ReviewService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	return s.load(ctx, id)
}

// List returns one page of reviews.
func (s *ReviewService) List(ctx context.Context, filter repository.ReviewFilter) (Page[domain.Review], error) {
	reviews, total, err := s.reviews.List(ctx, filter)
	if err != nil {
		return Page[domain.Review]{}, apperrors.MapError(err)
	}
	return newPage(reviews, filter.ListQuery, total), nil
}

// Update edits a review owned by the caller, or any review for admins.
func (s *ReviewService) Update(ctx context.Context, caller *domain.IdentityClaim, id int64, in ReviewUpdateInput) (*domain.Review, error) {
	review, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		if err := validRating(*in.Rating); err != nil {
			return nil, err
		}
		review.Rating = *in.Rating
	}
	if in.Comment != nil {
		review.Comment = strings.TrimSpace(*in.Comment)
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, storageError(err, "review")
	}
	return s.load(ctx, id)
}

// Delete removes a review with its comments and likes.
func (s *ReviewService) Delete(ctx context.Context, caller *domain.IdentityClaim, id int64) error {
	review, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return storageError(err, "review")
	}
	s.bookReviewed(ctx, caller, review.BookID)
	return nil
}

// Comments lists a review's comments, oldest first.
func (s *ReviewService) Comments(ctx context.Context, id int64) ([]domain.Comment, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByReview(ctx, id)
	return comments, apperrors.MapError(err)
}

func (s *ReviewService) load(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "review")
	}
	return review, nil
}

func (s *ReviewService) owned(ctx context.Context, caller *domain.IdentityClaim, id int64) (*domain.Review, error) {
	review, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.SelfOrAdmin(caller, review.UserID); err != nil {
		return nil, err
	}
	return review, nil
}

// bookReviewed refreshes cached review counts of the book.
func (s *ReviewService) bookReviewed(ctx context.Context, actor *domain.IdentityClaim, bookID int64) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(context.WithoutCancel(ctx), events.New(events.EventBookChanged, events.ActorFrom(actor), events.BookChangedPayload{
		BookID: bookID,
		Change: events.BookReviewed,
	}))
}
