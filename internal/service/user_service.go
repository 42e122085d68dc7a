package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// UserService manages accounts and the per-user views of other resources.
type UserService struct {
	users      repository.UserRepository
	books      repository.BookRepository
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
	likes      repository.LikeRepository
	carts      repository.CartRepository
	orders     repository.OrderRepository
	bcryptCost int
}

// UserDependencies bundles repositories for the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	BookRepo    repository.BookRepository
	ReviewRepo  repository.ReviewRepository
	CommentRepo repository.CommentRepository
	LikeRepo    repository.LikeRepository
	CartRepo    repository.CartRepository
	OrderRepo   repository.OrderRepository
	BcryptCost  int
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		books:      deps.BookRepo,
		reviews:    deps.ReviewRepo,
		comments:   deps.CommentRepo,
		likes:      deps.LikeRepo,
		carts:      deps.CartRepo,
		orders:     deps.OrderRepo,
		bcryptCost: deps.BcryptCost,
	}
}

// RegisterInput describes a sign-up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Gender   *domain.Gender
}

// UserUpdateInput carries the optional profile changes.
type UserUpdateInput struct {
	Name     *string
	Gender   *domain.Gender
	Password *string
}

// Register creates a USER account. Emails are unique.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		Gender:       in.Gender,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, userError(err)
	}
	return user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) (Page[domain.User], error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return Page[domain.User]{}, apperrors.MapError(err)
	}
	return newPage(users, filter.ListQuery, total), nil
}

// Update applies profile changes; a new password is re-hashed and signs out every refresh token.
func (s *UserService) Update(ctx context.Context, id int64, in UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Gender != nil {
		user.Gender = in.Gender
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
		user.RefreshToken = nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// Delete removes the account and, through cascades, everything it owns.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return userError(err)
	}
	return nil
}

func (s *UserService) ensureUser(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return userError(err)
	}
	return nil
}

// Reviews lists the reviews written by the user.
func (s *UserService) Reviews(ctx context.Context, userID int64) ([]domain.Review, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByUser(ctx, userID)
	return reviews, apperrors.MapError(err)
}

// Comments lists the comments written by the user.
func (s *UserService) Comments(ctx context.Context, userID int64) ([]domain.Comment, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByUser(ctx, userID)
	return comments, apperrors.MapError(err)
}

// Likes lists what the user liked of the given kind.
func (s *UserService) Likes(ctx context.Context, userID int64, target domain.LikeTarget) ([]domain.Like, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	likes, err := s.likes.ListByUser(ctx, target, userID)
	return likes, apperrors.MapError(err)
}

// Favorites lists the user's favorite books.
func (s *UserService) Favorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	favorites, err := s.books.ListFavoritesByUser(ctx, userID)
	return favorites, apperrors.MapError(err)
}

// Carts lists the user's cart lines.
func (s *UserService) Carts(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.carts.ListByUser(ctx, userID)
	return items, apperrors.MapError(err)
}

// Orders lists the user's orders, newest first.
func (s *UserService) Orders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	return orders, apperrors.MapError(err)
}
