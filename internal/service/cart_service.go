package service

import (
	"context"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// CartService manages cart lines.
type CartService struct {
	carts repository.CartRepository
	users repository.UserRepository
	books repository.BookRepository
}

// NewCartService builds the service.
func NewCartService(carts repository.CartRepository, users repository.UserRepository, books repository.BookRepository) *CartService {
	return &CartService{carts: carts, users: users, books: books}
}

// CartAddInput describes a book being put in a cart.
type CartAddInput struct {
	UserID   int64
	BookID   int64
	Quantity int
}

// Add puts a book in the user's cart. An existing line for the same book has its
// quantity increased and created is false.
func (s *CartService) Add(ctx context.Context, in CartAddInput) (item *domain.CartItem, created bool, err error) {
	if in.Quantity < 1 {
		return nil, false, apperrors.NewValidationError("quantity must be at least 1", map[string]any{"quantity": in.Quantity})
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, false, userError(err)
	}
	if _, err := s.books.GetByID(ctx, in.BookID); err != nil {
		return nil, false, storageError(err, "book")
	}

	line := &domain.CartItem{UserID: in.UserID, BookID: in.BookID, Quantity: in.Quantity}
	created, err = s.carts.AddOrIncrement(ctx, line)
	if err != nil {
		return nil, false, storageError(err, "cart item")
	}
	item, err = s.carts.GetByID(ctx, line.ID)
	if err != nil {
		return nil, false, storageError(err, "cart item")
	}
	return item, created, nil
}

// Get returns a cart line visible to the caller.
func (s *CartService) Get(ctx context.Context, caller *domain.IdentityClaim, id int64) (*domain.CartItem, error) {
	item, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "cart item")
	}
	if err := auth.SelfOrAdmin(caller, item.UserID); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateQuantity sets the quantity of a cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, caller *domain.IdentityClaim, id int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, apperrors.NewValidationError("quantity must be at least 1", map[string]any{"quantity": quantity})
	}
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	item, err := s.carts.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		return nil, storageError(err, "cart item")
	}
	return item, nil
}

// Delete removes a cart line.
func (s *CartService) Delete(ctx context.Context, caller *domain.IdentityClaim, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	return storageError(s.carts.Delete(ctx, id), "cart item")
}

// List returns one page of all cart lines.
func (s *CartService) List(ctx context.Context, q repository.ListQuery) (Page[domain.CartItem], error) {
	items, total, err := s.carts.List(ctx, q)
	if err != nil {
		return Page[domain.CartItem]{}, apperrors.MapError(err)
	}
	return newPage(items, q, total), nil
}

// ListByUser returns every line in a user's cart.
func (s *CartService) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, userError(err)
	}
	items, err := s.carts.ListByUser(ctx, userID)
	return items, apperrors.MapError(err)
}
