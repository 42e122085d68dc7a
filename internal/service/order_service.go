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

// TopBooksLimit is the length of the best-seller ranking in order statistics.
const TopBooksLimit = 5

// OrderService places and manages orders.
type OrderService struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	books      repository.BookRepository
	dispatcher events.Dispatcher
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo  repository.OrderRepository
	UserRepo   repository.UserRepository
	BookRepo   repository.BookRepository
	Dispatcher events.Dispatcher
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:     deps.OrderRepo,
		users:      deps.UserRepo,
		books:      deps.BookRepo,
		dispatcher: deps.Dispatcher,
	}
}

// OrderItemInput is one requested book line.
type OrderItemInput struct {
	BookID   int64
	Quantity int
}

// OrderCreateInput describes an order being placed.
type OrderCreateInput struct {
	UserID          int64
	DeliveryAddress string
	Items           []OrderItemInput
}

// Create prices every line at the current book price and stores the order as PENDING.
// Repeated books are merged into one line.
func (s *OrderService) Create(ctx context.Context, actor *domain.IdentityClaim, in OrderCreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.NewValidationError("order must contain at least one item", nil)
	}
	buyer, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, userError(err)
	}

	quantities := make(map[int64]int, len(in.Items))
	var bookIDs []int64
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, apperrors.NewValidationError("quantity must be at least 1", map[string]any{"bookId": item.BookID})
		}
		if _, seen := quantities[item.BookID]; !seen {
			bookIDs = append(bookIDs, item.BookID)
		}
		quantities[item.BookID] += item.Quantity
	}

	refs, err := s.books.RefsByIDs(ctx, bookIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	order := &domain.Order{
		UserID:          in.UserID,
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		Status:          domain.OrderStatusPending,
	}
	for _, id := range bookIDs {
		ref, ok := refs[id]
		if !ok {
			return nil, apperrors.NewNotFound("book", map[string]any{"bookId": id})
		}
		qty := quantities[id]
		order.Items = append(order.Items, domain.OrderItem{
			BookID:          id,
			Quantity:        qty,
			PriceAtPurchase: ref.Price,
		})
		order.TotalPrice += ref.Price * int64(qty)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storageError(err, "order")
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventOrderPlaced, events.ActorFrom(actor), events.OrderPlacedPayload{
			OrderID:    order.ID,
			UserID:     order.UserID,
			Email:      buyer.Email,
			TotalPrice: order.TotalPrice,
			ItemCount:  len(order.Items),
		}))
	}

	created, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, storageError(err, "order")
	}
	return created, nil
}

// Get returns an order visible to the caller.
func (s *OrderService) Get(ctx context.Context, caller *domain.IdentityClaim, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "order")
	}
	if err := auth.SelfOrAdmin(caller, order.UserID); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order to another fulfilment state.
func (s *OrderService) UpdateStatus(ctx context.Context, caller *domain.IdentityClaim, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid orderStatus", map[string]any{"orderStatus": status})
	}
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, storageError(err, "order")
	}
	return order, nil
}

// Delete removes an order and its items.
func (s *OrderService) Delete(ctx context.Context, caller *domain.IdentityClaim, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	return storageError(s.orders.Delete(ctx, id), "order")
}

// List returns one page of all orders.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) (Page[domain.Order], error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return Page[domain.Order]{}, apperrors.MapError(err)
	}
	return newPage(orders, filter.ListQuery, total), nil
}

// ListByUser returns every order of a user, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, userError(err)
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	return orders, apperrors.MapError(err)
}

// Statistics summarizes sales for administrators.
func (s *OrderService) Statistics(ctx context.Context) (*domain.OrderStatistics, error) {
	stats, err := s.orders.Statistics(ctx, TopBooksLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}
