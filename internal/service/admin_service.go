package service

import (
	"context"
	"time"

	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/events"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// AdminService backs the administrator console.
type AdminService struct {
	users      repository.UserRepository
	orders     *OrderService
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewAdminService builds the service. A nil clock uses time.Now.
func NewAdminService(users repository.UserRepository, orders *OrderService, dispatcher events.Dispatcher, now func() time.Time) *AdminService {
	if now == nil {
		now = time.Now
	}
	return &AdminService{users: users, orders: orders, dispatcher: dispatcher, now: now}
}

// ListUsers returns one page of users matching the filter.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) (Page[domain.User], error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return Page[domain.User]{}, apperrors.MapError(err)
	}
	return newPage(users, filter.ListQuery, total), nil
}

// BanUser suspends an account and revokes its refresh token.
// Access tokens already issued stay valid until they expire.
func (s *AdminService) BanUser(ctx context.Context, actor *domain.IdentityClaim, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	if user.Banned() {
		return nil, apperrors.NewStateConflict("user is already banned", map[string]any{"userId": id})
	}

	at := s.now().UTC()
	if err := s.users.Ban(ctx, id, at); err != nil {
		return nil, userError(err)
	}
	user.BannedAt = &at
	user.RefreshToken = nil

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventUserBanned, events.ActorFrom(actor), events.UserBannedPayload{
			UserID:   user.ID,
			Email:    user.Email,
			BannedAt: at,
		}))
	}
	return user, nil
}

// OrderStatistics summarizes sales.
func (s *AdminService) OrderStatistics(ctx context.Context) (*domain.OrderStatistics, error) {
	return s.orders.Statistics(ctx)
}
