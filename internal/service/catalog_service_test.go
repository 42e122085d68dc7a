package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-api/internal/cache"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/events"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

var (
	adminClaim  = &domain.IdentityClaim{SubjectID: 100, Email: "admin@example.com", Role: domain.RoleAdmin}
	readerClaim = func(id int64) *domain.IdentityClaim {
		return &domain.IdentityClaim{SubjectID: id, Email: "reader@example.com", Role: domain.RoleUser}
	}
)

func newBookFixture(t *testing.T) (*BookService, *fakeBooks, *cache.Memory, *[]events.Event) {
	t.Helper()
	books := newFakeBooks()
	store := cache.NewMemory()
	dispatcher := events.NewInMemoryDispatcher(nil)

	var published []events.Event
	dispatcher.Subscribe(events.EventBookChanged, func(ctx context.Context, event events.Event) error {
		published = append(published, event)
		payload := event.Payload.(events.BookChangedPayload)
		if err := store.Delete(ctx, cache.BookKeys(payload.BookID)...); err != nil {
			return err
		}
		return store.DeleteByPrefix(ctx, cache.BookListPrefix)
	})

	svc := NewBookService(BookDependencies{
		BookRepo:   books,
		ReviewRepo: newFakeReviews(),
		Cache:      store,
		Dispatcher: dispatcher,
	})
	return svc, books, store, &published
}

func TestBookService_GetIsCachedUntilBookChanges(t *testing.T) {
	ctx := context.Background()
	svc, books, _, published := newBookFixture(t)

	created, err := svc.Create(ctx, adminClaim, BookInput{Title: "Dune", ISBN: "978-0441013593", Price: 1999, Publisher: "Ace"})
	require.NoError(t, err)
	require.Len(t, *published, 1)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	calls := books.gets
	cached, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Dune", cached.Title)
	require.Equal(t, calls, books.gets)

	title := "Dune Messiah"
	_, err = svc.Update(ctx, adminClaim, created.ID, BookUpdateInput{Title: &title})
	require.NoError(t, err)

	fresh, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", fresh.Title)

	last := (*published)[len(*published)-1]
	require.Equal(t, events.BookChangedPayload{BookID: created.ID, Change: events.BookUpdated}, last.Payload)
	require.Equal(t, adminClaim.SubjectID, last.Actor.UserID)
}

func TestBookService_ListPageIsCachedUntilBookChanges(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newBookFixture(t)

	_, err := svc.Create(ctx, adminClaim, BookInput{Title: "Dune", ISBN: "1", Price: 1000, Publisher: "Ace"})
	require.NoError(t, err)

	filter := repository.BookFilter{ListQuery: repository.ListQuery{Page: 1, Size: 10}}
	page, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)

	_, err = svc.Create(ctx, adminClaim, BookInput{Title: "Emma", ISBN: "2", Price: 900, Publisher: "Penguin"})
	require.NoError(t, err)

	page, err = svc.List(ctx, filter)
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
}

func TestBookService_Conflicts(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newBookFixture(t)

	book, err := svc.Create(ctx, adminClaim, BookInput{Title: "Dune", ISBN: "1", Price: 1000, Publisher: "Ace"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, adminClaim, BookInput{Title: "Copy", ISBN: "1", Price: 1000, Publisher: "Ace"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateResource))

	_, err = svc.AddFavorite(ctx, readerClaim(7), book.ID)
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, readerClaim(7), book.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateResource))

	_, err = svc.Get(ctx, 404)
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))
}

func TestBookService_EvictionOutlivesCancelledRequest(t *testing.T) {
	books := newFakeBooks()
	store := cache.NewMemory()
	dispatcher := events.NewInMemoryDispatcher(nil)

	var handlerErr error
	dispatcher.Subscribe(events.EventBookChanged, func(ctx context.Context, _ events.Event) error {
		handlerErr = ctx.Err()
		return store.DeleteByPrefix(ctx, cache.BookListPrefix)
	})
	svc := NewBookService(BookDependencies{BookRepo: books, ReviewRepo: newFakeReviews(), Cache: store, Dispatcher: dispatcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Create(ctx, adminClaim, BookInput{Title: "Dune", ISBN: "1", Price: 1000, Publisher: "Ace"})
	require.NoError(t, err)
	require.NoError(t, handlerErr)
}

type commerceFixture struct {
	users  *fakeUsers
	books  *fakeBooks
	carts  *CartService
	orders *OrderService
}

func newCommerceFixture(t *testing.T) commerceFixture {
	t.Helper()
	users := newFakeUsers()
	books := newFakeBooks()
	require.NoError(t, books.Create(context.Background(), &domain.Book{Title: "Dune", ISBN: "1", Price: 1500}, nil, nil))
	require.NoError(t, books.Create(context.Background(), &domain.Book{Title: "Emma", ISBN: "2", Price: 700}, nil, nil))
	return commerceFixture{
		users:  users,
		books:  books,
		carts:  NewCartService(newFakeCarts(), users, books),
		orders: NewOrderService(OrderDependencies{OrderRepo: newFakeOrders(), UserRepo: users, BookRepo: books}),
	}
}

func TestCartService_AddMergesSameBook(t *testing.T) {
	ctx := context.Background()
	fx := newCommerceFixture(t)
	user := seedUser(t, fx.users, "reader@example.com", "pw", domain.RoleUser)

	item, created, err := fx.carts.Add(ctx, CartAddInput{UserID: user.ID, BookID: 1, Quantity: 2})
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := fx.carts.Add(ctx, CartAddInput{UserID: user.ID, BookID: 1, Quantity: 3})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, item.ID, again.ID)
	require.Equal(t, 5, again.Quantity)

	_, _, err = fx.carts.Add(ctx, CartAddInput{UserID: user.ID, BookID: 1, Quantity: 0})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, _, err = fx.carts.Add(ctx, CartAddInput{UserID: user.ID, BookID: 42, Quantity: 1})
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))
}

func TestCartService_OnlyOwnerOrAdminTouchesLine(t *testing.T) {
	ctx := context.Background()
	fx := newCommerceFixture(t)
	owner := seedUser(t, fx.users, "owner@example.com", "pw", domain.RoleUser)

	item, _, err := fx.carts.Add(ctx, CartAddInput{UserID: owner.ID, BookID: 2, Quantity: 1})
	require.NoError(t, err)

	_, err = fx.carts.UpdateQuantity(ctx, readerClaim(owner.ID+1), item.ID, 4)
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	updated, err := fx.carts.UpdateQuantity(ctx, adminClaim, item.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, updated.Quantity)

	require.NoError(t, fx.carts.Delete(ctx, readerClaim(owner.ID), item.ID))
	_, err = fx.carts.Get(ctx, adminClaim, item.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))
}

func TestOrderService_CreatePricesLinesAtCurrentPrice(t *testing.T) {
	ctx := context.Background()
	fx := newCommerceFixture(t)
	user := seedUser(t, fx.users, "reader@example.com", "pw", domain.RoleUser)

	dispatcher := events.NewInMemoryDispatcher(nil)
	var placed []events.OrderPlacedPayload
	dispatcher.Subscribe(events.EventOrderPlaced, func(_ context.Context, event events.Event) error {
		placed = append(placed, event.Payload.(events.OrderPlacedPayload))
		return nil
	})
	fx.orders.dispatcher = dispatcher

	order, err := fx.orders.Create(ctx, readerClaim(user.ID), OrderCreateInput{
		UserID:          user.ID,
		DeliveryAddress: " 221B Baker Street ",
		Items: []OrderItemInput{
			{BookID: 1, Quantity: 2},
			{BookID: 2, Quantity: 1},
			{BookID: 1, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.Equal(t, "221B Baker Street", order.DeliveryAddress)
	require.Len(t, order.Items, 2)
	require.EqualValues(t, 3*1500+700, order.TotalPrice)
	require.Equal(t, []events.OrderPlacedPayload{{OrderID: order.ID, UserID: user.ID, Email: user.Email, TotalPrice: order.TotalPrice, ItemCount: 2}}, placed)

	_, err = fx.orders.Create(ctx, readerClaim(user.ID), OrderCreateInput{UserID: user.ID, Items: []OrderItemInput{{BookID: 9, Quantity: 1}}})
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))

	_, err = fx.orders.Create(ctx, readerClaim(user.ID), OrderCreateInput{UserID: user.ID})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	fx := newCommerceFixture(t)
	user := seedUser(t, fx.users, "reader@example.com", "pw", domain.RoleUser)

	order, err := fx.orders.Create(ctx, readerClaim(user.ID), OrderCreateInput{UserID: user.ID, Items: []OrderItemInput{{BookID: 2, Quantity: 1}}})
	require.NoError(t, err)

	_, err = fx.orders.UpdateStatus(ctx, adminClaim, order.ID, domain.OrderStatus("LOST"))
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	updated, err := fx.orders.UpdateStatus(ctx, adminClaim, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, updated.Status)

	stats, err := fx.orders.Statistics(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalOrders)
	require.EqualValues(t, 700, stats.TotalSales)
}

func TestReviewService_RatingAndOwnership(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	books := newFakeBooks()
	require.NoError(t, books.Create(ctx, &domain.Book{Title: "Dune", ISBN: "1", Price: 1500}, nil, nil))
	author := seedUser(t, users, "author@example.com", "pw", domain.RoleUser)
	comments := newFakeComments()
	svc := NewReviewService(ReviewDependencies{
		ReviewRepo:  newFakeReviews(),
		CommentRepo: comments,
		UserRepo:    users,
		BookRepo:    books,
	})

	_, err := svc.Create(ctx, readerClaim(author.ID), ReviewInput{UserID: author.ID, BookID: 1, Rating: 6})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	review, err := svc.Create(ctx, readerClaim(author.ID), ReviewInput{UserID: author.ID, BookID: 1, Rating: 4, Comment: "solid"})
	require.NoError(t, err)

	rating := 5
	_, err = svc.Update(ctx, readerClaim(author.ID+1), review.ID, ReviewUpdateInput{Rating: &rating})
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	updated, err := svc.Update(ctx, readerClaim(author.ID), review.ID, ReviewUpdateInput{Rating: &rating})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Rating)

	commentSvc := NewCommentService(comments, svc.reviews, users)
	_, err = commentSvc.Create(ctx, CommentInput{UserID: author.ID, ReviewID: review.ID, Comment: "agreed"})
	require.NoError(t, err)
	thread, err := svc.Comments(ctx, review.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)

	require.NoError(t, svc.Delete(ctx, adminClaim, review.ID))
	_, err = svc.Get(ctx, review.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))
}

func TestLikeService_LikeOnce(t *testing.T) {
	ctx := context.Background()
	reviews := newFakeReviews()
	comments := newFakeComments()
	require.NoError(t, reviews.Create(ctx, &domain.Review{UserID: 1, BookID: 1, Rating: 3}))
	svc := NewLikeService(newFakeLikes(), reviews, comments)

	_, err := svc.Like(ctx, readerClaim(2), domain.LikeTargetReview, 1)
	require.NoError(t, err)
	_, err = svc.Like(ctx, readerClaim(2), domain.LikeTargetReview, 1)
	require.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateResource))

	likes, err := svc.List(ctx, domain.LikeTargetReview, 1)
	require.NoError(t, err)
	require.Len(t, likes, 1)

	_, err = svc.Like(ctx, readerClaim(2), domain.LikeTargetComment, 1)
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))

	require.NoError(t, svc.Unlike(ctx, readerClaim(2), domain.LikeTargetReview, 1))
	err = svc.Unlike(ctx, readerClaim(2), domain.LikeTargetReview, 1)
	require.True(t, apperrors.HasCode(err, apperrors.CodeResourceNotFound))
}

func TestAdminService_BanUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	user := seedUser(t, users, "reader@example.com", "pw", domain.RoleUser)

	dispatcher := events.NewInMemoryDispatcher(nil)
	var banned []events.UserBannedPayload
	dispatcher.Subscribe(events.EventUserBanned, func(_ context.Context, event events.Event) error {
		banned = append(banned, event.Payload.(events.UserBannedPayload))
		return nil
	})
	svc := NewAdminService(users, nil, dispatcher, nil)

	result, err := svc.BanUser(ctx, adminClaim, user.ID)
	require.NoError(t, err)
	require.NotNil(t, result.BannedAt)
	require.Len(t, banned, 1)
	require.Equal(t, user.Email, banned[0].Email)

	_, err = svc.BanUser(ctx, adminClaim, user.ID)
	require.True(t, apperrors.HasCode(err, apperrors.CodeStateConflict))

	_, err = svc.BanUser(ctx, adminClaim, 999)
	require.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))

	page, err := svc.ListUsers(ctx, repository.UserFilter{ListQuery: repository.ListQuery{Page: 1, Size: 10}})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, 1, page.TotalPages())
}
