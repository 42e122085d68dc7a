package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.byID[user.ID] = *user
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[user.ID] = *user
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []domain.User
	for _, user := range f.byID {
		if filter.Role == nil || user.Role == *filter.Role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, int64(len(users)), nil
}

func (f *fakeUsers) UpdateRefreshToken(_ context.Context, id int64, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RefreshToken = token
	f.byID[id] = user
	return nil
}

func (f *fakeUsers) Ban(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.BannedAt = &at
	user.RefreshToken = nil
	f.byID[id] = user
	return nil
}

type fakeBooks struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]domain.Book
	favorites map[[2]int64]domain.Favorite
	gets      int
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{byID: map[int64]domain.Book{}, favorites: map[[2]int64]domain.Favorite{}}
}

func (f *fakeBooks) Create(_ context.Context, book *domain.Book, _, _ []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.ISBN == book.ISBN {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	book.ID = f.nextID
	f.byID[book.ID] = *book
	return nil
}

func (f *fakeBooks) Update(_ context.Context, book *domain.Book, _, _ []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[book.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[book.ID] = *book
	return nil
}

func (f *fakeBooks) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeBooks) GetByID(_ context.Context, id int64) (*domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	book, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &book, nil
}

func (f *fakeBooks) List(_ context.Context, _ repository.BookFilter) ([]domain.Book, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var books []domain.Book
	for _, book := range f.byID {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, int64(len(books)), nil
}

func (f *fakeBooks) ListPopular(ctx context.Context, limit int) ([]domain.Book, error) {
	books, _, err := f.List(ctx, repository.BookFilter{})
	if len(books) > limit {
		books = books[:limit]
	}
	return books, err
}

func (f *fakeBooks) RefsByIDs(_ context.Context, ids []int64) (map[int64]domain.BookRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	refs := make(map[int64]domain.BookRef, len(ids))
	for _, id := range ids {
		if book, ok := f.byID[id]; ok {
			refs[id] = domain.BookRef{ID: id, Title: book.Title, Price: book.Price}
		}
	}
	return refs, nil
}

func (f *fakeBooks) Authors(ctx context.Context, id int64) ([]domain.Author, error) {
	book, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return book.Authors, nil
}

func (f *fakeBooks) Categories(ctx context.Context, id int64) ([]domain.Category, error) {
	book, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return book.Categories, nil
}

func (f *fakeBooks) AddFavorite(_ context.Context, userID, bookID int64) (*domain.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{userID, bookID}
	if _, ok := f.favorites[key]; ok {
		return nil, repository.ErrDuplicate
	}
	fav := domain.Favorite{UserID: userID, BookID: bookID, CreatedAt: time.Now()}
	f.favorites[key] = fav
	return &fav, nil
}

func (f *fakeBooks) RemoveFavorite(_ context.Context, userID, bookID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{userID, bookID}
	if _, ok := f.favorites[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.favorites, key)
	return nil
}

func (f *fakeBooks) ListFavoritesByUser(_ context.Context, userID int64) ([]domain.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var favorites []domain.Favorite
	for key, fav := range f.favorites {
		if key[0] == userID {
			favorites = append(favorites, fav)
		}
	}
	return favorites, nil
}

type fakeCarts struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.CartItem
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{byID: map[int64]domain.CartItem{}}
}

func (f *fakeCarts) AddOrIncrement(_ context.Context, item *domain.CartItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.byID {
		if existing.UserID == item.UserID && existing.BookID == item.BookID {
			existing.Quantity += item.Quantity
			f.byID[id] = existing
			*item = existing
			return false, nil
		}
	}
	f.nextID++
	item.ID = f.nextID
	f.byID[item.ID] = *item
	return true, nil
}

func (f *fakeCarts) GetByID(_ context.Context, id int64) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

func (f *fakeCarts) UpdateQuantity(_ context.Context, id int64, quantity int) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	item.Quantity = quantity
	f.byID[id] = item
	return &item, nil
}

func (f *fakeCarts) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCarts) List(_ context.Context, _ repository.ListQuery) ([]domain.CartItem, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.CartItem
	for _, item := range f.byID {
		items = append(items, item)
	}
	return items, int64(len(items)), nil
}

func (f *fakeCarts) ListByUser(_ context.Context, userID int64) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.CartItem
	for _, item := range f.byID {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[int64]domain.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	f.byID[order.ID] = *order
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &order, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	order.Status = status
	f.byID[id] = order
	return &order, nil
}

func (f *fakeOrders) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeOrders) List(_ context.Context, _ repository.OrderFilter) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []domain.Order
	for _, order := range f.byID {
		orders = append(orders, order)
	}
	return orders, int64(len(orders)), nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []domain.Order
	for _, order := range f.byID {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (f *fakeOrders) Statistics(_ context.Context, _ int) (*domain.OrderStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &domain.OrderStatistics{TopBooks: []domain.TopSellingBook{}}
	for _, order := range f.byID {
		stats.TotalOrders++
		stats.TotalSales += order.TotalPrice
	}
	return stats, nil
}

type fakeReviews struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{byID: map[int64]domain.Review{}}
}

func (f *fakeReviews) Create(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	review.ID = f.nextID
	f.byID[review.ID] = *review
	return nil
}

func (f *fakeReviews) Update(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[review.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[review.ID] = *review
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &review, nil
}

func (f *fakeReviews) List(_ context.Context, _ repository.ReviewFilter) ([]domain.Review, int64, error) {
	reviews := f.where(func(domain.Review) bool { return true })
	return reviews, int64(len(reviews)), nil
}

func (f *fakeReviews) ListByBook(_ context.Context, bookID int64) ([]domain.Review, error) {
	return f.where(func(r domain.Review) bool { return r.BookID == bookID }), nil
}

func (f *fakeReviews) ListByUser(_ context.Context, userID int64) ([]domain.Review, error) {
	return f.where(func(r domain.Review) bool { return r.UserID == userID }), nil
}

func (f *fakeReviews) where(keep func(domain.Review) bool) []domain.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reviews []domain.Review
	for _, review := range f.byID {
		if keep(review) {
			reviews = append(reviews, review)
		}
	}
	return reviews
}

type fakeComments struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{byID: map[int64]domain.Comment{}}
}

func (f *fakeComments) Create(_ context.Context, comment *domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	comment.ID = f.nextID
	f.byID[comment.ID] = *comment
	return nil
}

func (f *fakeComments) Update(_ context.Context, comment *domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[comment.ID] = *comment
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id int64) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &comment, nil
}

func (f *fakeComments) List(_ context.Context, _ repository.ListQuery) ([]domain.Comment, int64, error) {
	comments := f.where(func(domain.Comment) bool { return true })
	return comments, int64(len(comments)), nil
}

func (f *fakeComments) ListByReview(_ context.Context, reviewID int64) ([]domain.Comment, error) {
	return f.where(func(c domain.Comment) bool { return c.ReviewID == reviewID }), nil
}

func (f *fakeComments) ListByUser(_ context.Context, userID int64) ([]domain.Comment, error) {
	return f.where(func(c domain.Comment) bool { return c.UserID == userID }), nil
}

func (f *fakeComments) where(keep func(domain.Comment) bool) []domain.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var comments []domain.Comment
	for _, comment := range f.byID {
		if keep(comment) {
			comments = append(comments, comment)
		}
	}
	return comments
}

type likeKey struct {
	target   domain.LikeTarget
	userID   int64
	targetID int64
}

type fakeLikes struct {
	mu    sync.Mutex
	likes map[likeKey]domain.Like
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{likes: map[likeKey]domain.Like{}}
}

func (f *fakeLikes) Add(_ context.Context, target domain.LikeTarget, userID, targetID int64) (*domain.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey{target, userID, targetID}
	if _, ok := f.likes[key]; ok {
		return nil, repository.ErrDuplicate
	}
	like := domain.Like{UserID: userID, TargetID: targetID, Target: target, CreatedAt: time.Now()}
	f.likes[key] = like
	return &like, nil
}

func (f *fakeLikes) Remove(_ context.Context, target domain.LikeTarget, userID, targetID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := likeKey{target, userID, targetID}
	if _, ok := f.likes[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.likes, key)
	return nil
}

func (f *fakeLikes) ListByTarget(_ context.Context, target domain.LikeTarget, targetID int64) ([]domain.Like, error) {
	return f.where(func(k likeKey) bool { return k.target == target && k.targetID == targetID }), nil
}

func (f *fakeLikes) ListByUser(_ context.Context, target domain.LikeTarget, userID int64) ([]domain.Like, error) {
	return f.where(func(k likeKey) bool { return k.target == target && k.userID == userID }), nil
}

func (f *fakeLikes) where(keep func(likeKey) bool) []domain.Like {
	f.mu.Lock()
	defer f.mu.Unlock()
	var likes []domain.Like
	for key, like := range f.likes {
		if keep(key) {
			likes = append(likes, like)
		}
	}
	return likes
}

var (
	_ repository.UserRepository    = (*fakeUsers)(nil)
	_ repository.BookRepository    = (*fakeBooks)(nil)
	_ repository.CartRepository    = (*fakeCarts)(nil)
	_ repository.OrderRepository   = (*fakeOrders)(nil)
	_ repository.ReviewRepository  = (*fakeReviews)(nil)
	_ repository.CommentRepository = (*fakeComments)(nil)
	_ repository.LikeRepository    = (*fakeLikes)(nil)
)
