package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/bookstore-api/internal/cache"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/events"
	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// BookService serves the catalogue through the read-through cache.
// Mutations publish book_changed; the cache invalidation worker evicts stale entries.
type BookService struct {
	books      repository.BookRepository
	reviews    repository.ReviewRepository
	cache      cache.Store
	dispatcher events.Dispatcher
}

// BookDependencies bundles collaborators for the book service.
type BookDependencies struct {
	BookRepo   repository.BookRepository
	ReviewRepo repository.ReviewRepository
	Cache      cache.Store
	Dispatcher events.Dispatcher
}

// NewBookService builds the service. A nil cache disables caching.
func NewBookService(deps BookDependencies) *BookService {
	store := deps.Cache
	if store == nil {
		store = cache.Noop{}
	}
	return &BookService{
		books:      deps.BookRepo,
		reviews:    deps.ReviewRepo,
		cache:      store,
		dispatcher: deps.Dispatcher,
	}
}

// BookInput describes a new book.
type BookInput struct {
	Title           string
	ISBN            string
	Price           int64
	Publisher       string
	Summary         *string
	PublicationDate *time.Time
	AuthorIDs       []int64
	CategoryIDs     []int64
}

// BookUpdateInput carries optional changes. Nil id slices keep the current links.
type BookUpdateInput struct {
	Title           *string
	ISBN            *string
	Price           *int64
	Publisher       *string
	Summary         *string
	PublicationDate *time.Time
	AuthorIDs       []int64
	CategoryIDs     []int64
}

// List returns one page of the catalogue.
func (s *BookService) List(ctx context.Context, filter repository.BookFilter) (Page[domain.Book], error) {
	return cache.RememberVersioned(ctx, s.cache, cache.BookGeneration, cache.BookListKey(filter), cache.BookListTTL, func(ctx context.Context) (Page[domain.Book], error) {
		books, total, err := s.books.List(ctx, filter)
		if err != nil {
			return Page[domain.Book]{}, apperrors.MapError(err)
		}
		return newPage(books, filter.ListQuery, total), nil
	})
}

// Popular ranks books by favorites, then reviews.
func (s *BookService) Popular(ctx context.Context, limit int) ([]domain.Book, error) {
	key := cache.BookPopularKey(map[string]int{"limit": limit})
	return cache.RememberVersioned(ctx, s.cache, cache.BookGeneration, key, cache.BookPopularTTL, func(ctx context.Context) ([]domain.Book, error) {
		books, err := s.books.ListPopular(ctx, limit)
		return books, apperrors.MapError(err)
	})
}

// Get returns a book with its authors and categories.
func (s *BookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	return cache.RememberVersioned(ctx, s.cache, cache.BookGeneration, cache.BookDetailKey(id), cache.BookDetailTTL, func(ctx context.Context) (*domain.Book, error) {
		book, err := s.books.GetByID(ctx, id)
		if err != nil {
			return nil, storageError(err, "book")
		}
		return book, nil
	})
}

// Categories lists the categories of a book.
func (s *BookService) Categories(ctx context.Context, id int64) ([]domain.Category, error) {
	return cache.RememberVersioned(ctx, s.cache, cache.BookGeneration, cache.BookCategoriesKey(id), cache.BookCategoriesTTL, func(ctx context.Context) ([]domain.Category, error) {
		categories, err := s.books.Categories(ctx, id)
		if err != nil {
			return nil, storageError(err, "book")
		}
		return categories, nil
	})
}

// Authors lists the authors of a book.
func (s *BookService) Authors(ctx context.Context, id int64) ([]domain.Author, error) {
	return cache.RememberVersioned(ctx, s.cache, cache.BookGeneration, cache.BookAuthorsKey(id), cache.BookAuthorsTTL, func(ctx context.Context) ([]domain.Author, error) {
		authors, err := s.books.Authors(ctx, id)
		if err != nil {
			return nil, storageError(err, "book")
		}
		return authors, nil
	})
}

// Reviews lists a book's reviews, newest first.
func (s *BookService) Reviews(ctx context.Context, id int64) ([]domain.Review, error) {
	if _, err := s.books.GetByID(ctx, id); err != nil {
		return nil, storageError(err, "book")
	}
	reviews, err := s.reviews.ListByBook(ctx, id)
	return reviews, apperrors.MapError(err)
}

// Create adds a book. ISBNs are unique.
func (s *BookService) Create(ctx context.Context, actor *domain.IdentityClaim, in BookInput) (*domain.Book, error) {
	book := &domain.Book{
		Title:           strings.TrimSpace(in.Title),
		ISBN:            strings.TrimSpace(in.ISBN),
		Price:           in.Price,
		Publisher:       strings.TrimSpace(in.Publisher),
		Summary:         in.Summary,
		PublicationDate: in.PublicationDate,
	}
	if err := s.books.Create(ctx, book, nonNil(in.AuthorIDs), nonNil(in.CategoryIDs)); err != nil {
		return nil, bookWriteError(err, book.ISBN)
	}
	s.publish(ctx, actor, book.ID, events.BookCreated)
	return s.reload(ctx, book.ID)
}

// Update applies partial changes to a book.
func (s *BookService) Update(ctx context.Context, actor *domain.IdentityClaim, id int64, in BookUpdateInput) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "book")
	}
	if in.Title != nil {
		book.Title = strings.TrimSpace(*in.Title)
	}
	if in.ISBN != nil {
		book.ISBN = strings.TrimSpace(*in.ISBN)
	}
	if in.Price != nil {
		book.Price = *in.Price
	}
	if in.Publisher != nil {
		book.Publisher = strings.TrimSpace(*in.Publisher)
	}
	if in.Summary != nil {
		book.Summary = in.Summary
	}
	if in.PublicationDate != nil {
		book.PublicationDate = in.PublicationDate
	}
	if err := s.books.Update(ctx, book, in.AuthorIDs, in.CategoryIDs); err != nil {
		return nil, bookWriteError(err, book.ISBN)
	}
	s.publish(ctx, actor, id, events.BookUpdated)
	return s.reload(ctx, id)
}

// Delete removes a book.
func (s *BookService) Delete(ctx context.Context, actor *domain.IdentityClaim, id int64) error {
	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return apperrors.NewStateConflict("book is referenced by existing orders", map[string]any{"bookId": id})
		}
		return storageError(err, "book")
	}
	s.publish(ctx, actor, id, events.BookDeleted)
	return nil
}

// AddFavorite marks the book as a favorite of the caller.
func (s *BookService) AddFavorite(ctx context.Context, actor *domain.IdentityClaim, bookID int64) (*domain.Favorite, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, storageError(err, "book")
	}
	fav, err := s.books.AddFavorite(ctx, actor.SubjectID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("book is already a favorite", map[string]any{"bookId": bookID})
		}
		return nil, storageError(err, "favorite")
	}
	s.publish(ctx, actor, bookID, events.BookFavorited)
	return fav, nil
}

// RemoveFavorite drops the caller's favorite.
func (s *BookService) RemoveFavorite(ctx context.Context, actor *domain.IdentityClaim, bookID int64) error {
	if err := s.books.RemoveFavorite(ctx, actor.SubjectID, bookID); err != nil {
		return storageError(err, "favorite")
	}
	s.publish(ctx, actor, bookID, events.BookFavorited)
	return nil
}

func (s *BookService) reload(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "book")
	}
	return book, nil
}

func (s *BookService) publish(ctx context.Context, actor *domain.IdentityClaim, bookID int64, change events.BookChange) {
	if s.dispatcher == nil {
		return
	}
	// Eviction must outlive the request deadline.
	_ = s.dispatcher.Publish(context.WithoutCancel(ctx), events.New(events.EventBookChanged, events.ActorFrom(actor), events.BookChangedPayload{
		BookID: bookID,
		Change: change,
	}))
}

func bookWriteError(err error, isbn string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("isbn already registered", map[string]any{"isbn": isbn})
	case errors.Is(err, repository.ErrMissingReference):
		return apperrors.NewNotFound("author or category", nil)
	}
	return storageError(err, "book")
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
