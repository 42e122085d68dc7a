package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/repository"
	"github.com/spec-kit/bookstore-api/internal/service"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

// BooksHandler serves the catalogue and favorites.
type BooksHandler struct {
	books *service.BookService
}

// NewBooksHandler constructs handler.
func NewBooksHandler(bookService *service.BookService) *BooksHandler {
	return &BooksHandler{books: bookService}
}

// List handles GET /books.
func (h *BooksHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	filter := repository.BookFilter{ListQuery: q, Category: strings.TrimSpace(c.Query("category"))}
	page, err := h.books.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("books", page.Items, page.Page, page.Size, page.Total))
}

// Popular handles GET /books/popular.
func (h *BooksHandler) Popular(c *fiber.Ctx) error {
	limit := parseIntQuery(c, "limit", defaultPopularLimit)
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}
	books, err := h.books.Popular(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": len(books), "books": nonNilSlice(books)})
}

// Get handles GET /books/:id.
func (h *BooksHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	book, err := h.books.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"book": book})
}

// Reviews handles GET /books/:id/reviews.
func (h *BooksHandler) Reviews(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.books.Reviews(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("bookId", id, "reviews", reviews))
}

// Categories handles GET /books/:id/categories.
func (h *BooksHandler) Categories(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	categories, err := h.books.Categories(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("bookId", id, "categories", categories))
}

// Authors handles GET /books/:id/authors.
func (h *BooksHandler) Authors(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	authors, err := h.books.Authors(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("bookId", id, "authors", authors))
}

// Create handles POST /books.
func (h *BooksHandler) Create(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.BookCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.books.Create(c.UserContext(), claim, service.BookInput{
		Title:           req.Title,
		ISBN:            req.ISBN,
		Price:           req.Price,
		Publisher:       req.Publisher,
		Summary:         req.Summary,
		PublicationDate: req.PublicationDate,
		AuthorIDs:       req.AuthorIDs,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "book created", "book": book})
}

// Update handles PATCH /books/:id.
func (h *BooksHandler) Update(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.BookUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.books.Update(c.UserContext(), claim, id, service.BookUpdateInput{
		Title:           req.Title,
		ISBN:            req.ISBN,
		Price:           req.Price,
		Publisher:       req.Publisher,
		Summary:         req.Summary,
		PublicationDate: req.PublicationDate,
		AuthorIDs:       req.AuthorIDs,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "book updated", "book": book})
}

// Delete handles DELETE /books/:id.
func (h *BooksHandler) Delete(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.books.Delete(c.UserContext(), claim, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "book deleted"})
}

// AddFavorite handles POST /books/:id/favorites.
func (h *BooksHandler) AddFavorite(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	fav, err := h.books.AddFavorite(c.UserContext(), claim, id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "book added to favorites", "favorite": fav})
}

// RemoveFavorite handles DELETE /books/:id/favorites.
func (h *BooksHandler) RemoveFavorite(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.books.RemoveFavorite(c.UserContext(), claim, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "book removed from favorites"})
}
