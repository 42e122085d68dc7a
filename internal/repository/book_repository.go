package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// BookFilter narrows catalogue listings.
type BookFilter struct {
	ListQuery
	Category string
}

// BookRepository defines persistence access for the catalogue and favorites.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book, authorIDs, categoryIDs []int64) error
	// Update rewrites the book row. Nil id slices leave the existing links untouched.
	Update(ctx context.Context, book *domain.Book, authorIDs, categoryIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter BookFilter) ([]domain.Book, int64, error)
	ListPopular(ctx context.Context, limit int) ([]domain.Book, error)
	RefsByIDs(ctx context.Context, ids []int64) (map[int64]domain.BookRef, error)
	Authors(ctx context.Context, bookID int64) ([]domain.Author, error)
	Categories(ctx context.Context, bookID int64) ([]domain.Category, error)
	AddFavorite(ctx context.Context, userID, bookID int64) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, bookID int64) error
	ListFavoritesByUser(ctx context.Context, userID int64) ([]domain.Favorite, error)
}

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a Postgres-backed implementation.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

const bookSelect = `
        SELECT b.id, b.title, b.isbn, b.price, b.publisher, b.summary, b.publication_date,
               b.created_at, b.updated_at,
               (SELECT COUNT(*) FROM favorites f WHERE f.book_id = b.id) AS favorite_count,
               (SELECT COUNT(*) FROM reviews rv WHERE rv.book_id = b.id) AS review_count
        FROM books b`

var bookSortColumns = map[string]string{
	"id":              "b.id",
	"title":           "b.title",
	"price":           "b.price",
	"publicationDate": "b.publication_date",
	"createdAt":       "b.created_at",
	"favoriteCount":   "favorite_count",
	"reviewCount":     "review_count",
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book, authorIDs, categoryIDs []int64) error {
	const query = `
        INSERT INTO books (title, isbn, price, publisher, summary, publication_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			book.Title,
			book.ISBN,
			book.Price,
			book.Publisher,
			book.Summary,
			book.PublicationDate,
		).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return translate(err)
		}
		return replaceBookLinks(ctx, tx, book.ID, authorIDs, categoryIDs)
	})
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book, authorIDs, categoryIDs []int64) error {
	const query = `
        UPDATE books SET title=$1, isbn=$2, price=$3, publisher=$4, summary=$5, publication_date=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			book.Title,
			book.ISBN,
			book.Price,
			book.Publisher,
			book.Summary,
			book.PublicationDate,
			book.ID,
		).Scan(&book.UpdatedAt); err != nil {
			return translate(err)
		}
		return replaceBookLinks(ctx, tx, book.ID, authorIDs, categoryIDs)
	})
}

func replaceBookLinks(ctx context.Context, tx pgx.Tx, bookID int64, authorIDs, categoryIDs []int64) error {
	if authorIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM book_authors WHERE book_id=$1`, bookID); err != nil {
			return err
		}
		for _, id := range authorIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO book_authors (book_id, author_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, bookID, id); err != nil {
				return translate(err)
			}
		}
	}
	if categoryIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM book_categories WHERE book_id=$1`, bookID); err != nil {
			return err
		}
		for _, id := range categoryIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO book_categories (book_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, bookID, id); err != nil {
				return translate(err)
			}
		}
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := scanBook(r.pool.QueryRow(ctx, bookSelect+` WHERE b.id=$1`, id))
	if err != nil {
		return nil, err
	}
	books := []domain.Book{*book}
	if err := r.attachRelations(ctx, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]domain.Book, int64, error) {
	var where whereBuilder
	where.keyword(filter.Keyword, "b.title", "COALESCE(b.summary, '')", "b.publisher")
	where.dateRange("b.created_at", filter.ListQuery)
	if category := strings.TrimSpace(filter.Category); category != "" {
		where.add(`EXISTS (
            SELECT 1 FROM book_categories bc JOIN categories c ON c.id = bc.category_id
            WHERE bc.book_id = b.id AND LOWER(c.name) = LOWER(%s))`, category)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books b`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := bookSelect + where.sql() + orderBy(filter.Sort, bookSortColumns, "id") + page(filter.ListQuery)
	books, err := r.queryBooks(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// ListPopular ranks books by favorites, then reviews.
func (r *bookRepository) ListPopular(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	query := bookSelect + ` ORDER BY favorite_count DESC, review_count DESC, b.id ASC LIMIT $1`
	return r.queryBooks(ctx, query, limit)
}

func (r *bookRepository) queryBooks(ctx context.Context, query string, args ...any) ([]domain.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachRelations(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) RefsByIDs(ctx context.Context, ids []int64) (map[int64]domain.BookRef, error) {
	refs := make(map[int64]domain.BookRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, title, price FROM books WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.BookRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.Price); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	return refs, rows.Err()
}

func (r *bookRepository) Authors(ctx context.Context, bookID int64) ([]domain.Author, error) {
	if err := r.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
        SELECT a.id, a.name FROM authors a
        JOIN book_authors ba ON ba.author_id = a.id
        WHERE ba.book_id = $1 ORDER BY a.name`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []domain.Author{}
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *bookRepository) Categories(ctx context.Context, bookID int64) ([]domain.Category, error) {
	if err := r.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
        SELECT c.id, c.name FROM categories c
        JOIN book_categories bc ON bc.category_id = c.id
        WHERE bc.book_id = $1 ORDER BY c.name`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *bookRepository) ensureBook(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) AddFavorite(ctx context.Context, userID, bookID int64) (*domain.Favorite, error) {
	const query = `
        INSERT INTO favorites (user_id, book_id) VALUES ($1, $2)
        RETURNING created_at`

	fav := domain.Favorite{UserID: userID, BookID: bookID}
	if err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(&fav.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &fav, nil
}

func (r *bookRepository) RemoveFavorite(ctx context.Context, userID, bookID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id=$1 AND book_id=$2`, userID, bookID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) ListFavoritesByUser(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	const query = `
        SELECT f.user_id, f.book_id, f.created_at, b.title, b.price
        FROM favorites f JOIN books b ON b.id = f.book_id
        WHERE f.user_id = $1
        ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []domain.Favorite{}
	for rows.Next() {
		var fav domain.Favorite
		ref := domain.BookRef{}
		if err := rows.Scan(&fav.UserID, &fav.BookID, &fav.CreatedAt, &ref.Title, &ref.Price); err != nil {
			return nil, err
		}
		ref.ID = fav.BookID
		fav.Book = &ref
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

// attachRelations loads authors and categories for a page of books with two queries.
func (r *bookRepository) attachRelations(ctx context.Context, books []domain.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, len(books))
	index := make(map[int64]int, len(books))
	for i := range books {
		ids[i] = books[i].ID
		index[books[i].ID] = i
		books[i].Authors = []domain.Author{}
		books[i].Categories = []domain.Category{}
	}

	rows, err := r.pool.Query(ctx, `
        SELECT ba.book_id, a.id, a.name FROM book_authors ba
        JOIN authors a ON a.id = ba.author_id
        WHERE ba.book_id = ANY($1) ORDER BY a.name`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var bookID int64
		var a domain.Author
		if err := rows.Scan(&bookID, &a.ID, &a.Name); err != nil {
			rows.Close()
			return err
		}
		i := index[bookID]
		books[i].Authors = append(books[i].Authors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
        SELECT bc.book_id, c.id, c.name FROM book_categories bc
        JOIN categories c ON c.id = bc.category_id
        WHERE bc.book_id = ANY($1) ORDER BY c.name`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookID int64
		var c domain.Category
		if err := rows.Scan(&bookID, &c.ID, &c.Name); err != nil {
			return err
		}
		i := index[bookID]
		books[i].Categories = append(books[i].Categories, c)
	}
	return rows.Err()
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.ISBN,
		&book.Price,
		&book.Publisher,
		&book.Summary,
		&book.PublicationDate,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.FavoriteCount,
		&book.ReviewCount,
	); err != nil {
		return nil, err
	}
	return &book, nil
}
