package repository

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage bounds Page so Offset stays well inside int range.
	MaxPage = 1_000_000
)

// Sort names an API-level field and direction. Unknown fields fall back per listing.
type Sort struct {
	Field string
	Desc  bool
}

// ListQuery carries the pagination, sort and search parameters shared by list endpoints.
// Page is 1-based; zero is treated as the first page.
type ListQuery struct {
	Page     int
	Size     int
	Sort     Sort
	Keyword  string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Limit returns the clamped page size.
func (q ListQuery) Limit() int {
	switch {
	case q.Size <= 0:
		return DefaultPageSize
	case q.Size > MaxPageSize:
		return MaxPageSize
	}
	return q.Size
}

// Offset returns the row offset of the requested page.
func (q ListQuery) Offset() int {
	page := q.Page
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	return (page - 1) * q.Limit()
}

// whereBuilder accumulates SQL predicates and their positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

// arg registers a value and returns its placeholder.
func (w *whereBuilder) arg(value any) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = w.arg(v)
	}
	w.clauses = append(w.clauses, fmt.Sprintf(format, placeholders...))
}

// keyword adds a case-insensitive substring match over the given columns.
func (w *whereBuilder) keyword(keyword string, columns ...string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(columns) == 0 {
		return
	}
	ph := w.arg("%" + strings.ToLower(keyword) + "%")
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, ph)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

// dateRange bounds column by the query's creation window.
func (w *whereBuilder) dateRange(column string, q ListQuery) {
	if q.DateFrom != nil {
		w.add(column+" >= %s", *q.DateFrom)
	}
	if q.DateTo != nil {
		w.add(column+" <= %s", *q.DateTo)
	}
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// orderBy maps the requested sort onto a whitelisted column so user input never reaches SQL.
func orderBy(s Sort, columns map[string]string, fallback string) string {
	col, ok := columns[s.Field]
	if !ok {
		col = columns[fallback]
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func page(q ListQuery) string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit(), q.Offset())
}
