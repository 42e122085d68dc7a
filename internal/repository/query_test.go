package repository

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestListQueryPaging(t *testing.T) {
	tests := []struct {
		name   string
		q      ListQuery
		limit  int
		offset int
	}{
		{name: "defaults", q: ListQuery{}, limit: DefaultPageSize, offset: 0},
		{name: "page zero is first page", q: ListQuery{Page: 0, Size: 10}, limit: 10, offset: 0},
		{name: "third page", q: ListQuery{Page: 3, Size: 10}, limit: 10, offset: 20},
		{name: "size clamped", q: ListQuery{Page: 2, Size: 500}, limit: MaxPageSize, offset: MaxPageSize},
		{name: "huge page capped", q: ListQuery{Page: math.MaxInt, Size: 100}, limit: 100, offset: (MaxPage - 1) * 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.limit, tt.q.Limit())
			require.Equal(t, tt.offset, tt.q.Offset())
		})
	}
}

func TestPageClauseNeverNegative(t *testing.T) {
	clause := page(ListQuery{Page: math.MaxInt, Size: 100})
	require.Equal(t, fmt.Sprintf(" LIMIT 100 OFFSET %d", (MaxPage-1)*100), clause)
}

func TestWhereBuilderNumbersPlaceholders(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var w whereBuilder
	w.keyword("  Go  ", "title", "publisher")
	w.dateRange("created_at", ListQuery{DateFrom: &from})
	w.add("role = %s", "ADMIN")

	require.Equal(t, " WHERE (LOWER(title) LIKE $1 OR LOWER(publisher) LIKE $1) AND created_at >= $2 AND role = $3", w.sql())
	require.Equal(t, []any{"%go%", from, "ADMIN"}, w.args)
}

func TestWhereBuilderEmpty(t *testing.T) {
	var w whereBuilder
	w.keyword("   ", "title")
	require.Empty(t, w.sql())
	require.Empty(t, w.args)
}

func TestOrderByWhitelist(t *testing.T) {
	cols := map[string]string{"id": "b.id", "title": "b.title"}

	require.Equal(t, " ORDER BY b.title DESC", orderBy(Sort{Field: "title", Desc: true}, cols, "id"))
	require.Equal(t, " ORDER BY b.id ASC", orderBy(Sort{Field: "title; DROP TABLE books"}, cols, "id"))
}

func TestTranslateConstraintErrors(t *testing.T) {
	dup := translate(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
	require.True(t, errors.Is(dup, ErrDuplicate))

	missing := translate(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	require.True(t, errors.Is(missing, ErrMissingReference))

	other := errors.New("boom")
	require.Equal(t, other, translate(other))
}
