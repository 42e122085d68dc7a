package service

import (
	"errors"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// Page is one page of a listing together with the paging it was produced with.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

func newPage[T any](items []T, q repository.ListQuery, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return Page[T]{Items: items, Page: page, Size: q.Limit(), Total: total}
}

// TotalPages reports how many pages of Size cover Total.
func (p Page[T]) TotalPages() int {
	if p.Total <= 0 || p.Size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(p.Total) / float64(p.Size)))
}

// storageError maps repository failures for resource onto API errors.
func storageError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrMissingReference):
		return apperrors.NewNotFound("referenced resource", nil)
	}
	return apperrors.MapError(err)
}

// userError is storageError for user lookups, which report USER_NOT_FOUND.
func userError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewUserNotFound(nil)
	}
	return storageError(err, "user")
}
