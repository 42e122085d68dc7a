package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/repository"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"oneof":    "%s must be one of [%s]",
}

// fieldName strips the struct name from the namespace, keeping nested paths like items[0].bookId.
func fieldName(e validator.FieldError) string {
	field := e.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		return field[idx+1:]
	}
	return field
}

func fieldMessage(e validator.FieldError) string {
	field := fieldName(e)
	msg, ok := validationMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid (%s)", field, e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, field, e.Param())
	}
	return fmt.Sprintf(msg, field)
}

// validateStruct reports tag violations as VALIDATION_FAILED with one message per field.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldName(fe)] = fieldMessage(fe)
	}
	return apperrors.NewValidationError("request validation failed", details)
}

// bind decodes the JSON body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewBadRequest("invalid request body")
	}
	return validateStruct(req)
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", name), map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		if t, err = time.Parse("2006-01-02", val); err != nil {
			return nil, apperrors.NewValidationError(key+" must be an RFC3339 timestamp or a date", map[string]any{key: val})
		}
	}
	return &t, nil
}

// parseListQuery reads page, size, sort=field,ASC|DESC, keyword, dateFrom and dateTo.
// Sort defaults to createdAt,DESC.
func parseListQuery(c *fiber.Ctx) (repository.ListQuery, error) {
	q := repository.ListQuery{
		Page:    parseIntQuery(c, "page", 1),
		Size:    parseIntQuery(c, "size", repository.DefaultPageSize),
		Sort:    repository.Sort{Field: "createdAt", Desc: true},
		Keyword: strings.TrimSpace(c.Query("keyword")),
	}
	if raw := strings.TrimSpace(c.Query("sort")); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		q.Sort.Field = strings.TrimSpace(field)
		q.Sort.Desc = !strings.EqualFold(strings.TrimSpace(dir), "ASC")
	}

	if q.Page > repository.MaxPage {
		return q, apperrors.NewValidationError(fmt.Sprintf("page must not exceed %d", repository.MaxPage), map[string]any{"page": c.Query("page")})
	}

	var err error
	if q.DateFrom, err = parseTimeQuery(c, "dateFrom"); err != nil {
		return q, err
	}
	if q.DateTo, err = parseTimeQuery(c, "dateTo"); err != nil {
		return q, err
	}
	if q.DateFrom != nil && q.DateTo != nil && q.DateTo.Before(*q.DateFrom) {
		return q, apperrors.NewValidationError("dateTo must not be before dateFrom", nil)
	}
	return q, nil
}

func listResponse[T any](key string, items []T, page, size int, total int64) fiber.Map {
	return fiber.Map{"page": page, "size": size, "total": total, key: nonNilSlice(items)}
}

func countResponse[T any](ownerKey string, ownerID int64, key string, items []T) fiber.Map {
	return fiber.Map{ownerKey: ownerID, "count": len(items), key: nonNilSlice(items)}
}

func nonNilSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
