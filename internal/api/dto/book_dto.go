package dto

import "time"

// BookCreateRequest payload for POST /books. Price is in minor currency units.
type BookCreateRequest struct {
	Title           string     `json:"title" validate:"required,max=255"`
	ISBN            string     `json:"isbn" validate:"required,max=32"`
	Price           int64      `json:"price" validate:"gte=0"`
	Publisher       string     `json:"publisher" validate:"required,max=255"`
	Summary         *string    `json:"summary"`
	PublicationDate *time.Time `json:"publicationDate"`
	AuthorIDs       []int64    `json:"authorIds" validate:"omitempty,dive,gt=0"`
	CategoryIDs     []int64    `json:"categoryIds" validate:"omitempty,dive,gt=0"`
}

// BookUpdateRequest payload for PATCH /books/:id.
type BookUpdateRequest struct {
	Title           *string    `json:"title" validate:"omitempty,min=1,max=255"`
	ISBN            *string    `json:"isbn" validate:"omitempty,min=1,max=32"`
	Price           *int64     `json:"price" validate:"omitempty,gte=0"`
	Publisher       *string    `json:"publisher" validate:"omitempty,min=1,max=255"`
	Summary         *string    `json:"summary"`
	PublicationDate *time.Time `json:"publicationDate"`
	AuthorIDs       []int64    `json:"authorIds" validate:"omitempty,dive,gt=0"`
	CategoryIDs     []int64    `json:"categoryIds" validate:"omitempty,dive,gt=0"`
}
