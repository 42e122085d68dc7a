package dto

import "github.com/spec-kit/bookstore-api/internal/domain"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Email    string         `json:"email" validate:"required,email,max=255"`
	Password string         `json:"password" validate:"required,min=6,max=72"`
	Name     string         `json:"name" validate:"required,max=100"`
	Gender   *domain.Gender `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
}

// UserUpdateRequest payload for PATCH /users/:id. Absent fields are left unchanged.
type UserUpdateRequest struct {
	Name     *string        `json:"name" validate:"omitempty,min=1,max=100"`
	Gender   *domain.Gender `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	Password *string        `json:"password" validate:"omitempty,min=6,max=72"`
}
