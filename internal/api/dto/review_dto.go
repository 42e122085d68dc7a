package dto

// ReviewCreateRequest payload for POST /reviews.
type ReviewCreateRequest struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	BookID  int64  `json:"bookId" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ReviewUpdateRequest payload for PATCH /reviews/:id.
type ReviewUpdateRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// CommentCreateRequest payload for POST /comments.
type CommentCreateRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	ReviewID int64  `json:"reviewId" validate:"required,gt=0"`
	Comment  string `json:"comment" validate:"required,max=2000"`
}

// CommentUpdateRequest payload for PATCH /comments/:id.
type CommentUpdateRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}
