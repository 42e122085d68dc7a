package domain

import "time"

// Review is a user's rating of a book.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	BookID    int64     `json:"bookId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	User      *UserRef  `json:"user,omitempty"`
	Book      *BookRef  `json:"book,omitempty"`
	LikeCount int64     `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment replies to a review.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ReviewID  int64     `json:"reviewId"`
	Comment   string    `json:"comment"`
	User      *UserRef  `json:"user,omitempty"`
	LikeCount int64     `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTarget distinguishes what a like points at.
type LikeTarget string

const (
	LikeTargetReview  LikeTarget = "review"
	LikeTargetComment LikeTarget = "comment"
)

// Like records that a user liked a review or a comment.
type Like struct {
	UserID    int64      `json:"userId"`
	TargetID  int64      `json:"targetId"`
	Target    LikeTarget `json:"target"`
	User      *UserRef   `json:"user,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
