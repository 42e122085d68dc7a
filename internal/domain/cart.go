package domain

import "time"

// CartItem is one book line in a user's cart.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	BookID    int64     `json:"bookId"`
	Quantity  int       `json:"quantity"`
	User      *UserRef  `json:"user,omitempty"`
	Book      *BookRef  `json:"book,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
