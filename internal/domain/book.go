package domain

import "time"

// Author writes books.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category groups books.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is a catalogue entry.
type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	ISBN            string     `json:"isbn"`
	Price           int64      `json:"price"`
	Publisher       string     `json:"publisher"`
	Summary         *string    `json:"summary,omitempty"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`
	Authors         []Author   `json:"authors"`
	Categories      []Category `json:"categories"`
	FavoriteCount   int64      `json:"favoriteCount"`
	ReviewCount     int64      `json:"reviewCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// BookRef is the compact book projection embedded in other resources.
type BookRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// Favorite marks a book a user wants to keep track of.
type Favorite struct {
	UserID    int64     `json:"userId"`
	BookID    int64     `json:"bookId"`
	Book      *BookRef  `json:"book,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
