package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Catalogue key prefixes and lifetimes.
const (
	BookListPrefix    = "books:list:"
	BookPopularPrefix = "books:popular:"
	// BookGeneration is bumped on every book change; catalogue fills started earlier are discarded.
	BookGeneration = "books:generation"

	BookListTTL       = 300 * time.Second
	BookPopularTTL    = 300 * time.Second
	BookDetailTTL     = 600 * time.Second
	BookCategoriesTTL = 3600 * time.Second
	BookAuthorsTTL    = 3600 * time.Second
)

// BookListKey keys a listing by its normalized query parameters.
func BookListKey(params any) string {
	return BookListPrefix + fingerprint(params)
}

// BookPopularKey keys a popularity ranking by its parameters.
func BookPopularKey(params any) string {
	return BookPopularPrefix + fingerprint(params)
}

func BookDetailKey(id int64) string     { return fmt.Sprintf("books:detail:%d", id) }
func BookCategoriesKey(id int64) string { return fmt.Sprintf("books:categories:%d", id) }
func BookAuthorsKey(id int64) string    { return fmt.Sprintf("books:authors:%d", id) }

// BookKeys lists the per-book keys a mutation must evict.
func BookKeys(id int64) []string {
	return []string{BookDetailKey(id), BookCategoriesKey(id), BookAuthorsKey(id)}
}

func fingerprint(params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return string(raw)
}
